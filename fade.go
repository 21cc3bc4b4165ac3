package trail

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gg"
)

// FadeMode selects how the shader turns a vertex's age id into a fade
// fraction.
type FadeMode uint32

const (
	// FadeLiteral computes nodeID / (maxID - minID). The result is not
	// clamped and is not a position in the buffer: the newest node does not
	// map to 0 and the oldest does not map to 1. This is the default and
	// matches the established shader contract.
	FadeLiteral FadeMode = iota

	// FadeNormalized computes (maxID - nodeID) / (maxID - minID) clamped to
	// [0, 1], so the head maps to 0 (pure head color) and the tail to 1.
	FadeNormalized
)

// String returns the mode name.
func (m FadeMode) String() string {
	switch m {
	case FadeLiteral:
		return "literal"
	case FadeNormalized:
		return "normalized"
	default:
		return "unknown"
	}
}

// FadeFraction evaluates the literal fade formula nodeID / (maxID - minID).
// With a single live node the id range is empty and the fraction is 0.
//
// For ids 10..15 the oldest node yields 10/5 = 2.0.
func FadeFraction(nodeID, minID, maxID int32) float32 {
	span := maxID - minID
	if span == 0 {
		return 0
	}
	return float32(nodeID) / float32(span)
}

// FadeFractionNormalized evaluates the clamped head-to-tail fraction.
func FadeFractionNormalized(nodeID, minID, maxID int32) float32 {
	span := maxID - minID
	if span == 0 {
		return 0
	}
	f := float32(maxID-nodeID) / float32(span)
	return mgl32.Clamp(f, 0, 1)
}

// Fraction evaluates the formula selected by m.
func (m FadeMode) Fraction(nodeID, minID, maxID int32) float32 {
	if m == FadeNormalized {
		return FadeFractionNormalized(nodeID, minID, maxID)
	}
	return FadeFraction(nodeID, minID, maxID)
}

// FadeColor blends (1-f)*head + f*tail per channel without clamping.
// The shader multiplies the result by the sampled texture color.
func FadeColor(f float32, head, tail gg.RGBA) gg.RGBA {
	t := float64(f)
	return gg.RGBA{
		R: (1-t)*head.R + t*tail.R,
		G: (1-t)*head.G + t*tail.G,
		B: (1-t)*head.B + t*tail.B,
		A: (1-t)*head.A + t*tail.A,
	}
}

// FadePosition blends a vertex toward its paired edge position:
// (1-f)*pos + f*edge. The blend operates on raw vectors.
func FadePosition(f float32, pos, edge mgl32.Vec3) mgl32.Vec3 {
	return pos.Mul(1 - f).Add(edge.Mul(f))
}

// Modulate multiplies two colors channel by channel, as the fragment stage
// does with the vertex color and the texture sample.
func Modulate(c, texel gg.RGBA) gg.RGBA {
	return gg.RGBA{R: c.R * texel.R, G: c.G * texel.G, B: c.B * texel.B, A: c.A * texel.A}
}

// ColorVec converts a color to the float4 layout used by shader uniforms.
func ColorVec(c gg.RGBA) mgl32.Vec4 {
	return mgl32.Vec4{float32(c.R), float32(c.G), float32(c.B), float32(c.A)}
}

// Uniforms is the per-draw uniform set consumed by the trail shader.
type Uniforms struct {
	Model      mgl32.Mat4
	View       mgl32.Mat4
	Projection mgl32.Mat4

	HeadColor mgl32.Vec4
	TailColor mgl32.Vec4

	TrailLength float32
	MinID       int32
	MaxID       int32
	FadeMode    FadeMode
	AlphaCutoff float32
}

// Fraction evaluates the fade fraction for nodeID under these uniforms.
func (u *Uniforms) Fraction(nodeID int32) float32 {
	return u.FadeMode.Fraction(nodeID, u.MinID, u.MaxID)
}

// MVP returns projection * view * model.
func (u *Uniforms) MVP() mgl32.Mat4 {
	return u.Projection.Mul4(u.View).Mul4(u.Model)
}
