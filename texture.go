package trail

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gg"
)

// DefaultTextureSize is the edge length of the procedural mask used when a
// material has no texture.
const DefaultTextureSize = 64

// SoftEdgeMask returns a white size×size texture whose alpha falls off
// quadratically from the middle column (u = 0.5) to both edges (u = 0 and
// u = 1), so the ribbon fades out sideways as well as along its length.
func SoftEdgeMask(size int) *image.NRGBA {
	if size < 1 {
		size = 1
	}
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for x := 0; x < size; x++ {
		u := (float32(x) + 0.5) / float32(size)
		d := 2*u - 1
		a := uint8(mgl32.Clamp(1-d*d, 0, 1)*255 + 0.5)
		for y := 0; y < size; y++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: a})
		}
	}
	return img
}

// MaterialTexture returns the material's texture, or the soft-edge mask
// when none is set.
func MaterialTexture(m *Material) image.Image {
	if m != nil && m.Texture != nil {
		return m.Texture
	}
	return SoftEdgeMask(DefaultTextureSize)
}

// SampleTexture returns the straight-alpha texel of img nearest to uv,
// with u and v clamped to [0, 1]. A nil image samples as opaque white.
func SampleTexture(img image.Image, uv mgl32.Vec2) gg.RGBA {
	if img == nil {
		return gg.RGBA{R: 1, G: 1, B: 1, A: 1}
	}
	b := img.Bounds()
	if b.Empty() {
		return gg.RGBA{}
	}
	u := mgl32.Clamp(uv.X(), 0, 1)
	v := mgl32.Clamp(uv.Y(), 0, 1)
	x := b.Min.X + min(int(u*float32(b.Dx())), b.Dx()-1)
	y := b.Min.Y + min(int(v*float32(b.Dy())), b.Dy()-1)

	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return gg.RGBA{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
		A: float64(c.A) / 255,
	}
}

// FaceAlpha returns the flat alpha a CPU backend gives face f: the mean of
// the three vertex fade alphas, modulated by the texel at the face's
// centroid. Faces below u.AlphaCutoff are the ones the fragment stage
// discards.
func (m *Mesh) FaceAlpha(u *Uniforms, f Face, tex image.Image) float64 {
	g := m.Geometry
	var alpha float64
	var uv mgl32.Vec2
	for _, vi := range [3]uint32{f.A, f.B, f.C} {
		i := int(vi)
		alpha += FadeColor(u.Fraction(g.NodeID(i)), m.Material.HeadColor, m.Material.TailColor).A
		uv = uv.Add(g.UV(i))
	}
	return alpha / 3 * SampleTexture(tex, uv.Mul(1.0/3)).A
}
