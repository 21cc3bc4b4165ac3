package trail

import (
	_ "embed"
	"image"

	"github.com/gogpu/gg"
)

// DefaultShader is the WGSL source of the trail shader. Entry points are
// vs_main and fs_main.
//
//go:embed shaders/trail.wgsl
var DefaultShader string

// Blending selects the color blend equation used when drawing the trail.
type Blending int

const (
	// BlendNormal is standard source-over alpha blending.
	BlendNormal Blending = iota

	// BlendAdditive adds the trail color onto the destination.
	BlendAdditive
)

// DefaultAlphaCutoff is the alpha below which fragments are discarded.
const DefaultAlphaCutoff = 0.5

// Material binds the trail shader to its uniforms and render state.
//
// The zero value is not usable; construct with NewMaterial.
type Material struct {
	// Shader is the WGSL source with vs_main and fs_main entry points.
	Shader string

	HeadColor gg.RGBA
	TailColor gg.RGBA

	// Texture modulates the fade color. Nil selects a procedural
	// soft-edge mask.
	Texture image.Image

	FadeMode FadeMode

	Transparent bool
	AlphaCutoff float32
	Blending    Blending
	DepthTest   bool
	DepthWrite  bool
}

// MaterialOption configures a Material.
type MaterialOption func(*Material)

// NewMaterial creates a transparent, normally blended material that tests
// against depth without writing it, and discards fragments below
// DefaultAlphaCutoff.
func NewMaterial(opts ...MaterialOption) *Material {
	m := &Material{
		Shader:      DefaultShader,
		HeadColor:   gg.RGBA{R: 1, G: 1, B: 1, A: 1},
		TailColor:   gg.RGBA{R: 1, G: 1, B: 1, A: 0},
		FadeMode:    FadeLiteral,
		Transparent: true,
		AlphaCutoff: DefaultAlphaCutoff,
		Blending:    BlendNormal,
		DepthTest:   true,
		DepthWrite:  false,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithColors sets the head and tail colors.
func WithColors(head, tail gg.RGBA) MaterialOption {
	return func(m *Material) {
		m.HeadColor = head
		m.TailColor = tail
	}
}

// WithTexture sets the texture multiplied into the fade color.
func WithTexture(img image.Image) MaterialOption {
	return func(m *Material) {
		m.Texture = img
	}
}

// WithShader replaces the WGSL source. An empty string keeps the default.
// A custom shader must declare the same bindings and vertex inputs as
// DefaultShader.
func WithShader(wgsl string) MaterialOption {
	return func(m *Material) {
		if wgsl != "" {
			m.Shader = wgsl
		}
	}
}

// WithFadeMode selects the fade formula.
func WithFadeMode(mode FadeMode) MaterialOption {
	return func(m *Material) {
		m.FadeMode = mode
	}
}

// WithAlphaCutoff sets the discard threshold.
func WithAlphaCutoff(cutoff float32) MaterialOption {
	return func(m *Material) {
		m.AlphaCutoff = cutoff
	}
}

// WithBlending sets the blend equation.
func WithBlending(b Blending) MaterialOption {
	return func(m *Material) {
		m.Blending = b
	}
}

// WithDepth sets the depth test and depth write flags.
func WithDepth(test, write bool) MaterialOption {
	return func(m *Material) {
		m.DepthTest = test
		m.DepthWrite = write
	}
}
