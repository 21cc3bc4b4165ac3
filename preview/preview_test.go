package preview

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gg"
	"github.com/gogpu/trail"
)

var red = gg.RGBA{R: 1, G: 0, B: 0, A: 1}

func whiteTexture() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return img
}

// twoNodeTrail returns a single-segment vertical ribbon from x=-0.5 to
// x=0.5 with half-width 0.4. Under normalized fade the tail vertices swap
// with their partners, so the two triangles cover the lower half of the
// segment and meet at the origin.
func twoNodeTrail(opts ...trail.MaterialOption) *trail.Trail {
	opts = append([]trail.MaterialOption{
		trail.WithColors(red, red),
		trail.WithTexture(whiteTexture()),
		trail.WithAlphaCutoff(0),
		trail.WithFadeMode(trail.FadeNormalized),
	}, opts...)
	tr := trail.New(trail.Config{
		Length:       1,
		HeadWidth:    0.4,
		HeadGeometry: trail.VerticalHead,
		Material:     trail.NewMaterial(opts...),
	})
	tr.Initialize()
	tr.Advance(mgl32.Vec3{-0.5, 0, 0})
	tr.Advance(mgl32.Vec3{0.5, 0, 0})
	return tr
}

func TestNewDefaults(t *testing.T) {
	r := New(Options{})
	defer r.Close()
	if r.Context().Width() != 512 || r.Context().Height() != 512 {
		t.Errorf("size = %dx%d, want 512x512", r.Context().Width(), r.Context().Height())
	}
}

func TestDrawFillsTriangles(t *testing.T) {
	r := New(Options{Width: 100, Height: 100})
	defer r.Close()

	tr := twoNodeTrail()
	if err := r.Draw(tr.Mesh()); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if s := r.Stats(); s.Drawn != 2 || s.Discarded != 0 || s.Clipped != 0 {
		t.Errorf("Stats() = %+v, want 2 drawn", s)
	}

	// World (-0.3, -0.2) and (0.3, -0.2) lie inside the two triangles.
	img := r.Image()
	for _, p := range []image.Point{{35, 60}, {65, 60}} {
		rr, g, b, a := img.At(p.X, p.Y).RGBA()
		if rr < 0xf000 || g > 0x1000 || b > 0x1000 || a < 0xf000 {
			t.Errorf("pixel %v = (%x, %x, %x, %x), want opaque red", p, rr, g, b, a)
		}
	}
	// Far corner stays clear.
	if _, _, _, a := img.At(2, 2).RGBA(); a != 0 {
		t.Errorf("corner alpha = %x, want 0", a)
	}
}

func TestDrawDiscardsBelowCutoff(t *testing.T) {
	r := New(Options{Width: 64, Height: 64})
	defer r.Close()

	clear := gg.RGBA{R: 1, A: 0.1}
	tr := twoNodeTrail(trail.WithColors(clear, clear), trail.WithAlphaCutoff(0.5))
	if err := r.Draw(tr.Mesh()); err != nil {
		t.Fatal(err)
	}
	if s := r.Stats(); s.Drawn != 0 || s.Discarded != 2 {
		t.Errorf("Stats() = %+v, want 2 discarded", s)
	}
}

func TestDrawSkipsHiddenAndEmpty(t *testing.T) {
	r := New(Options{Width: 32, Height: 32})
	defer r.Close()

	tr := twoNodeTrail()
	tr.Mesh().Visible = false
	if err := r.Draw(tr.Mesh()); err != nil {
		t.Fatal(err)
	}
	if r.Stats().Drawn != 0 {
		t.Error("hidden mesh drawn")
	}

	if err := r.Draw(nil); err != nil {
		t.Fatal(err)
	}

	single := trail.New(trail.Config{Length: 4})
	single.Initialize()
	single.Advance(mgl32.Vec3{})
	if err := r.Draw(single.Mesh()); err != nil {
		t.Fatal(err)
	}
	if r.Stats().Drawn != 0 {
		t.Error("single-node trail drew triangles")
	}
}

func TestDrawClipsBehindCamera(t *testing.T) {
	r := New(Options{Width: 32, Height: 32})
	defer r.Close()

	view := mgl32.LookAtV(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, -10}, mgl32.Vec3{0, 1, 0})
	r.SetCamera(view, mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100))

	tr := twoNodeTrail()
	if err := r.Draw(tr.Mesh()); err != nil {
		t.Fatal(err)
	}
	if s := r.Stats(); s.Clipped != 2 || s.Drawn != 0 {
		t.Errorf("Stats() = %+v, want 2 clipped", s)
	}
}

func TestOrthoFit(t *testing.T) {
	p := OrthoFit(200, 100, 2)
	corner := p.Mul4x1(mgl32.Vec4{4, 2, 0, 1})
	if !corner.ApproxEqualThreshold(mgl32.Vec4{1, 1, corner.Z(), 1}, 1e-5) {
		t.Errorf("OrthoFit maps (4, 2) to %v, want (1, 1)", corner)
	}
}

func TestSavePNG(t *testing.T) {
	r := New(Options{Width: 16, Height: 16, Background: gg.RGBA{R: 0, G: 0, B: 0, A: 1}})
	defer r.Close()
	if err := r.Draw(twoNodeTrail().Mesh()); err != nil {
		t.Fatal(err)
	}
	if err := r.SavePNG(filepath.Join(t.TempDir(), "trail.png")); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
}
