// Package preview rasterizes trail meshes on the CPU with gg.
//
// It evaluates the same fade contract as the GPU shader, per vertex, and
// fills each active triangle with the average of its three vertex colors
// modulated by the texture sampled at the triangle's centroid. The result
// is flat-shaded, which is enough for previews, golden tests and headless
// tools. Triangles whose color falls below the material's alpha cutoff are
// skipped, as the fragment stage would discard them.
//
// Blending is always source-over; additive materials render as normal.
package preview

import (
	"image"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gg"
	"github.com/gogpu/trail"
)

// Options configures a Renderer.
type Options struct {
	Width, Height int

	// Background fills the canvas on Clear.
	Background gg.RGBA

	// View and Projection map world space to clip space. The zero value
	// selects the identity view and an orthographic projection showing
	// [-1, 1] on both axes.
	View, Projection mgl32.Mat4
}

// Renderer draws trail meshes into a gg context.
type Renderer struct {
	dc   *gg.Context
	opts Options

	faces []trail.Face
	stats Stats
}

// Stats counts the triangles handled by the last Draw.
type Stats struct {
	Drawn     int
	Discarded int
	Clipped   int
}

// New creates a renderer with a cleared canvas.
func New(opts Options) *Renderer {
	if opts.Width <= 0 {
		opts.Width = 512
	}
	if opts.Height <= 0 {
		opts.Height = 512
	}
	if opts.View == (mgl32.Mat4{}) {
		opts.View = mgl32.Ident4()
	}
	if opts.Projection == (mgl32.Mat4{}) {
		opts.Projection = mgl32.Ortho(-1, 1, -1, 1, -1, 1)
	}
	r := &Renderer{
		dc:   gg.NewContext(opts.Width, opts.Height),
		opts: opts,
	}
	r.Clear()
	return r
}

// OrthoFit returns an orthographic projection centered on the origin that
// shows halfHeight world units above and below it, with the horizontal
// extent following the canvas aspect ratio.
func OrthoFit(width, height int, halfHeight float32) mgl32.Mat4 {
	aspect := float32(width) / float32(max(height, 1))
	hw := halfHeight * aspect
	return mgl32.Ortho(-hw, hw, -halfHeight, halfHeight, -1000, 1000)
}

// SetCamera replaces the view and projection matrices.
func (r *Renderer) SetCamera(view, projection mgl32.Mat4) {
	r.opts.View = view
	r.opts.Projection = projection
}

// Context returns the underlying gg context.
func (r *Renderer) Context() *gg.Context { return r.dc }

// Clear fills the canvas with the background color.
func (r *Renderer) Clear() {
	r.dc.ClearWithColor(r.opts.Background)
}

// Stats returns the counters of the last Draw.
func (r *Renderer) Stats() Stats { return r.stats }

// Draw rasterizes m. Hidden meshes draw nothing. Quads are painted from
// the oldest to the newest node, so the head ends up on top.
func (r *Renderer) Draw(m *trail.Mesh) error {
	r.stats = Stats{}
	if m == nil || !m.Visible || m.Topology == nil || m.Geometry == nil || m.Material == nil {
		return nil
	}

	u := m.Uniforms(r.opts.View, r.opts.Projection)
	mvp := u.MVP()
	g := m.Geometry
	tex := trail.MaterialTexture(m.Material)

	r.faces = m.Topology.ActiveFaces(r.faces[:0])
	slices.SortStableFunc(r.faces, func(a, b trail.Face) int {
		return int(g.NodeID(int(a.A))) - int(g.NodeID(int(b.A)))
	})

	for _, f := range r.faces {
		verts := [3]uint32{f.A, f.B, f.C}

		var pts [3]mgl32.Vec2
		var sum gg.RGBA
		var uv mgl32.Vec2
		clipped := false
		for k, vi := range verts {
			i := int(vi)
			frac := u.Fraction(g.NodeID(i))
			pos := trail.FadePosition(frac, g.Position(i), g.EdgePosition(i))
			p, ok := r.project(mvp, pos)
			if !ok {
				clipped = true
				break
			}
			pts[k] = p

			c := trail.FadeColor(frac, m.Material.HeadColor, m.Material.TailColor)
			sum.R += c.R
			sum.G += c.G
			sum.B += c.B
			sum.A += c.A
			uv = uv.Add(g.UV(i))
		}
		if clipped {
			r.stats.Clipped++
			continue
		}

		avg := gg.RGBA{R: sum.R / 3, G: sum.G / 3, B: sum.B / 3, A: sum.A / 3}
		color := trail.Modulate(avg, trail.SampleTexture(tex, uv.Mul(1.0/3)))
		if color.A < float64(u.AlphaCutoff) {
			r.stats.Discarded++
			continue
		}

		r.dc.SetRGBA(clamp01(color.R), clamp01(color.G), clamp01(color.B), clamp01(color.A))
		r.dc.MoveTo(float64(pts[0].X()), float64(pts[0].Y()))
		r.dc.LineTo(float64(pts[1].X()), float64(pts[1].Y()))
		r.dc.LineTo(float64(pts[2].X()), float64(pts[2].Y()))
		r.dc.ClosePath()
		if err := r.dc.Fill(); err != nil {
			return err
		}
		r.stats.Drawn++
	}
	return nil
}

// project maps a model-space point to canvas pixels. ok is false when the
// point is behind the camera.
func (r *Renderer) project(mvp mgl32.Mat4, p mgl32.Vec3) (mgl32.Vec2, bool) {
	clip := mvp.Mul4x1(p.Vec4(1))
	if clip.W() <= 1e-6 {
		return mgl32.Vec2{}, false
	}
	ndcX := clip.X() / clip.W()
	ndcY := clip.Y() / clip.W()
	x := (ndcX + 1) * 0.5 * float32(r.opts.Width)
	y := (1 - ndcY) * 0.5 * float32(r.opts.Height)
	return mgl32.Vec2{x, y}, true
}

// Image returns the canvas.
func (r *Renderer) Image() image.Image { return r.dc.Image() }

// SavePNG writes the canvas to path.
func (r *Renderer) SavePNG(path string) error { return r.dc.SavePNG(path) }

// Close releases the gg context.
func (r *Renderer) Close() error { return r.dc.Close() }

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
