package trail

import "github.com/go-gl/mathgl/mgl32"

// HeadGeometry describes the ribbon's cross-section at a node: the two
// points that become the left and right strip vertices.
//
// Points live in the node's local frame, where X runs along the side axis
// (perpendicular to travel) and Y along the frame's up axis. They are scaled
// by the trail's head width, so the presets below produce a ribbon whose
// half-width equals that width.
type HeadGeometry struct {
	Left, Right mgl32.Vec2
}

var (
	// FlatHead lays the ribbon flat, spanning the side axis.
	FlatHead = HeadGeometry{Left: mgl32.Vec2{-1, 0}, Right: mgl32.Vec2{1, 0}}

	// VerticalHead stands the ribbon upright, spanning the up axis.
	VerticalHead = HeadGeometry{Left: mgl32.Vec2{0, -1}, Right: mgl32.Vec2{0, 1}}
)

// LocalHead builds a HeadGeometry from two local points. Missing points
// default to the FlatHead ones; extra points are ignored.
func LocalHead(points ...mgl32.Vec2) HeadGeometry {
	h := FlatHead
	if len(points) > 0 {
		h.Left = points[0]
	}
	if len(points) > 1 {
		h.Right = points[1]
	}
	return h
}

// IsZero reports whether both points are at the origin, which would
// produce a zero-width ribbon.
func (h HeadGeometry) IsZero() bool {
	return h.Left == (mgl32.Vec2{}) && h.Right == (mgl32.Vec2{})
}

// frame is an orthonormal basis oriented along the direction of travel.
type frame struct {
	forward, side, up mgl32.Vec3
}

var (
	axisY = mgl32.Vec3{0, 1, 0}
	axisZ = mgl32.Vec3{0, 0, 1}
)

// parallelEpsilon bounds |cross|² below which forward is treated as
// parallel to the reference up axis.
const parallelEpsilon = 1e-8

// newFrame builds the node frame for the given forward axis, which must be
// non-zero. The reference up axis is +Y, switching to +Z when forward is
// (nearly) vertical.
func newFrame(forward mgl32.Vec3) frame {
	f := forward.Normalize()
	ref := axisY
	side := f.Cross(ref)
	if side.Dot(side) < parallelEpsilon {
		ref = axisZ
		side = f.Cross(ref)
	}
	side = side.Normalize()
	return frame{forward: f, side: side, up: side.Cross(f)}
}

// place maps a local head point into world space around center.
func (fr frame) place(center mgl32.Vec3, p mgl32.Vec2, width float32) mgl32.Vec3 {
	return center.
		Add(fr.side.Mul(p.X() * width)).
		Add(fr.up.Mul(p.Y() * width))
}
