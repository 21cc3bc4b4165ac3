package trail

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrNoScene is returned by Trail.Attach when the trail has no scene.
var ErrNoScene = errors.New("trail: no scene configured")

// Scene is the host scene graph capability. The trail hands its mesh to
// the scene for drawing and takes it back on Destroy.
type Scene interface {
	Add(m *Mesh) error
	Remove(m *Mesh)
}

// Target supplies the world-space position the trail follows.
type Target interface {
	Position() mgl32.Vec3
}

// TargetFunc adapts a function to Target.
type TargetFunc func() mgl32.Vec3

// Position calls f.
func (f TargetFunc) Position() mgl32.Vec3 { return f() }

// Mesh is the renderable produced by a Trail: geometry, topology, the
// material, and a transform.
//
// The transform is owned by the host and is not recomputed by the trail.
// Trail positions are usually world-space, so the identity is the common
// choice.
type Mesh struct {
	Geometry  *Geometry
	Topology  *Topology
	Material  *Material
	Transform mgl32.Mat4
	Visible   bool

	history *History
	dirty   bool
}

func newMesh(h *History, g *Geometry, t *Topology, m *Material) *Mesh {
	return &Mesh{
		Geometry:  g,
		Topology:  t,
		Material:  m,
		Transform: mgl32.Ident4(),
		Visible:   true,
		history:   h,
		dirty:     true,
	}
}

// IDRange returns the age ids of the oldest and newest live nodes.
func (m *Mesh) IDRange() (minID, maxID int32, ok bool) {
	if m.history == nil {
		return 0, 0, false
	}
	return m.history.IDRange()
}

// Uniforms returns the shader uniforms for the mesh's current state,
// combining its transform with the supplied camera matrices.
func (m *Mesh) Uniforms(view, projection mgl32.Mat4) Uniforms {
	u := Uniforms{
		Model:      m.Transform,
		View:       view,
		Projection: projection,
	}
	if m.history != nil {
		u.TrailLength = float32(m.history.Cap())
	}
	if mat := m.Material; mat != nil {
		u.HeadColor = ColorVec(mat.HeadColor)
		u.TailColor = ColorVec(mat.TailColor)
		u.FadeMode = mat.FadeMode
		u.AlphaCutoff = mat.AlphaCutoff
	}
	u.MinID, u.MaxID, _ = m.IDRange()
	return u
}

// Dirty reports whether the geometry or topology changed since the last
// ClearDirty. Backends upload the ranges reported by Geometry.DirtyRange
// and Topology.DirtyQuadRange.
func (m *Mesh) Dirty() bool { return m.dirty }

// MarkDirty flags the mesh for re-upload.
func (m *Mesh) MarkDirty() { m.dirty = true }

// ClearDirty resets the dirty flag and the geometry and topology ranges.
// Backends call it after uploading.
func (m *Mesh) ClearDirty() {
	m.dirty = false
	if m.Geometry != nil {
		m.Geometry.ClearDirty()
	}
	if m.Topology != nil {
		m.Topology.ClearDirty()
	}
}

// TriangleCount returns the number of drawn triangles.
func (m *Mesh) TriangleCount() int {
	if m.Topology == nil {
		return 0
	}
	return m.Topology.ActiveTriangles()
}
