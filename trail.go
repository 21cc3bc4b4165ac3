package trail

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Config holds the construction-time settings of a Trail.
type Config struct {
	// Length is the number of segments kept behind the head. The history
	// holds Length+1 nodes; Length <= 0 disables the trail.
	Length int

	// HeadWidth scales HeadGeometry; with the presets it is the ribbon's
	// half-width.
	HeadWidth float32

	// HeadGeometry is the cross-section placed at every node. The zero
	// value selects FlatHead.
	HeadGeometry HeadGeometry

	// Target is sampled by Update. Optional.
	Target Target

	// Scene receives the mesh on Attach and gives it back on Destroy.
	// Optional.
	Scene Scene

	// Material is bound to the mesh. Nil selects NewMaterial().
	Material *Material
}

// Capacity returns the number of history slots for c.
func (c Config) Capacity() int {
	if c.Length <= 0 {
		return 0
	}
	return c.Length + 1
}

// Trail is a ribbon following a moving target.
//
// Call Initialize once, then Advance (or Update) once per frame from the
// update phase. The mesh is read by the rendering backend during the draw
// phase of the same frame. Trail is not safe for concurrent use.
type Trail struct {
	cfg Config

	history  *History
	topology *Topology
	geometry *Geometry
	mesh     *Mesh

	ordered []int
	epoch   int

	initialized bool
	attached    bool
}

// New creates a trail. No storage is allocated until Initialize.
func New(cfg Config) *Trail {
	if cfg.HeadGeometry.IsZero() {
		cfg.HeadGeometry = FlatHead
	}
	if cfg.Material == nil {
		cfg.Material = NewMaterial()
	}
	return &Trail{cfg: cfg}
}

// Config returns the trail's configuration.
func (t *Trail) Config() Config { return t.cfg }

// Initialize allocates the history, topology and geometry, creates the
// mesh bound to the material, and resets the trail. The mesh is not added
// to the scene; see Attach. Calling Initialize again discards the previous
// mesh first.
func (t *Trail) Initialize() {
	t.Destroy()

	capacity := t.cfg.Capacity()
	t.history = NewHistory(capacity)
	t.epoch = 0
	t.topology = NewTopology(capacity)
	t.geometry = NewGeometry(capacity, t.cfg.HeadWidth, t.cfg.HeadGeometry)
	t.mesh = newMesh(t.history, t.geometry, t.topology, t.cfg.Material)
	t.initialized = true

	if capacity == 0 {
		Logger().Warn("trail: zero capacity, advance is a no-op", "length", t.cfg.Length)
	} else {
		Logger().Info("trail: initialized",
			"capacity", capacity,
			"vertices", t.geometry.VertexCount(),
			"indices", t.topology.IndexCount())
	}

	t.Reset()
}

// Attach adds the mesh to the configured scene.
func (t *Trail) Attach() error {
	if !t.initialized {
		panic("trail: Attach called before Initialize")
	}
	if t.cfg.Scene == nil {
		return ErrNoScene
	}
	if t.attached {
		return nil
	}
	if err := t.cfg.Scene.Add(t.mesh); err != nil {
		return err
	}
	t.attached = true
	return nil
}

// Destroy removes the mesh from the scene and releases the geometry. It is
// safe to call when no mesh exists.
func (t *Trail) Destroy() {
	if t.mesh == nil {
		return
	}
	if t.cfg.Scene != nil {
		t.cfg.Scene.Remove(t.mesh)
	}
	Logger().Info("trail: destroyed", "capacity", t.history.Cap())

	t.mesh = nil
	t.geometry = nil
	t.topology = nil
	t.history = nil
	t.initialized = false
	t.attached = false
}

// Reset forgets every sample and collapses the strip so nothing renders
// until new samples arrive. Storage is rewritten in place.
func (t *Trail) Reset() {
	t.mustInitialized("Reset")
	t.history.Reset()
	t.topology.BuildInitialFaces()
	t.geometry.ZeroVertices()
	t.mesh.MarkDirty()
}

// Advance appends p as the new head. Once the trail is full the oldest
// node is evicted by overwriting its slot.
//
// Two quads change per call: the one joining the previous head to the new
// head is wired and activated, and the one joining the new head to the
// oldest node is collapsed.
func (t *Trail) Advance(p mgl32.Vec3) {
	t.mustInitialized("Advance")

	slot, id, ok := t.history.Advance(p)
	if !ok {
		return
	}
	if e := t.history.Epoch(); e != t.epoch {
		t.epoch = e
		t.restampIDs()
	}
	if t.history.Len() > 1 {
		prev := (slot - 1 + t.history.Cap()) % t.history.Cap()
		t.topology.Connect(prev, slot)
	}
	t.topology.Disconnect(slot)

	n := t.history.Node(slot)
	firstMove := !t.geometry.HasForward() && n.Direction.Dot(n.Direction) > 0
	t.geometry.WriteNode(slot, n, id)
	if firstMove {
		t.reorientStationary(slot)
	}
	t.mesh.MarkDirty()
}

// restampIDs copies the renumbered history ids onto the vertices.
func (t *Trail) restampIDs() {
	t.ordered = t.history.Ordered(t.ordered[:0])
	for _, s := range t.ordered {
		t.geometry.StampID(s, t.history.ID(s))
	}
	Logger().Debug("trail: age ids renumbered", "epoch", t.epoch)
}

// reorientStationary rewrites the nodes sampled before the first movement.
// They were placed with the default forward axis and all share one
// position, so they take the new head's travel direction.
func (t *Trail) reorientStationary(head int) {
	t.ordered = t.history.Ordered(t.ordered[:0])
	for _, s := range t.ordered {
		if s != head {
			t.geometry.WriteNode(s, t.history.Node(s), t.history.ID(s))
		}
	}
}

// Update samples the target and advances to its position. It does nothing
// when no target is configured.
func (t *Trail) Update() {
	if t.cfg.Target == nil {
		return
	}
	t.Advance(t.cfg.Target.Position())
}

// Uniforms returns the shader uniforms for the current state, combining
// the mesh transform with the supplied camera matrices.
func (t *Trail) Uniforms(view, projection mgl32.Mat4) Uniforms {
	t.mustInitialized("Uniforms")
	return t.mesh.Uniforms(view, projection)
}

// Mesh returns the renderable, or nil before Initialize and after Destroy.
func (t *Trail) Mesh() *Mesh { return t.mesh }

// History returns the sample history.
func (t *Trail) History() *History { return t.history }

// Topology returns the strip topology.
func (t *Trail) Topology() *Topology { return t.topology }

// Geometry returns the vertex storage.
func (t *Trail) Geometry() *Geometry { return t.geometry }

// Len returns the number of live nodes.
func (t *Trail) Len() int {
	if t.history == nil {
		return 0
	}
	return t.history.Len()
}

// Cap returns the node capacity.
func (t *Trail) Cap() int { return t.cfg.Capacity() }

// ActiveTriangles returns the number of drawn triangles, which is
// 2*(Len()-1) once at least one node is live.
func (t *Trail) ActiveTriangles() int {
	if t.topology == nil {
		return 0
	}
	return t.topology.ActiveTriangles()
}

// Initialized reports whether Initialize has been called since the last
// Destroy.
func (t *Trail) Initialized() bool { return t.initialized }

func (t *Trail) mustInitialized(op string) {
	if !t.initialized {
		panic("trail: " + op + " called before Initialize")
	}
}
