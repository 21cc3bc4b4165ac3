package trail

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex attribute names, matching the shader inputs.
const (
	AttrPosition     = "position"
	AttrEdgePosition = "edgePosition"
	AttrUV           = "uv"
	AttrNodeID       = "nodeID"
)

// VerticesPerNode is the number of strip vertices owned by each slot.
const VerticesPerNode = 2

// Geometry owns the strip's vertex attributes: two vertices per slot, with
// vertex 2s on the left edge and 2s+1 on the right edge of slot s.
//
// Geometry never talks to the GPU. It records which vertices changed and
// leaves the upload to the rendering backend.
type Geometry struct {
	positions     []mgl32.Vec3
	edgePositions []mgl32.Vec3
	uvs           []mgl32.Vec2
	nodeIDs       []int32

	width float32
	head  HeadGeometry

	forward    mgl32.Vec3 // last non-zero travel direction
	hasForward bool

	dirtyLo, dirtyHi int // vertex range, hi exclusive
}

// NewGeometry allocates vertex storage for capacity slots. The vertices
// start collapsed at the origin.
func NewGeometry(capacity int, width float32, head HeadGeometry) *Geometry {
	if capacity < 0 {
		capacity = 0
	}
	n := capacity * VerticesPerNode
	g := &Geometry{
		positions:     make([]mgl32.Vec3, n),
		edgePositions: make([]mgl32.Vec3, n),
		uvs:           make([]mgl32.Vec2, n),
		nodeIDs:       make([]int32, n),
		width:         width,
		head:          head,
	}
	for i := range g.uvs {
		g.uvs[i] = vertexUV(i)
	}
	g.ZeroVertices()
	return g
}

// vertexUV returns the fixed texture coordinate of vertex i: u runs across
// the ribbon (0 left, 1 right), v samples the middle row.
func vertexUV(i int) mgl32.Vec2 {
	return mgl32.Vec2{float32(i % VerticesPerNode), 0.5}
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int { return len(g.positions) }

// Width returns the configured head width.
func (g *Geometry) Width() float32 { return g.width }

// Head returns the configured head cross-section.
func (g *Geometry) Head() HeadGeometry { return g.head }

// ZeroVertices collapses every vertex to the origin so that an empty trail
// renders nothing, and forgets the last travel direction.
func (g *Geometry) ZeroVertices() {
	for i := range g.positions {
		g.positions[i] = mgl32.Vec3{}
		g.edgePositions[i] = mgl32.Vec3{}
		g.nodeIDs[i] = 0
	}
	g.forward = mgl32.Vec3{}
	g.hasForward = false
	g.markDirty(0, len(g.positions))
}

// WriteNode rewrites both vertices of slot from node n and stamps them with
// the age id. The cross-section is oriented perpendicular to n.Direction;
// when the node did not move, the previous direction is reused (+Z before
// any movement, until Trail.Advance reorients those nodes).
func (g *Geometry) WriteNode(slot int, n Node, id int32) {
	if slot < 0 || slot*VerticesPerNode >= len(g.positions) {
		panic(fmt.Sprintf("trail: geometry slot %d out of range [0, %d)", slot, len(g.positions)/VerticesPerNode))
	}

	if n.Direction.Dot(n.Direction) > 0 {
		g.forward = n.Direction
		g.hasForward = true
	}
	fwd := axisZ
	if g.hasForward {
		fwd = g.forward
	}
	fr := newFrame(fwd)

	left := fr.place(n.Position, g.head.Left, g.width)
	right := fr.place(n.Position, g.head.Right, g.width)

	l, r := slot*VerticesPerNode, slot*VerticesPerNode+1
	g.positions[l], g.positions[r] = left, right
	g.edgePositions[l], g.edgePositions[r] = right, left
	g.nodeIDs[l], g.nodeIDs[r] = id, id

	g.markDirty(l, r+1)
}

// StampID replaces the age id of both vertices of slot.
func (g *Geometry) StampID(slot int, id int32) {
	l := slot * VerticesPerNode
	g.nodeIDs[l], g.nodeIDs[l+1] = id, id
	g.markDirty(l, l+VerticesPerNode)
}

// HasForward reports whether a non-zero travel direction has been seen
// since the last ZeroVertices.
func (g *Geometry) HasForward() bool { return g.hasForward }

// Position returns the position of vertex i.
func (g *Geometry) Position(i int) mgl32.Vec3 { return g.positions[i] }

// EdgePosition returns the paired edge position of vertex i.
func (g *Geometry) EdgePosition(i int) mgl32.Vec3 { return g.edgePositions[i] }

// UV returns the texture coordinate of vertex i.
func (g *Geometry) UV(i int) mgl32.Vec2 { return g.uvs[i] }

// NodeID returns the age id stamped on vertex i.
func (g *Geometry) NodeID(i int) int32 { return g.nodeIDs[i] }

// Positions returns the position attribute. The slice aliases internal
// storage and must not be modified.
func (g *Geometry) Positions() []mgl32.Vec3 { return g.positions }

// EdgePositions returns the edgePosition attribute.
func (g *Geometry) EdgePositions() []mgl32.Vec3 { return g.edgePositions }

// UVs returns the uv attribute.
func (g *Geometry) UVs() []mgl32.Vec2 { return g.uvs }

// NodeIDs returns the nodeID attribute.
func (g *Geometry) NodeIDs() []int32 { return g.nodeIDs }

// DirtyRange returns the vertex range changed since the last ClearDirty.
func (g *Geometry) DirtyRange() (first, count int, ok bool) {
	if g.dirtyHi <= g.dirtyLo {
		return 0, 0, false
	}
	return g.dirtyLo, g.dirtyHi - g.dirtyLo, true
}

// ClearDirty forgets the dirty range.
func (g *Geometry) ClearDirty() {
	g.dirtyLo, g.dirtyHi = 0, 0
}

func (g *Geometry) markDirty(lo, hi int) {
	if hi <= lo {
		return
	}
	if g.dirtyHi <= g.dirtyLo {
		g.dirtyLo, g.dirtyHi = lo, hi
		return
	}
	g.dirtyLo = min(g.dirtyLo, lo)
	g.dirtyHi = max(g.dirtyHi, hi)
}
