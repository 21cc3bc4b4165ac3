package trail

import "fmt"

// Face is one triangle of the strip, as three vertex indices.
type Face struct {
	A, B, C uint32
}

// Topology keeps the strip's triangle list consistent with the ring buffer.
//
// Quads are stored per source slot: quad q owns triangles 2q and 2q+1 and
// joins the node in slot q to the node written immediately after it. When a
// slot is overwritten only the two quads touching it change, so each
// advance costs O(1) regardless of the trail length.
type Topology struct {
	faces  []Face
	active []bool

	dirtyLo, dirtyHi int // quad range, hi exclusive
}

// NewTopology allocates storage for capacity quads and wires them in
// physical order.
func NewTopology(capacity int) *Topology {
	if capacity < 0 {
		capacity = 0
	}
	t := &Topology{
		faces:  make([]Face, capacity*2),
		active: make([]bool, capacity),
	}
	t.BuildInitialFaces()
	return t
}

// Cap returns the number of quads.
func (t *Topology) Cap() int { return len(t.active) }

// BuildInitialFaces wires quad q to slots q and q+1 (wrapping), assuming the
// nodes sit in physical order, and deactivates every quad. Nothing is drawn
// until Connect activates quads again.
func (t *Topology) BuildInitialFaces() {
	n := len(t.active)
	for q := 0; q < n; q++ {
		t.wire(q, (q+1)%n)
		t.active[q] = false
	}
	t.markDirty(0, n)
}

// Connect rewires quad src so that it joins the node in slot src to the
// node in slot dst, its ring-buffer successor, and activates it.
func (t *Topology) Connect(src, dst int) {
	t.checkSlot(src)
	t.checkSlot(dst)
	t.wire(src, dst)
	t.active[src] = true
	t.markDirty(src, src+1)
}

// Disconnect deactivates the quad whose source is slot. It is called for the
// newest node, whose successor in the ring is the oldest node.
func (t *Topology) Disconnect(slot int) {
	t.checkSlot(slot)
	if !t.active[slot] {
		return
	}
	t.active[slot] = false
	t.markDirty(slot, slot+1)
}

// Faces returns the stored faces, two per quad, including inactive ones.
// The slice aliases internal storage.
func (t *Topology) Faces() []Face { return t.faces }

// QuadActive reports whether quad q is drawn.
func (t *Topology) QuadActive(q int) bool { return t.active[q] }

// ActiveQuads returns the number of drawn quads.
func (t *Topology) ActiveQuads() int {
	n := 0
	for _, a := range t.active {
		if a {
			n++
		}
	}
	return n
}

// ActiveTriangles returns the number of drawn triangles.
func (t *Topology) ActiveTriangles() int { return t.ActiveQuads() * 2 }

// ActiveFaces appends the faces of every active quad to dst.
func (t *Topology) ActiveFaces(dst []Face) []Face {
	for q, a := range t.active {
		if a {
			dst = append(dst, t.faces[2*q], t.faces[2*q+1])
		}
	}
	return dst
}

// Indices writes the triangle-list index buffer for all quads into dst,
// growing it as needed, and returns it. Inactive quads collapse to six
// copies of their source's left vertex so they cover no pixels.
func (t *Topology) Indices(dst []uint32) []uint32 {
	return t.IndexRange(dst, 0, len(t.active))
}

// IndexRange is like Indices but covers quads [first, first+count) only.
func (t *Topology) IndexRange(dst []uint32, first, count int) []uint32 {
	need := count * 6
	if cap(dst) < need {
		dst = make([]uint32, need)
	}
	dst = dst[:need]
	for i := 0; i < count; i++ {
		q := first + i
		out := dst[i*6 : i*6+6]
		if t.active[q] {
			f1, f2 := t.faces[2*q], t.faces[2*q+1]
			out[0], out[1], out[2] = f1.A, f1.B, f1.C
			out[3], out[4], out[5] = f2.A, f2.B, f2.C
			continue
		}
		v := uint32(2 * q) //nolint:gosec // quad index bounded by capacity
		for k := range out {
			out[k] = v
		}
	}
	return dst
}

// IndexCount returns the length of the full index buffer.
func (t *Topology) IndexCount() int { return len(t.active) * 6 }

// DirtyQuadRange returns the range of quads changed since the last
// ClearDirty.
func (t *Topology) DirtyQuadRange() (first, count int, ok bool) {
	if t.dirtyHi <= t.dirtyLo {
		return 0, 0, false
	}
	return t.dirtyLo, t.dirtyHi - t.dirtyLo, true
}

// ClearDirty forgets the dirty range.
func (t *Topology) ClearDirty() {
	t.dirtyLo, t.dirtyHi = 0, 0
}

// wire stores the two triangles joining slot src to slot dst. Both
// triangles share the same winding.
func (t *Topology) wire(src, dst int) {
	s := uint32(src * 2) //nolint:gosec // slot bounded by capacity
	d := uint32(dst * 2) //nolint:gosec // slot bounded by capacity
	t.faces[2*src] = Face{A: s, B: d, C: s + 1}
	t.faces[2*src+1] = Face{A: d, B: d + 1, C: s + 1}
}

func (t *Topology) markDirty(lo, hi int) {
	if hi <= lo {
		return
	}
	if t.dirtyHi <= t.dirtyLo {
		t.dirtyLo, t.dirtyHi = lo, hi
		return
	}
	t.dirtyLo = min(t.dirtyLo, lo)
	t.dirtyHi = max(t.dirtyHi, hi)
}

func (t *Topology) checkSlot(slot int) {
	if slot < 0 || slot >= len(t.active) {
		panic(fmt.Sprintf("trail: topology slot %d out of range [0, %d)", slot, len(t.active)))
	}
}
