package trail

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// maxAgeID is the id at which Advance renumbers the live samples from
// zero, keeping ids contiguous instead of overflowing int32.
const maxAgeID = math.MaxInt32

// Node is one historical sample of the target's path.
type Node struct {
	// Position is the sampled world-space position.
	Position mgl32.Vec3

	// Direction is the displacement from the previously accepted sample.
	// It is zero for the first sample after a reset.
	Direction mgl32.Vec3
}

// History is a fixed-capacity ring buffer of path samples.
//
// Slots are physical storage positions; the logical order of nodes is
// recovered from the per-slot age ids, which increase by one on every
// write. Once the buffer is full every Advance evicts exactly one oldest
// sample by overwriting its slot.
type History struct {
	nodes []Node
	ids   []int32

	length int // live samples, 0..cap
	head   int // next slot to write

	lastPosition mgl32.Vec3
	hasLast      bool

	nextID int32
	epoch  int // bumped on every renumbering
}

// NewHistory allocates a history able to hold capacity samples.
// A capacity of zero or less yields a disabled history whose Advance is a
// no-op.
func NewHistory(capacity int) *History {
	if capacity < 0 {
		capacity = 0
	}
	return &History{
		nodes: make([]Node, capacity),
		ids:   make([]int32, capacity),
	}
}

// Reset forgets every sample without reallocating storage.
// Age ids restart at zero.
func (h *History) Reset() {
	h.length = 0
	h.head = 0
	h.lastPosition = mgl32.Vec3{}
	h.hasLast = false
	h.nextID = 0
}

// Advance writes p into the slot at the write cursor and returns the slot
// and the age id stamped on it. ok is false when the history has zero
// capacity, in which case nothing is written.
func (h *History) Advance(p mgl32.Vec3) (slot int, id int32, ok bool) {
	if len(h.nodes) == 0 {
		return 0, 0, false
	}
	if h.nextID == maxAgeID {
		h.renumber()
	}
	if h.length < len(h.nodes) {
		h.length++
	}

	var dir mgl32.Vec3
	if h.hasLast {
		dir = p.Sub(h.lastPosition)
	}

	slot = h.head
	id = h.nextID
	h.nodes[slot] = Node{Position: p, Direction: dir}
	h.ids[slot] = id
	h.nextID++

	h.head = (h.head + 1) % len(h.nodes)
	h.lastPosition = p
	h.hasLast = true

	return slot, id, true
}

// renumber shifts the live ids so the oldest becomes zero.
func (h *History) renumber() {
	base := h.nextID - int32(h.length) //nolint:gosec // length bounded by capacity
	for i := 0; i < h.length; i++ {
		h.ids[h.wrap(h.head-h.length+i)] -= base
	}
	h.nextID -= base
	h.epoch++
}

// Epoch counts how many times the live ids were renumbered. Ids stamped
// elsewhere must be refreshed from ID when it changes.
func (h *History) Epoch() int { return h.epoch }

// Cap returns the number of slots.
func (h *History) Cap() int { return len(h.nodes) }

// Len returns the number of live samples.
func (h *History) Len() int { return h.length }

// HeadIndex returns the slot the next Advance will write.
func (h *History) HeadIndex() int { return h.head }

// LastPosition returns the most recently accepted sample. ok is false
// before the first Advance and after Reset.
func (h *History) LastPosition() (mgl32.Vec3, bool) {
	return h.lastPosition, h.hasLast
}

// Node returns the sample stored in slot. The result is meaningless for
// slots that are not Live.
func (h *History) Node(slot int) Node { return h.nodes[slot] }

// ID returns the age id stamped on slot.
func (h *History) ID(slot int) int32 { return h.ids[slot] }

// IDRange returns the age ids of the oldest and newest live samples.
func (h *History) IDRange() (minID, maxID int32, ok bool) {
	if h.length == 0 {
		return 0, 0, false
	}
	return h.nextID - int32(h.length), h.nextID - 1, true //nolint:gosec // length bounded by capacity
}

// Newest returns the slot of the most recent sample.
func (h *History) Newest() (int, bool) {
	if h.length == 0 {
		return 0, false
	}
	return h.prev(h.head), true
}

// Oldest returns the slot of the oldest live sample.
func (h *History) Oldest() (int, bool) {
	if h.length == 0 {
		return 0, false
	}
	return h.wrap(h.head - h.length), true
}

// Live reports whether slot currently holds a sample inside the live
// [minID, maxID] range.
func (h *History) Live(slot int) bool {
	if slot < 0 || slot >= len(h.nodes) || h.length == 0 {
		return false
	}
	oldest := h.wrap(h.head - h.length)
	return h.wrap(slot-oldest) < h.length
}

// Ordered appends the live slots to dst from oldest to newest.
func (h *History) Ordered(dst []int) []int {
	if h.length == 0 {
		return dst
	}
	start := h.wrap(h.head - h.length)
	for i := 0; i < h.length; i++ {
		dst = append(dst, (start+i)%len(h.nodes))
	}
	return dst
}

// prev returns the slot written immediately before slot.
func (h *History) prev(slot int) int {
	return h.wrap(slot - 1)
}

func (h *History) wrap(i int) int {
	n := len(h.nodes)
	return ((i % n) + n) % n
}
