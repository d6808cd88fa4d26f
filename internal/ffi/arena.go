package ffi

// Handle is an opaque pointer-sized token referencing an object owned by the
// boundary. The zero Handle is never valid; destroy operations on it are
// no-ops.
type Handle uint64

// arena is a slot table with generation-checked handles. A handle packs the
// slot index in the high 32 bits and the slot generation in the low 32; the
// generation advances on every destroy, so a stale handle misses rather than
// aliasing whatever reused the slot.
type arena[T any] struct {
	slots []slot[T]
	free  []uint32
}

type slot[T any] struct {
	gen  uint32
	live bool
	val  T
}

func packHandle(index, gen uint32) Handle {
	return Handle(uint64(index)<<32 | uint64(gen))
}

func unpackHandle(h Handle) (index, gen uint32) {
	return uint32(uint64(h) >> 32), uint32(uint64(h) & 0xFFFFFFFF)
}

// create stores val and returns its handle.
func (a *arena[T]) create(val T) Handle {
	var index uint32
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		// Generations start at 1 so a handle is never zero.
		a.slots = append(a.slots, slot[T]{gen: 1})
		index = uint32(len(a.slots) - 1)
	}

	s := &a.slots[index]
	s.live = true
	s.val = val
	return packHandle(index, s.gen)
}

// get returns the value for h, or false if h is zero, stale, or foreign.
func (a *arena[T]) get(h Handle) (T, bool) {
	var zero T
	index, gen := unpackHandle(h)
	if int(index) >= len(a.slots) {
		return zero, false
	}
	s := &a.slots[index]
	if !s.live || s.gen != gen {
		return zero, false
	}
	return s.val, true
}

// destroy frees the slot for h and returns the value it held. Destroying a
// zero or stale handle is a no-op.
func (a *arena[T]) destroy(h Handle) (T, bool) {
	var zero T
	index, gen := unpackHandle(h)
	if int(index) >= len(a.slots) {
		return zero, false
	}
	s := &a.slots[index]
	if !s.live || s.gen != gen {
		return zero, false
	}

	val := s.val
	s.val = zero
	s.live = false
	s.gen++
	a.free = append(a.free, index)
	return val, true
}

// liveCount returns the number of live slots.
func (a *arena[T]) liveCount() int {
	n := 0
	for i := range a.slots {
		if a.slots[i].live {
			n++
		}
	}
	return n
}
