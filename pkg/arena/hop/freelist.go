package hop

// freeRecord is the metadata of a vacant slot.
//
// Vacant slots are grouped into maximal runs ("blocks"). Both boundary slots
// of a block store the index of the other boundary in otherEnd; interior
// slots hold stale data. The low boundary of every block except the one
// starting at the sentinel also holds next/prev links of a circular list
// whose root is the sentinel slot 0.
type freeRecord struct {
	next     int
	prev     int
	otherEnd int
}

// isFree reports whether slot i is vacant and reusable. The sentinel counts
// as free; retired slots do not, so blocks never grow across them.
func (a *Arena[T, V]) isFree(i int) bool {
	v := a.slots[i].version

	return !v.IsFull() && !v.IsExhausted()
}

// vacantIndex is the slot the next insert will use: the top of the sentinel
// block, then the bottom of the first listed block, then a new slot.
func (a *Arena[T, V]) vacantIndex() int {
	root := &a.slots[0].free

	switch {
	case root.otherEnd != 0:
		return root.otherEnd
	case root.next != 0:
		return root.next
	default:
		return len(a.slots)
	}
}

// unlinkFree takes slot i out of its block. i must be a boundary of a block
// as returned by vacantIndex.
func (a *Arena[T, V]) unlinkFree(i int) {
	f := a.slots[i].free

	switch {
	case f.otherEnd == i:
		a.slots[f.prev].free.next = f.next
		a.slots[f.next].free.prev = f.prev
	case f.otherEnd < i:
		lo := f.otherEnd
		a.slots[lo].free.otherEnd = i - 1
		a.slots[i-1].free.otherEnd = lo
	default:
		hi := f.otherEnd
		moved := i + 1
		a.slots[moved].free = freeRecord{next: f.next, prev: f.prev, otherEnd: hi}
		a.slots[hi].free.otherEnd = moved
		a.slots[f.prev].free.next = moved
		a.slots[f.next].free.prev = moved
	}
}

// linkFree adds the just-emptied slot i to the block structure, merging it
// with vacant neighbors.
func (a *Arena[T, V]) linkFree(i int) {
	left := a.isFree(i - 1)
	right := i+1 < len(a.slots) && a.isFree(i+1)

	switch {
	case left && right:
		lo := a.slots[i-1].free.otherEnd
		r := a.slots[i+1].free
		a.slots[r.prev].free.next = r.next
		a.slots[r.next].free.prev = r.prev
		a.slots[lo].free.otherEnd = r.otherEnd
		a.slots[r.otherEnd].free.otherEnd = lo
	case left:
		lo := a.slots[i-1].free.otherEnd
		a.slots[lo].free.otherEnd = i
		a.slots[i].free.otherEnd = lo
	case right:
		r := a.slots[i+1].free
		a.slots[i].free = r
		a.slots[r.otherEnd].free.otherEnd = i
		a.slots[r.prev].free.next = i
		a.slots[r.next].free.prev = i
	default:
		head := a.slots[0].free.next
		a.slots[i].free = freeRecord{next: head, prev: 0, otherEnd: i}
		a.slots[head].free.prev = i
		a.slots[0].free.next = i
	}
}

// nextOccupied returns the first occupied index at or after i, or len(slots).
// i must be 0, one past an occupied or retired slot, or the low boundary of a
// block.
func (a *Arena[T, V]) nextOccupied(i int) int {
	for i < len(a.slots) {
		s := &a.slots[i]

		switch {
		case s.version.IsFull():
			return i
		case s.version.IsExhausted():
			i++
		default:
			i = s.free.otherEnd + 1
		}
	}

	return len(a.slots)
}

// prevOccupied returns the last occupied index before end, or -1. end must be
// len(slots) or an occupied index.
func (a *Arena[T, V]) prevOccupied(end int) int {
	i := end - 1
	for i >= 0 {
		s := &a.slots[i]

		switch {
		case s.version.IsFull():
			return i
		case s.version.IsExhausted():
			i--
		default:
			i = s.free.otherEnd - 1
		}
	}

	return -1
}
