package hop

import (
	"fmt"

	"github.com/calvinalkan/slotarena/pkg/arena"
)

// Validate recomputes the vacant runs with a linear scan and checks them
// against the block metadata and the block list.
func (a *Arena[T, V]) Validate() error {
	if len(a.slots) == 0 {
		return fmt.Errorf("%w: hop: missing sentinel", arena.ErrCorrupt)
	}

	if a.slots[0].version.IsFull() || a.slots[0].version.IsExhausted() {
		return fmt.Errorf("%w: hop: sentinel is not vacant", arena.ErrCorrupt)
	}

	full, exhausted := 0, 0
	runs := make(map[int]int)

	for i := 0; i < len(a.slots); {
		v := a.slots[i].version

		switch {
		case v.IsFull():
			full++
			i++

			continue
		case v.IsExhausted():
			if a.slots[i].free.otherEnd != i {
				return fmt.Errorf("%w: hop: retired slot %d is linked to %d", arena.ErrCorrupt, i, a.slots[i].free.otherEnd)
			}

			exhausted++
			i++

			continue
		}

		lo := i
		for i < len(a.slots) && a.isFree(i) {
			i++
		}

		hi := i - 1
		runs[lo] = hi

		if got := a.slots[lo].free.otherEnd; got != hi {
			return fmt.Errorf("%w: hop: run %d..%d low boundary points to %d", arena.ErrCorrupt, lo, hi, got)
		}

		if got := a.slots[hi].free.otherEnd; got != lo {
			return fmt.Errorf("%w: hop: run %d..%d high boundary points to %d", arena.ErrCorrupt, lo, hi, got)
		}
	}

	if full != a.length {
		return fmt.Errorf("%w: hop: len is %d but %d slots are full", arena.ErrCorrupt, a.length, full)
	}

	if exhausted != a.retired {
		return fmt.Errorf("%w: hop: %d retired but %d slots exhausted", arena.ErrCorrupt, a.retired, exhausted)
	}

	linked := 0
	prev := 0

	for n := a.slots[0].free.next; n != 0; n = a.slots[n].free.next {
		if n < 0 || n >= len(a.slots) {
			return fmt.Errorf("%w: hop: block list points out of range at %d", arena.ErrCorrupt, n)
		}

		if _, ok := runs[n]; !ok {
			return fmt.Errorf("%w: hop: block list visits %d which does not start a run", arena.ErrCorrupt, n)
		}

		if a.slots[n].free.prev != prev {
			return fmt.Errorf("%w: hop: block %d has prev %d, want %d", arena.ErrCorrupt, n, a.slots[n].free.prev, prev)
		}

		linked++
		if linked > len(runs) {
			return fmt.Errorf("%w: hop: block list cycles", arena.ErrCorrupt)
		}

		prev = n
	}

	if a.slots[0].free.prev != prev {
		return fmt.Errorf("%w: hop: list tail is %d, root says %d", arena.ErrCorrupt, prev, a.slots[0].free.prev)
	}

	if want := len(runs) - 1; linked != want {
		return fmt.Errorf("%w: hop: block list links %d of %d runs", arena.ErrCorrupt, linked, want)
	}

	return nil
}
