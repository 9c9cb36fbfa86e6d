package buddy

import "fmt"

// Verify recursively checks invariants 1-7 from spec.md §3 over the whole
// tree, returning the first violation found. Ported node-for-node from
// original_source/src/buddy_allocator.c's buddy_verify_recursive, with one
// deliberate difference: the C reference calls FATAL and aborts the
// process; this returns an error instead so tests (and any caller) can
// assert on a bad tree without crashing. Use MustVerify for the original
// abort-on-corruption behavior.
func (a *Allocator) Verify() error {
	if a.state != ready {
		contractViolation("Verify called outside READY state")
	}
	return a.verifyNode(0)
}

// MustVerify panics if Verify finds a violation. This is the direct
// analogue of the C reference always aborting on a bad tree.
func (a *Allocator) MustVerify() {
	if err := a.Verify(); err != nil {
		contractViolation("%v", err)
	}
}

func (a *Allocator) verifyNode(i uint64) error {
	level := heapLevel(i)
	v := a.heap[i]

	if level == a.maxLevel {
		// Leaves only ever hold maxLevel (wholly free), ALLOCATED, or
		// UNUSABLE.
		switch v {
		case cellUnusable, cellAllocated:
			return nil
		default:
			if v == a.maxLevel {
				return nil
			}
			return fmt.Errorf("buddy: node %d (leaf): invalid byte %d", i, v)
		}
	}

	left, right := heapLeft(i), heapRight(i)

	switch {
	case v == cellUnusable, v == cellAllocated:
		// Descendants of an allocated or unusable block are never
		// consulted (invariant 6/7): nothing further to check.
		return nil

	case v == cellFilled:
		if a.heap[left] <= maxValidLevel || a.heap[right] <= maxValidLevel {
			return fmt.Errorf("buddy: node %d claims FILLED but a child has free space", i)
		}
		if err := a.verifyNode(left); err != nil {
			return err
		}
		return a.verifyNode(right)

	case v < level:
		return fmt.Errorf("buddy: node %d has byte %d, smaller than its own level %d", i, v, level)

	case v == level:
		// Wholly free: the highest ancestor that represents this subtree
		// as free. Descendants are stale/uninspected once collapsed
		// (invariant 5) — matches the C reference's lack of recursion
		// here.
		return nil

	case v > level && v <= a.maxLevel:
		// Split: at least one descendant is busy.
		if v != minCell(a.heap[left], a.heap[right]) {
			return fmt.Errorf("buddy: node %d (level %d, byte %d) is not min(children)=%d", i, level, v, minCell(a.heap[left], a.heap[right]))
		}
		if a.heap[left] == level+1 && a.heap[right] == level+1 {
			return fmt.Errorf("buddy: node %d: two wholly-free children at level %d should have coalesced", i, level+1)
		}
		if err := a.verifyNode(left); err != nil {
			return err
		}
		return a.verifyNode(right)

	default:
		return fmt.Errorf("buddy: node %d has byte %d, greater than max level %d", i, v, a.maxLevel)
	}
}
