package buddy

import "github.com/golang/glog"

// propagate walks from blockIndex up to the root, recomputing each
// ancestor's byte as min(self, sibling), promoting to FILLED when the
// result exceeds maxValidLevel. Stops early once an ancestor's value is
// unchanged, exactly as spec.md §4.2 step 7 / §4.3 step 4 prescribe.
func (a *Allocator) propagate(blockIndex uint64) {
	for blockIndex != 0 {
		parent := heapParent(blockIndex)
		updated := minCell(a.heap[blockIndex], a.heap[heapSibling(blockIndex)])
		if updated > maxValidLevel {
			updated = cellFilled
		}
		if a.heap[parent] == updated {
			break
		}
		a.heap[parent] = updated
		blockIndex = parent
	}
}

// acquireEmptySlot descends from the root, splitting wholly-free blocks as
// it goes, until it reaches a node exactly at allocationLevel. The caller
// must have already verified (via heap[0] <= allocationLevel) that enough
// space exists; if that invariant doesn't hold this is a contract
// violation, not a normal NOMEM, since the NOMEM pre-check in PageAlloc is
// supposed to make that impossible.
func (a *Allocator) acquireEmptySlot(allocationLevel uint8) uint64 {
	if allocationLevel > a.maxLevel {
		contractViolation("allocation level %d exceeds max level %d", allocationLevel, a.maxLevel)
	}

	index := uint64(0)
	level := uint8(0)
	for {
		if allocationLevel < a.heap[index] {
			contractViolation("acquireEmptySlot called without first ensuring space exists at index %d", index)
		}

		if a.heap[index] == level {
			if a.heap[index] == allocationLevel {
				return index
			}
			// split: the smallest free level moves one level deeper
			a.heap[index] = level + 1
			a.heap[heapLeft(index)] = level + 1
			a.heap[heapRight(index)] = level + 1
			// the split node's byte changed, so its ancestors must be
			// recomputed too
			a.propagate(index)
		}

		leftIdx, rightIdx := heapLeft(index), heapRight(index)
		leftLevel, rightLevel := a.heap[leftIdx], a.heap[rightIdx]

		// Tightest-fit descent: prefer the child with the numerically
		// larger (smaller-block) free level, as long as it still fits the
		// request, reserving the other, larger-blocked child for a future
		// larger allocation. Ties (left == right) favor the right child —
		// pinned per spec.md §9's Open Question and exercised by
		// TestAllocTieBreakPicksRight.
		if rightLevel >= leftLevel {
			if allocationLevel >= rightLevel {
				index = rightIdx
			} else {
				index = leftIdx
			}
		} else {
			if allocationLevel >= leftLevel {
				index = leftIdx
			} else {
				index = rightIdx
			}
		}
		level++
	}
}

func (a *Allocator) markAllocated(blockIndex uint64) {
	a.heap[blockIndex] = cellAllocated
	a.propagate(blockIndex)
}

// PageAlloc allocates a contiguous run of at least nPages pages and returns
// the page id of its first page. nPages == 0 is rounded up to 1 (spec.md
// §4.2 step 1, §9 Open Question: this module picks the "round up" revision
// over the older "return ErrInvalid" revision; pinned by
// TestAllocZeroRoundsUpToOne).
func (a *Allocator) PageAlloc(nPages uint64) (uint64, error) {
	if a.state != ready {
		contractViolation("PageAlloc called outside READY state")
	}

	if nPages == 0 {
		nPages = 1
	}
	if nPages > pow2(a.maxLevel) || pow2(ceilLog2(nPages)) > a.nPages {
		glog.V(1).Infof("buddy: PageAlloc(%d): rounded block exceeds capacity %d", nPages, a.nPages)
		return 0, ErrInvalid
	}

	allocationLevel := a.maxLevel - ceilLog2(nPages)
	if a.heap[0] > allocationLevel {
		glog.V(1).Infof("buddy: PageAlloc(%d): out of memory at level %d", nPages, allocationLevel)
		return 0, ErrNoMem
	}

	index := a.acquireEmptySlot(allocationLevel)
	a.markAllocated(index)

	if a.opts.VerifyOnMutate {
		a.MustVerify()
	}

	pageID := firstPageOfNode(index, a.maxLevel)
	glog.V(2).Infof("buddy: PageAlloc(%d) -> page %d (level %d)", nPages, pageID, allocationLevel)
	return pageID, nil
}
