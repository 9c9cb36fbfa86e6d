package buddy

import "github.com/golang/glog"

// findAllocatedBlock descends from the root, following the half of the
// current node's page range that contains pageID, stopping at the first
// ALLOCATED node; it reports success only if pageID is that block's first
// page. If descent instead reaches a wholly-free or UNUSABLE node before
// finding one, pageID does not start a live allocation.
func (a *Allocator) findAllocatedBlock(pageID uint64) (uint64, bool) {
	index := uint64(0)
	for level := uint8(0); level <= a.maxLevel; level++ {
		switch a.heap[index] {
		case cellAllocated:
			return index, firstPageOfNode(index, a.maxLevel) == pageID
		case cellUnusable:
			return 0, false
		}
		if a.heap[index] == level {
			// wholly free: nothing allocated here
			return 0, false
		}

		rightIdx := heapRight(index)
		if pageID >= firstPageOfNode(rightIdx, a.maxLevel) {
			index = rightIdx
		} else {
			index = heapLeft(index)
		}
	}
	return 0, false
}

// markFree sets blockIndex wholly free and coalesces with its buddy as
// long as the buddy is also wholly free at exactly the same level, then
// propagates the result to the root (spec.md §4.3 steps 2-4).
func (a *Allocator) markFree(blockIndex uint64) {
	a.heap[blockIndex] = heapLevel(blockIndex)

	for blockIndex != 0 {
		level := heapLevel(blockIndex)
		if a.heap[heapSibling(blockIndex)] != level {
			break
		}
		parent := heapParent(blockIndex)
		a.heap[parent] = heapLevel(parent)
		blockIndex = parent
	}

	a.propagate(blockIndex)
}

// PageFree returns the allocation starting at pageID to the free pool.
// Freeing a page that isn't the start of a live allocation — including a
// page already freed — returns ErrNoSuchAllocation.
func (a *Allocator) PageFree(pageID uint64) error {
	if a.state != ready {
		contractViolation("PageFree called outside READY state")
	}
	if pageID >= a.nPages {
		return ErrNoSuchAllocation
	}

	index, ok := a.findAllocatedBlock(pageID)
	if !ok {
		glog.V(1).Infof("buddy: PageFree(%d): no such allocation", pageID)
		return ErrNoSuchAllocation
	}

	a.markFree(index)

	if a.opts.VerifyOnMutate {
		a.MustVerify()
	}

	glog.V(2).Infof("buddy: PageFree(%d) ok", pageID)
	return nil
}
