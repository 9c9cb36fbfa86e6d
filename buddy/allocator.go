package buddy

import (
	"github.com/golang/glog"
)

type lifecycle uint8

const (
	unready lifecycle = iota
	ready
)

// Options carries the small set of optional, named knobs New accepts.
// Modeled on the teacher's bitfield.Config: a plain options struct rather
// than functional options, since there is only one boolean and
// no builder-style chaining is needed.
type Options struct {
	// VerifyOnMutate, if true, runs Verify after Ready, PageAlloc, and
	// PageFree, panicking on the first violation. Off by default: Verify
	// is O(heap size) and spec.md positions it as a test/debug tool, not
	// a steady-state cost every mutation should pay.
	VerifyOnMutate bool
}

// Allocator is a binary buddy page allocator over n_pages logical pages.
// Its zero value is not usable; construct one with New.
type Allocator struct {
	nPages   uint64
	maxLevel uint8
	pageSize uint64
	offset   uint64
	state    lifecycle
	opts     Options
	heap     []cell
}

func maxLevelFromNPages(nPages uint64) uint8 {
	if nPages == 0 {
		return 0
	}
	lvl := ceilLog2(nPages)
	return lvl
}

// HeapLen returns the number of heap-array slots New will allocate for a
// given page count. Exposed so callers can pre-account memory for a pool
// of allocators, mirroring buddy_get_bytes from spec.md §4.1, even though
// Go's owned-slice Allocator (spec.md §9, "Flexible array member") has no
// caller-supplied buffer to size.
func HeapLen(nPages uint64) (int, error) {
	if nPages == 0 {
		return 0, ErrInvalid
	}
	maxLevel := maxLevelFromNPages(nPages)
	return int(heapSize(maxLevel)), nil
}

// New initializes a buddy allocator for nPages logical pages. pageSize and
// offset are only consulted by the byte-address facade (MemAlloc/MemFree);
// pass 0 for both if the facade won't be used. The returned Allocator is in
// the UNREADY state: call MarkUnusable as needed, then Ready, before any
// allocation or free.
func New(nPages uint64, pageSize, offset uint64, opts ...Options) (*Allocator, error) {
	if nPages == 0 {
		return nil, ErrInvalid
	}
	if pageSize != 0 && !isPowerOfTwo(pageSize) {
		return nil, ErrInvalid
	}

	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	maxLevel := maxLevelFromNPages(nPages)
	a := &Allocator{
		nPages:   nPages,
		maxLevel: maxLevel,
		pageSize: pageSize,
		offset:   offset,
		state:    unready,
		opts:     o,
		heap:     make([]cell, heapSize(maxLevel)),
	}

	firstLeaf := pow2(maxLevel) - 1
	for p := uint64(0); p < pow2(maxLevel); p++ {
		if p < nPages {
			a.heap[firstLeaf+p] = maxLevel
		} else {
			a.heap[firstLeaf+p] = cellUnusable
		}
	}

	glog.V(2).Infof("buddy: New(nPages=%d) maxLevel=%d heapLen=%d", nPages, maxLevel, len(a.heap))
	return a, nil
}

// MarkUnusable marks every page in [minPage, maxPage] (inclusive) as
// unusable. Only legal before Ready. Uses the corrected leaf-index formula
// (2^maxLevel - 1 + p), not the reference's (2^(maxLevel-1) + p) — see
// spec.md §9 and DESIGN.md for the Open Question this resolves.
func (a *Allocator) MarkUnusable(minPage, maxPage uint64) error {
	if a.state != unready {
		contractViolation("MarkUnusable called outside UNREADY state")
	}
	if maxPage >= a.nPages || minPage > maxPage {
		return ErrInvalid
	}
	firstLeaf := pow2(a.maxLevel) - 1
	for p := minPage; p <= maxPage; p++ {
		a.heap[firstLeaf+p] = cellUnusable
	}
	return nil
}

// Ready computes the interior of the tree from the leaves in one bottom-up
// pass and transitions the allocator to the READY state. Interior nodes
// are undefined before this call.
func (a *Allocator) Ready() error {
	if a.state != unready {
		contractViolation("Ready called outside UNREADY state")
	}

	// A single-node tree (max_level == 0) has no interior nodes: the root
	// is itself the only leaf, already initialized by New.
	if len(a.heap) > 1 {
		lastInterior := int64(heapParent(uint64(len(a.heap) - 1)))
		for i := lastInterior; i >= 0; i-- {
			idx := uint64(i)
			left, right := a.heap[heapLeft(idx)], a.heap[heapRight(idx)]
			level := heapLevel(idx)

			switch {
			case left == cellUnusable && right == cellUnusable:
				a.heap[idx] = cellUnusable
			case left == level+1 && right == level+1:
				// both children wholly free at the next level: collapse the
				// maximal free subtree to its highest representative
				// (invariant 5).
				a.heap[idx] = level
			default:
				m := minCell(left, right)
				if m > maxValidLevel {
					a.heap[idx] = cellFilled
				} else {
					a.heap[idx] = m
				}
			}
		}
	}

	a.state = ready
	if a.opts.VerifyOnMutate {
		a.MustVerify()
	}
	return nil
}
