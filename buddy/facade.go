package buddy

// MemAlloc is the byte-address facade over PageAlloc (spec.md §4.5): it
// rounds nBytes up to a whole number of pages and returns a byte address
// rather than a page id. Requires pageSize to have been set (non-zero) at
// New time.
func (a *Allocator) MemAlloc(nBytes uint64) (uint64, error) {
	if a.pageSize == 0 {
		contractViolation("MemAlloc called on an allocator constructed without a page size")
	}

	want := nBytes
	if want < a.pageSize {
		want = a.pageSize
	}
	order := ceilLog2(want) - ceilLog2(a.pageSize)
	nPages := pow2(order)

	pageID, err := a.PageAlloc(nPages)
	if err != nil {
		return 0, err
	}
	return a.offset + pageID*a.pageSize, nil
}

// MemFree is the byte-address facade over PageFree.
func (a *Allocator) MemFree(ptr uint64) error {
	if a.pageSize == 0 {
		contractViolation("MemFree called on an allocator constructed without a page size")
	}
	if ptr < a.offset {
		return ErrNoSuchAllocation
	}
	pageID := (ptr - a.offset) / a.pageSize
	return a.PageFree(pageID)
}
