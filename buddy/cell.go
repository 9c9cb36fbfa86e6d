package buddy

// cell is one heap-array slot. A value <= maxValidLevel is a real tree
// level ("the smallest free level in this subtree"); the three sentinels
// above it encode allocated/unusable/filled. Packing all four possibilities
// into one byte, rather than a tagged union, is a deliberate choice carried
// over from the C reference (spec.md §9, "Sentinel encoding vs. tagged
// variant"): min() on raw sentinel bytes already treats them as "infinitely
// full" because FILLED > ALLOCATED > UNUSABLE > maxValidLevel, so `ready`
// and `propagate` can use a plain numeric min instead of pattern matching.
type cell = uint8

const (
	// maxValidLevel is the highest byte value that represents a real tree
	// level. Implementations must keep max_level <= maxValidLevel, i.e.
	// never support more than 2^252 pages.
	maxValidLevel cell = 252

	// cellUnusable marks a block covering pages that don't exist or were
	// reserved before Ready. Set only during New/MarkUnusable on leaves and
	// by Ready on interior nodes whose children are both unusable, never
	// after.
	cellUnusable cell = 253

	// cellAllocated marks a block handed out by PageAlloc; must be
	// returned via PageFree.
	cellAllocated cell = 254

	// cellFilled marks a subtree with no free descendant at all.
	cellFilled cell = 255
)

func isSentinel(c cell) bool {
	return c > maxValidLevel
}

func cellName(c cell) string {
	switch c {
	case cellUnusable:
		return "UNUSABLE"
	case cellAllocated:
		return "ALLOCATED"
	case cellFilled:
		return "FILLED"
	default:
		return "LEVEL"
	}
}
