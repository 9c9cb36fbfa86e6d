package buddy

import (
	"fmt"

	"buddyalloc/bitfield"
)

// Describe renders a human-readable summary of heap node i, packing its
// state through bitfield.NodeSnapshot the way the teacher's bitfield
// package packs PageFlags — round-tripped through Pack/Unpack so the
// rendered fields are exactly what a wire-level consumer would decode, not
// just a direct field read. This is a standalone diagnostic helper, not
// part of Verify's error path (verifyNode builds its own messages directly
// off the raw heap bytes); callers and tests use it to inspect a node's
// state without reaching into unexported allocator internals.
func (a *Allocator) Describe(i uint64) (string, error) {
	if i >= uint64(len(a.heap)) {
		return "", fmt.Errorf("buddy: Describe: node %d out of range (heap len %d)", i, len(a.heap))
	}

	v := a.heap[i]
	snap := NodeSnapshot{
		Allocated: v == cellAllocated,
		Unusable:  v == cellUnusable,
		Filled:    v == cellFilled,
		Level:     v,
	}

	packed, err := bitfield.PackNodeSnapshot(snap)
	if err != nil {
		return "", fmt.Errorf("buddy: Describe: %w", err)
	}
	decoded, err := bitfield.UnpackNodeSnapshot(packed)
	if err != nil {
		return "", fmt.Errorf("buddy: Describe: %w", err)
	}

	return fmt.Sprintf("node %d: level=%d allocated=%t unusable=%t filled=%t %s (packed=0x%04x)",
		i, decoded.Level, decoded.Allocated, decoded.Unusable, decoded.Filled, cellName(v), packed), nil
}

// NodeSnapshot mirrors bitfield.NodeSnapshot's shape so callers in this
// package don't need to import bitfield directly just to build one.
type NodeSnapshot = bitfield.NodeSnapshot
