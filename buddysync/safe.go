// Package buddysync provides an external mutual-exclusion wrapper around
// buddy.Allocator. buddy.Allocator is single-threaded by contract (spec.md
// §5): no method locks or blocks internally, and sharing one instance
// across goroutines is explicitly the caller's responsibility, done
// outside the core. This package is that external wrapper, in the style
// of alewtschuk-balloc's BuddyPool, which guards every public entry point
// with a sync.Mutex field on the pool struct itself.
package buddysync

import (
	"sync"

	"buddyalloc/buddy"
)

// Safe serializes access to a *buddy.Allocator with a single mutex. It adds
// no allocation semantics of its own: every method is a locked pass-through
// to the identically-named buddy.Allocator method.
type Safe struct {
	mu sync.Mutex
	a  *buddy.Allocator
}

// New wraps an existing allocator for concurrent use. The caller must not
// keep using the unwrapped allocator directly afterward.
func New(a *buddy.Allocator) *Safe {
	return &Safe{a: a}
}

func (s *Safe) PageAlloc(nPages uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.PageAlloc(nPages)
}

func (s *Safe) PageFree(pageID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.PageFree(pageID)
}

func (s *Safe) MemAlloc(nBytes uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.MemAlloc(nBytes)
}

func (s *Safe) MemFree(ptr uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.MemFree(ptr)
}

func (s *Safe) Verify() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Verify()
}
