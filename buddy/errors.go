package buddy

import (
	"errors"
	"fmt"

	"github.com/golang/glog"
)

// User errors: recoverable, returned as values. No allocator state changes
// before one of these is returned. Named and checked the way
// vsrinivas-fuchsia's thinfs/lib/buddy package does it (ErrInvalid,
// ErrNoMem, package-level errors.New sentinels checked with errors.Is).
var (
	// ErrInvalid means the request is nonsensical given the allocator's
	// capacity (e.g. n_pages greater than the tree can ever hold).
	ErrInvalid = errors.New("buddy: invalid request")

	// ErrNoMem means no contiguous free block of sufficient level exists,
	// even though the request was otherwise well-formed.
	ErrNoMem = errors.New("buddy: out of memory")

	// ErrNoSuchAllocation means PageFree was called on a page that isn't
	// the start of a live allocation (including a double free).
	ErrNoSuchAllocation = errors.New("buddy: no such allocation")
)

// contractViolation reports an internal precondition breach or a call made
// in the wrong lifecycle state: a bug in the caller or in the allocator's
// own bookkeeping, never a normal runtime condition. The C reference
// aborts the process via FATAL/FATAL_ARGS (original_source/src/debug.c);
// the idiomatic Go equivalent is a panic, since there is no way to recover
// a trustworthy return value once the metadata may be corrupt.
func contractViolation(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	glog.Errorf("buddy: contract violation: %s", msg)
	panic("buddy: contract violation: " + msg)
}
