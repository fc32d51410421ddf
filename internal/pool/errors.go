package pool

import (
	"errors"
	"fmt"
)

// Pool errors. None of them are logged by the pool; callers decide policy.
var (
	// ErrExhausted indicates every slot is live. Recoverable: drop or queue the request.
	ErrExhausted = errors.New("pool: exhausted (no free slots)")

	// ErrInvalidHandle indicates a stale, released or out-of-range handle.
	ErrInvalidHandle = errors.New("pool: invalid handle")

	// ErrInvalidCapacity indicates a capacity outside (0, MaxCapacity].
	ErrInvalidCapacity = errors.New("pool: invalid capacity")

	// ErrReentrant indicates Acquire or Release was called from inside a traversal.
	ErrReentrant = errors.New("pool: mutation during traversal")

	// ErrCorrupt indicates the free list no longer matches slot occupancy.
	ErrCorrupt = errors.New("pool: free list corrupt")
)

// HandleError reports why a handle was rejected.
type HandleError struct {
	Op     string
	Handle Handle
	Reason string
}

func (e *HandleError) Error() string {
	return fmt.Sprintf("pool: %s %s: %s", e.Op, e.Handle, e.Reason)
}

func (e *HandleError) Unwrap() error {
	return ErrInvalidHandle
}
