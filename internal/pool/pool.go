// Package pool implements a fixed-capacity object pool. All storage is
// allocated by New; Acquire, Release and Sweep never allocate afterwards.
//
// Free slots form a LIFO list threaded through the slots themselves. A slot's
// live state and its free-list link are separate fields, and the pool's
// occupancy flag decides which of the two is meaningful.
//
// A Pool is not safe for concurrent use. Wrap it in a Locked when acquisition
// and sweeping happen on different goroutines.
package pool

import (
	"fmt"
	"math"
)

// MaxCapacity keeps slot indices within the free link and Handle index range.
const MaxCapacity = math.MaxInt32

const none int32 = -1

// Object is the capability a pooled type provides. Init resets every field
// from args and must leave a strictly positive lifetime, or return an error.
// Advance performs one tick and reports whether the object is still alive;
// once it returns false the slot is reclaimed and Advance is not called again
// until the next Init.
type Object[A any] interface {
	Init(args A) error
	Advance() bool
}

type slot[T any] struct {
	obj  T
	next int32
	gen  uint32
	live bool
}

// Stats is a point-in-time view of pool occupancy plus lifetime counters.
type Stats struct {
	Capacity  int
	Live      int
	Free      int
	Acquired  uint64
	Released  uint64
	Expired   uint64
	Exhausted uint64
	Sweeps    uint64
	Visited   uint64
}

// Pool stores up to Cap() live values of T inline. PT is *T and carries the
// Object methods, so T values live in the slot array with no per-object
// allocation.
type Pool[T any, A any, PT interface {
	*T
	Object[A]
}] struct {
	slots   []slot[T]
	head    int32
	live    int
	walking bool
	stats   Stats
}

// New builds capacity free slots linked 0 -> 1 -> ... -> capacity-1.
func New[T any, A any, PT interface {
	*T
	Object[A]
}](capacity int) (*Pool[T, A, PT], error) {
	if capacity <= 0 || capacity > MaxCapacity {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	p := &Pool[T, A, PT]{slots: make([]slot[T], capacity)}
	for i := range p.slots {
		p.slots[i].next = int32(i + 1)
		p.slots[i].gen = 1
	}
	p.slots[capacity-1].next = none
	return p, nil
}

// Acquire pops the free-list head and initializes it from args. It returns
// ErrExhausted when no slot is free. If Init fails its error is returned and
// the free list is left untouched.
func (p *Pool[T, A, PT]) Acquire(args A) (Handle, error) {
	if p.walking {
		return 0, ErrReentrant
	}
	if p.head == none {
		p.stats.Exhausted++
		return 0, ErrExhausted
	}

	idx := p.head
	s := &p.slots[idx]
	if err := PT(&s.obj).Init(args); err != nil {
		return 0, err
	}

	p.head = s.next
	s.next = none
	s.live = true
	p.live++
	p.stats.Acquired++
	p.assert()
	return newHandle(idx, s.gen), nil
}

// Release returns a live slot to the pool ahead of its natural expiry. The
// handle must carry the slot's current generation.
func (p *Pool[T, A, PT]) Release(h Handle) error {
	if p.walking {
		return ErrReentrant
	}
	idx, reason := p.resolve(h)
	if reason != "" {
		return &HandleError{Op: "release", Handle: h, Reason: reason}
	}

	p.recycle(idx)
	p.stats.Released++
	p.assert()
	return nil
}

// Sweep advances every live slot once and reclaims the ones that expire.
// Every slot is visited exactly once in index order, whatever the live count.
// A slot is recycled only after its own Advance returns, so a slot freed in
// this pass is not touched again until a later Acquire. Sweep called from
// inside a traversal does nothing.
func (p *Pool[T, A, PT]) Sweep() {
	if p.walking {
		return
	}
	p.walking = true
	defer func() { p.walking = false }()

	for i := range p.slots {
		s := &p.slots[i]
		if !s.live {
			continue
		}
		if !PT(&s.obj).Advance() {
			p.recycle(int32(i))
			p.stats.Expired++
		}
	}

	p.stats.Sweeps++
	p.stats.Visited += uint64(len(p.slots))
	p.assert()
}

// ForEachLive calls fn with a copy of every live slot's state in index order
// until fn returns false. Acquire and Release return ErrReentrant while it runs.
func (p *Pool[T, A, PT]) ForEachLive(fn func(h Handle, obj T) bool) {
	prev := p.walking
	p.walking = true
	defer func() { p.walking = prev }()

	for i := range p.slots {
		s := &p.slots[i]
		if !s.live {
			continue
		}
		if !fn(newHandle(int32(i), s.gen), s.obj) {
			return
		}
	}
}

// Get returns a copy of the state behind h if h is still current.
func (p *Pool[T, A, PT]) Get(h Handle) (T, bool) {
	idx, reason := p.resolve(h)
	if reason != "" {
		var zero T
		return zero, false
	}
	return p.slots[idx].obj, true
}

// Valid reports whether h still refers to the live occupant it was issued for.
func (p *Pool[T, A, PT]) Valid(h Handle) bool {
	_, reason := p.resolve(h)
	return reason == ""
}

func (p *Pool[T, A, PT]) Len() int  { return p.live }
func (p *Pool[T, A, PT]) Free() int { return len(p.slots) - p.live }
func (p *Pool[T, A, PT]) Cap() int  { return len(p.slots) }

func (p *Pool[T, A, PT]) Stats() Stats {
	st := p.stats
	st.Capacity = len(p.slots)
	st.Live = p.live
	st.Free = len(p.slots) - p.live
	return st
}

func (p *Pool[T, A, PT]) resolve(h Handle) (int32, string) {
	i := h.Index()
	if i >= len(p.slots) {
		return none, "index out of range"
	}
	s := &p.slots[i]
	if !s.live {
		return none, "slot is free"
	}
	if s.gen != h.Generation() {
		return none, "stale generation"
	}
	return int32(i), ""
}

// recycle is the single free-list push shared by Release and Sweep.
func (p *Pool[T, A, PT]) recycle(idx int32) {
	s := &p.slots[idx]
	var zero T
	s.obj = zero
	s.live = false
	s.next = p.head
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	p.head = idx
	p.live--
}

// Check walks the free list and verifies it holds exactly the free slots,
// once each, and that the live count matches occupancy.
func (p *Pool[T, A, PT]) Check() error {
	n := len(p.slots)
	seen := make([]bool, n)
	free := 0
	for i := p.head; i != none; i = p.slots[i].next {
		if i < 0 || int(i) >= n {
			return fmt.Errorf("%w: link %d out of range", ErrCorrupt, i)
		}
		if seen[i] {
			return fmt.Errorf("%w: slot %d reached twice", ErrCorrupt, i)
		}
		if p.slots[i].live {
			return fmt.Errorf("%w: live slot %d on free list", ErrCorrupt, i)
		}
		seen[i] = true
		free++
	}

	live := 0
	for i := range p.slots {
		switch {
		case p.slots[i].live:
			live++
		case !seen[i]:
			return fmt.Errorf("%w: free slot %d unreachable", ErrCorrupt, i)
		}
	}
	if live != p.live || live+free != n {
		return fmt.Errorf("%w: live=%d (tracked %d) free=%d capacity=%d", ErrCorrupt, live, p.live, free, n)
	}
	return nil
}

func (p *Pool[T, A, PT]) assert() {
	if !debugChecks {
		return
	}
	if err := p.Check(); err != nil {
		panic(err)
	}
}
