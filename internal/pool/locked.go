package pool

import "sync"

// Locked serializes every operation on a Pool behind one mutex. The free-list
// head and slot occupancy change together, so they share a single lock.
// Visitors passed to ForEachLive and Do run with the lock held and must not
// call back into the Locked.
type Locked[T any, A any, PT interface {
	*T
	Object[A]
}] struct {
	mu sync.Mutex
	p  *Pool[T, A, PT]
}

func NewLocked[T any, A any, PT interface {
	*T
	Object[A]
}](p *Pool[T, A, PT]) *Locked[T, A, PT] {
	return &Locked[T, A, PT]{p: p}
}

// Do runs fn with exclusive access to the underlying pool, for compound
// operations that must not interleave with other callers.
func (l *Locked[T, A, PT]) Do(fn func(p *Pool[T, A, PT])) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.p)
}

func (l *Locked[T, A, PT]) Acquire(args A) (Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Acquire(args)
}

func (l *Locked[T, A, PT]) Release(h Handle) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Release(h)
}

func (l *Locked[T, A, PT]) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.p.Sweep()
}

func (l *Locked[T, A, PT]) ForEachLive(fn func(h Handle, obj T) bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.p.ForEachLive(fn)
}

func (l *Locked[T, A, PT]) Get(h Handle) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Get(h)
}

func (l *Locked[T, A, PT]) Valid(h Handle) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Valid(h)
}

func (l *Locked[T, A, PT]) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Stats()
}

func (l *Locked[T, A, PT]) Check() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Check()
}

func (l *Locked[T, A, PT]) Cap() int { return l.p.Cap() }
