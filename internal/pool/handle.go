package pool

import "fmt"

// Handle encodes a 32-bit slot index in the lower bits and the slot generation
// in the upper bits. Generations start at 1, so the zero Handle never resolves.
type Handle uint64

func newHandle(index int32, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(uint32(index)))
}

func (h Handle) Index() int         { return int(uint32(h)) }
func (h Handle) Generation() uint32 { return uint32(h >> 32) }
func (h Handle) IsZero() bool       { return h == 0 }

func (h Handle) String() string {
	return fmt.Sprintf("#%d/g%d", h.Index(), h.Generation())
}
