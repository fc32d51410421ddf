package pool

import (
	"fmt"
	"testing"
)

func BenchmarkSweep(b *testing.B) {
	for _, capacity := range []int{1_000, 10_000} {
		for _, fraction := range []float64{0, 0.5, 1} {
			b.Run(fmt.Sprintf("cap=%d/live=%.0f%%", capacity, fraction*100), func(b *testing.B) {
				p := newTestPool(b, capacity)
				for i := 0; i < int(float64(capacity)*fraction); i++ {
					if _, err := p.Acquire(tickerArgs{id: i, lifetime: 1 << 30}); err != nil {
						b.Fatal(err)
					}
				}
				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					p.Sweep()
				}
			})
		}
	}
}

func BenchmarkAcquireRelease(b *testing.B) {
	p := newTestPool(b, 1024)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h, err := p.Acquire(tickerArgs{id: i, lifetime: 8})
		if err != nil {
			b.Fatal(err)
		}
		if err := p.Release(h); err != nil {
			b.Fatal(err)
		}
	}
}
