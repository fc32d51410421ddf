package pool_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/poolsim/internal/pool"
)

type spark struct {
	heat  float64
	fade  float64
	left  int
	steps int
}

type sparkArgs struct {
	heat  float64
	fade  float64
	ticks int
}

func (s *spark) Init(a sparkArgs) error {
	if a.ticks <= 0 {
		return errors.New("spark: ticks must be positive")
	}
	*s = spark{heat: a.heat, fade: a.fade, left: a.ticks}
	return nil
}

func (s *spark) Advance() bool {
	s.heat *= s.fade
	s.steps++
	s.left--
	return s.left > 0
}

type sparkPool = pool.Pool[spark, sparkArgs, *spark]

var _ = Describe("Pool", func() {
	var p *sparkPool

	acquire := func(ticks int) pool.Handle {
		h, err := p.Acquire(sparkArgs{heat: 1, fade: 0.5, ticks: ticks})
		ExpectWithOffset(1, err).NotTo(HaveOccurred())
		return h
	}

	BeforeEach(func() {
		var err error
		p, err = pool.New[spark, sparkArgs](3)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(p.Check()).To(Succeed())
		Expect(p.Len() + p.Free()).To(Equal(p.Cap()))
	})

	Describe("construction", func() {
		It("rejects non-positive capacity", func() {
			_, err := pool.New[spark, sparkArgs](0)
			Expect(err).To(MatchError(pool.ErrInvalidCapacity))
		})

		It("starts with every slot free", func() {
			Expect(p.Len()).To(Equal(0))
			Expect(p.Free()).To(Equal(3))
		})
	})

	Describe("acquire", func() {
		It("never hands out a live slot twice", func() {
			seen := map[int]bool{}
			for i := 0; i < 3; i++ {
				h := acquire(5)
				Expect(seen).NotTo(HaveKey(h.Index()))
				seen[h.Index()] = true
			}
		})

		It("reports exhaustion without corrupting the free list", func() {
			acquire(5)
			h := acquire(5)
			acquire(5)

			_, err := p.Acquire(sparkArgs{ticks: 1})
			Expect(err).To(MatchError(pool.ErrExhausted))

			Expect(p.Release(h)).To(Succeed())
			again := acquire(5)
			Expect(again.Index()).To(Equal(h.Index()))
		})
	})

	Describe("release", func() {
		It("rejects a handle whose slot was recycled", func() {
			old := acquire(5)
			Expect(p.Release(old)).To(Succeed())
			cur := acquire(5)

			err := p.Release(old)
			Expect(errors.Is(err, pool.ErrInvalidHandle)).To(BeTrue())
			Expect(p.Valid(cur)).To(BeTrue())
		})

		It("rejects double release", func() {
			h := acquire(5)
			Expect(p.Release(h)).To(Succeed())
			Expect(p.Release(h)).To(MatchError(pool.ErrInvalidHandle))
			Expect(p.Free()).To(Equal(3))
		})
	})

	Describe("sweep", func() {
		It("advances live objects and reclaims them at zero", func() {
			h := acquire(2)

			p.Sweep()
			s, ok := p.Get(h)
			Expect(ok).To(BeTrue())
			Expect(s.heat).To(BeNumerically("~", 0.5))
			Expect(s.left).To(Equal(1))

			p.Sweep()
			Expect(p.Valid(h)).To(BeFalse())
			Expect(p.Stats().Expired).To(BeEquivalentTo(1))
		})

		It("recycles expiries and releases through the same LIFO push", func() {
			short := acquire(1)
			long := acquire(9)
			Expect(p.Release(long)).To(Succeed())
			p.Sweep()

			Expect(acquire(3).Index()).To(Equal(short.Index()))
			Expect(acquire(3).Index()).To(Equal(long.Index()))
		})

		It("costs one visit per slot regardless of occupancy", func() {
			p.Sweep()
			Expect(p.Stats().Visited).To(BeEquivalentTo(3))
			acquire(4)
			p.Sweep()
			Expect(p.Stats().Visited).To(BeEquivalentTo(6))
		})
	})

	Describe("traversal", func() {
		It("reports live slots without changing occupancy", func() {
			acquire(4)
			acquire(4)
			var heats []float64
			p.ForEachLive(func(_ pool.Handle, s spark) bool {
				heats = append(heats, s.heat)
				return true
			})
			Expect(heats).To(Equal([]float64{1, 1}))
			Expect(p.Len()).To(Equal(2))
		})
	})
})
