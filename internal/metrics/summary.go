package metrics

import "github.com/san-kum/poolsim/internal/emitter"

// Saturation is the fraction of ticks that ended with no free slot.
type Saturation struct {
	name    string
	full    int
	samples int
}

func NewSaturation() *Saturation {
	return &Saturation{name: "saturation"}
}

func (s *Saturation) Name() string { return s.name }

func (s *Saturation) OnTick(ts emitter.TickStats) {
	s.samples++
	if ts.Free == 0 {
		s.full++
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.full) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.full = 0
	s.samples = 0
}

// Utilization is the mean live share of the pool across ticks.
type Utilization struct {
	name    string
	sum     float64
	samples int
}

func NewUtilization() *Utilization {
	return &Utilization{name: "utilization"}
}

func (u *Utilization) Name() string { return u.name }

func (u *Utilization) OnTick(ts emitter.TickStats) {
	if capacity := ts.Live + ts.Free; capacity > 0 {
		u.sum += float64(ts.Live) / float64(capacity)
	}
	u.samples++
}

func (u *Utilization) Value() float64 {
	if u.samples == 0 {
		return 0
	}
	return u.sum / float64(u.samples)
}

func (u *Utilization) Reset() {
	u.sum = 0
	u.samples = 0
}

// DropRate is dropped / (spawned + dropped) over the run.
type DropRate struct {
	name    string
	spawned int
	dropped int
}

func NewDropRate() *DropRate {
	return &DropRate{name: "drop_rate"}
}

func (d *DropRate) Name() string { return d.name }

func (d *DropRate) OnTick(ts emitter.TickStats) {
	d.spawned += ts.Spawned
	d.dropped += ts.Dropped
}

func (d *DropRate) Value() float64 {
	total := d.spawned + d.dropped
	if total == 0 {
		return 0
	}
	return float64(d.dropped) / float64(total)
}

func (d *DropRate) Reset() {
	d.spawned = 0
	d.dropped = 0
}
