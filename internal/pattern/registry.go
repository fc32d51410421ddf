package pattern

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/san-kum/poolsim/internal/particle"
)

// Params shape every pattern. Spread is a cone angle in radians for
// fountain, and a width in world units for rain.
type Params struct {
	OriginX     float64
	OriginY     float64
	Speed       float64
	Spread      float64
	Gravity     float64
	LifetimeMin int
	LifetimeMax int
}

type Func func(rng *rand.Rand, p Params) particle.Spawn

type Registry struct {
	patterns map[string]Func
}

func NewRegistry() *Registry {
	r := &Registry{patterns: make(map[string]Func)}

	r.patterns["fountain"] = fountain
	r.patterns["ring"] = ring
	r.patterns["rain"] = rain
	r.patterns["point"] = point

	return r
}

func (r *Registry) Register(name string, fn Func) {
	r.patterns[name] = fn
}

func (r *Registry) Get(name string) (Func, error) {
	fn, ok := r.patterns[name]
	if !ok {
		return nil, fmt.Errorf("unknown pattern: %s", name)
	}
	return fn, nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.patterns))
	for name := range r.patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lifetime(rng *rand.Rand, p Params) int {
	if p.LifetimeMax <= p.LifetimeMin {
		return p.LifetimeMin
	}
	return p.LifetimeMin + rng.Intn(p.LifetimeMax-p.LifetimeMin+1)
}

func fountain(rng *rand.Rand, p Params) particle.Spawn {
	angle := math.Pi/2 + (rng.Float64()-0.5)*p.Spread
	speed := p.Speed * (0.75 + 0.5*rng.Float64())
	return particle.Spawn{
		X: p.OriginX, Y: p.OriginY,
		VX: speed * math.Cos(angle), VY: speed * math.Sin(angle),
		Gravity:  p.Gravity,
		Lifetime: lifetime(rng, p),
	}
}

func ring(rng *rand.Rand, p Params) particle.Spawn {
	angle := rng.Float64() * 2 * math.Pi
	return particle.Spawn{
		X: p.OriginX, Y: p.OriginY,
		VX: p.Speed * math.Cos(angle), VY: p.Speed * math.Sin(angle),
		Gravity:  p.Gravity,
		Lifetime: lifetime(rng, p),
	}
}

func rain(rng *rand.Rand, p Params) particle.Spawn {
	return particle.Spawn{
		X: p.OriginX + (rng.Float64()-0.5)*p.Spread, Y: p.OriginY,
		VY:       -p.Speed,
		Gravity:  p.Gravity,
		Lifetime: lifetime(rng, p),
	}
}

func point(rng *rand.Rand, p Params) particle.Spawn {
	return particle.Spawn{
		X: p.OriginX, Y: p.OriginY,
		Lifetime: lifetime(rng, p),
	}
}
