// Package particle defines the canonical pooled object: a point that moves
// by its velocity every tick and dies after a fixed number of frames.
package particle

import (
	"errors"
	"fmt"

	"github.com/san-kum/poolsim/internal/pool"
)

var ErrLifetime = errors.New("particle: lifetime must be positive")

// Spawn holds the initial state of a particle. Gravity is added to VY after
// each move.
type Spawn struct {
	X, Y     float64
	VX, VY   float64
	Gravity  float64
	Lifetime int
}

type Particle struct {
	x, y       float64
	vx, vy     float64
	gravity    float64
	framesLeft int
}

type (
	Pool       = pool.Pool[Particle, Spawn, *Particle]
	SharedPool = pool.Locked[Particle, Spawn, *Particle]
)

func NewPool(capacity int) (*Pool, error) {
	return pool.New[Particle, Spawn](capacity)
}

func NewSharedPool(capacity int) (*SharedPool, error) {
	p, err := NewPool(capacity)
	if err != nil {
		return nil, err
	}
	return pool.NewLocked(p), nil
}

func (p *Particle) Init(s Spawn) error {
	if s.Lifetime <= 0 {
		return fmt.Errorf("%w: got %d", ErrLifetime, s.Lifetime)
	}
	*p = Particle{
		x:          s.X,
		y:          s.Y,
		vx:         s.VX,
		vy:         s.VY,
		gravity:    s.Gravity,
		framesLeft: s.Lifetime,
	}
	return nil
}

func (p *Particle) Advance() bool {
	p.x += p.vx
	p.y += p.vy
	p.vy += p.gravity
	p.framesLeft--
	return p.framesLeft > 0
}

func (p Particle) X() float64      { return p.x }
func (p Particle) Y() float64      { return p.y }
func (p Particle) VX() float64     { return p.vx }
func (p Particle) VY() float64     { return p.vy }
func (p Particle) FramesLeft() int { return p.framesLeft }
