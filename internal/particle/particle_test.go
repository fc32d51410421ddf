package particle

import (
	"errors"
	"math"
	"testing"
)

func TestParticle_Init(t *testing.T) {
	tests := []struct {
		name     string
		lifetime int
		wantErr  bool
	}{
		{"positive", 5, false},
		{"one frame", 1, false},
		{"zero", 0, true},
		{"negative", -3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Particle
			err := p.Init(Spawn{X: 1, Y: 2, Lifetime: tt.lifetime})
			if tt.wantErr != (err != nil) {
				t.Fatalf("Init() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrLifetime) {
				t.Errorf("error = %v, want ErrLifetime", err)
			}
		})
	}
}

func TestParticle_Advance(t *testing.T) {
	var p Particle
	if err := p.Init(Spawn{X: 0, Y: 1, VX: 2, VY: 3, Lifetime: 3}); err != nil {
		t.Fatal(err)
	}

	wantAlive := []bool{true, true, false}
	for i, want := range wantAlive {
		if got := p.Advance(); got != want {
			t.Errorf("tick %d: Advance() = %v, want %v", i+1, got, want)
		}
	}
	if p.X() != 6 || p.Y() != 10 {
		t.Errorf("position = (%v, %v), want (6, 10)", p.X(), p.Y())
	}
	if p.FramesLeft() != 0 {
		t.Errorf("FramesLeft() = %d, want 0", p.FramesLeft())
	}
}

func TestParticle_Gravity(t *testing.T) {
	var p Particle
	if err := p.Init(Spawn{VY: 1, Gravity: -0.5, Lifetime: 10}); err != nil {
		t.Fatal(err)
	}
	p.Advance()
	p.Advance()
	if math.Abs(p.Y()-1.5) > 1e-12 {
		t.Errorf("Y() = %v, want 1.5", p.Y())
	}
	if math.Abs(p.VY()-0) > 1e-12 {
		t.Errorf("VY() = %v, want 0", p.VY())
	}
}

// Three particles with lifetimes 5, 10 and 15 over 20 frames, as in the
// classic particle pool walkthrough.
func TestPool_ParticleLifetimes(t *testing.T) {
	p, err := NewPool(100)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []Spawn{
		{X: 0, Y: 1, VX: 2, VY: 3, Lifetime: 5},
		{X: 20, Y: 31, VX: 42, VY: 53, Lifetime: 10},
		{X: 120, Y: 131, VX: 142, VY: 153, Lifetime: 15},
	} {
		if _, err := p.Acquire(s); err != nil {
			t.Fatal(err)
		}
	}

	live := make([]int, 0, 20)
	for frame := 0; frame < 20; frame++ {
		p.Sweep()
		live = append(live, p.Len())
	}

	for frame, n := range live {
		want := 0
		switch {
		case frame < 4:
			want = 3
		case frame < 9:
			want = 2
		case frame < 14:
			want = 1
		}
		if n != want {
			t.Errorf("frame %d: live = %d, want %d", frame, n, want)
		}
	}
	if p.Free() != 100 {
		t.Errorf("Free() = %d, want 100", p.Free())
	}
}

func TestSharedPool(t *testing.T) {
	sp, err := NewSharedPool(2)
	if err != nil {
		t.Fatal(err)
	}
	h, err := sp.Acquire(Spawn{X: 3, Lifetime: 2})
	if err != nil {
		t.Fatal(err)
	}
	got, ok := sp.Get(h)
	if !ok || got.X() != 3 {
		t.Errorf("Get = %+v, %v", got, ok)
	}
	if _, err := NewSharedPool(0); err == nil {
		t.Error("expected error for zero capacity")
	}
}
