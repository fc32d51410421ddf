package pattern

import (
	"math"
	"math/rand"
	"testing"
)

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"fountain", "ring", "rain", "point"} {
		if _, err := r.Get(name); err != nil {
			t.Errorf("Get(%q): %v", name, err)
		}
	}
	if _, err := r.Get("spiral"); err == nil {
		t.Error("expected error for unknown pattern")
	}
}

func TestRegistry_List(t *testing.T) {
	r := NewRegistry()
	got := r.List()
	want := []string{"fountain", "point", "rain", "ring"}
	if len(got) != len(want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPatterns_Lifetime(t *testing.T) {
	r := NewRegistry()
	rng := rand.New(rand.NewSource(1))
	p := Params{Speed: 1, Spread: 1, LifetimeMin: 5, LifetimeMax: 9}

	for _, name := range r.List() {
		fn, _ := r.Get(name)
		for i := 0; i < 200; i++ {
			s := fn(rng, p)
			if s.Lifetime < 5 || s.Lifetime > 9 {
				t.Fatalf("%s: lifetime %d outside [5, 9]", name, s.Lifetime)
			}
		}
	}
}

func TestPatterns_Shape(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	p := Params{OriginX: 10, OriginY: 2, Speed: 2, Spread: 0.5, LifetimeMin: 1}

	for i := 0; i < 100; i++ {
		if s := fountain(rng, p); s.VY <= 0 {
			t.Fatalf("fountain particle heading down: %+v", s)
		}
		if s := ring(rng, p); math.Abs(math.Hypot(s.VX, s.VY)-2) > 1e-9 {
			t.Fatalf("ring speed = %v, want 2", math.Hypot(s.VX, s.VY))
		}
		if s := rain(rng, p); s.VY != -2 || math.Abs(s.X-10) > 0.25 {
			t.Fatalf("rain particle out of band: %+v", s)
		}
		if s := point(rng, p); s.VX != 0 || s.VY != 0 || s.Lifetime != 1 {
			t.Fatalf("point particle moving: %+v", s)
		}
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register("still", point)
	if _, err := r.Get("still"); err != nil {
		t.Error(err)
	}
}
