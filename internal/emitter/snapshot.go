package emitter

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/san-kum/poolsim/internal/particle"
	"github.com/san-kum/poolsim/internal/pool"
)

type Point struct {
	Handle     string  `json:"handle"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	FramesLeft int     `json:"frames_left"`
}

type SnapshotView struct {
	Capacity  int     `json:"capacity"`
	Live      int     `json:"live"`
	Free      int     `json:"free"`
	Acquired  uint64  `json:"acquired"`
	Released  uint64  `json:"released"`
	Expired   uint64  `json:"expired"`
	Exhausted uint64  `json:"exhausted"`
	Particles []Point `json:"particles"`
}

// Snapshot copies the live particles in slot order.
func (e *Emitter) Snapshot() []Point {
	var points []Point
	e.pool.ForEachLive(func(h pool.Handle, p particle.Particle) bool {
		points = append(points, Point{Handle: h.String(), X: p.X(), Y: p.Y(), FramesLeft: p.FramesLeft()})
		return true
	})
	return points
}

// SnapshotHandler serves the pool counters and live particles as JSON. It is
// safe to call while another goroutine runs the emitter.
func (e *Emitter) SnapshotHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var view SnapshotView
		e.pool.Do(func(p *particle.Pool) {
			st := p.Stats()
			view = SnapshotView{
				Capacity:  st.Capacity,
				Live:      st.Live,
				Free:      st.Free,
				Acquired:  st.Acquired,
				Released:  st.Released,
				Expired:   st.Expired,
				Exhausted: st.Exhausted,
				Particles: make([]Point, 0, st.Live),
			}
			p.ForEachLive(func(h pool.Handle, pt particle.Particle) bool {
				view.Particles = append(view.Particles, Point{Handle: h.String(), X: pt.X(), Y: pt.Y(), FramesLeft: pt.FramesLeft()})
				return true
			})
		})

		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(view); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
