// Package voice is a fixed-polyphony synth whose voices live in a pool.
// A note that arrives while every voice is sounding is dropped.
package voice

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/poolsim/internal/pool"
)

const (
	DefaultSampleRate = 8000.0
	silence           = 1e-4
)

var (
	ErrFrames = errors.New("voice: frames must be positive")
	ErrDecay  = errors.New("voice: decay must be in (0, 1]")
)

// Note triggers one voice. Decay multiplies the amplitude every sample.
type Note struct {
	Freq       float64
	Amp        float64
	Decay      float64
	Frames     int
	SampleRate float64
}

type Voice struct {
	phase, step float64
	amp, decay  float64
	framesLeft  int
}

type Pool = pool.Pool[Voice, Note, *Voice]

func (v *Voice) Init(n Note) error {
	if n.Frames <= 0 {
		return fmt.Errorf("%w: got %d", ErrFrames, n.Frames)
	}
	if math.IsNaN(n.Decay) || n.Decay <= 0 || n.Decay > 1 {
		return fmt.Errorf("%w: got %g", ErrDecay, n.Decay)
	}
	rate := n.SampleRate
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	*v = Voice{
		step:       2 * math.Pi * n.Freq / rate,
		amp:        n.Amp,
		decay:      n.Decay,
		framesLeft: n.Frames,
	}
	return nil
}

func (v *Voice) Advance() bool {
	v.phase = math.Mod(v.phase+v.step, 2*math.Pi)
	v.amp *= v.decay
	v.framesLeft--
	return v.framesLeft > 0 && math.Abs(v.amp) >= silence
}

func (v Voice) Sample() float64 { return v.amp * math.Sin(v.phase) }
func (v Voice) Amp() float64    { return v.amp }

type Synth struct {
	voices     *Pool
	sampleRate float64
	dropped    int
	log        *zap.Logger
}

func NewSynth(polyphony int, sampleRate float64, log *zap.Logger) (*Synth, error) {
	voices, err := pool.New[Voice, Note](polyphony)
	if err != nil {
		return nil, fmt.Errorf("voice pool: %w", err)
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Synth{voices: voices, sampleRate: sampleRate, log: log}, nil
}

// NoteOn starts a voice. pool.ErrExhausted means the note was dropped.
func (s *Synth) NoteOn(n Note) (pool.Handle, error) {
	if n.SampleRate <= 0 {
		n.SampleRate = s.sampleRate
	}
	h, err := s.voices.Acquire(n)
	if errors.Is(err, pool.ErrExhausted) {
		s.dropped++
		s.log.Debug("note dropped", zap.Float64("freq", n.Freq), zap.Int("active", s.voices.Len()))
	}
	return h, err
}

// NoteOff silences a voice before its envelope runs out. Handles of voices
// that already decayed are rejected with pool.ErrInvalidHandle.
func (s *Synth) NoteOff(h pool.Handle) error {
	return s.voices.Release(h)
}

// Tick mixes the current sample of every active voice, then advances them.
func (s *Synth) Tick() float64 {
	mix := 0.0
	s.voices.ForEachLive(func(_ pool.Handle, v Voice) bool {
		mix += v.Sample()
		return true
	})
	s.voices.Sweep()
	return mix
}

// Render runs n ticks into out, growing it only if needed.
func (s *Synth) Render(out []float64, n int) []float64 {
	for i := 0; i < n; i++ {
		out = append(out, s.Tick())
	}
	return out
}

func (s *Synth) Active() int       { return s.voices.Len() }
func (s *Synth) Polyphony() int    { return s.voices.Cap() }
func (s *Synth) Dropped() int      { return s.dropped }
func (s *Synth) Stats() pool.Stats { return s.voices.Stats() }
