package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/poolsim/internal/config"
	"github.com/san-kum/poolsim/internal/logging"
	"github.com/san-kum/poolsim/internal/particle"
	"github.com/san-kum/poolsim/internal/voice"
)

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPATTERN\tCAPACITY\tRATE\tLIFETIME\tOVERFLOW\tTICKS")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%d-%d\t%s\t%d\n",
			name,
			cfg.Emitter.Pattern,
			cfg.Pool.Capacity,
			cfg.Emitter.Rate,
			cfg.Emitter.LifetimeMin, cfg.Emitter.LifetimeMax,
			cfg.Emitter.Overflow,
			cfg.Run.Ticks,
		)
	}
	return w.Flush()
}

// a C major scale, up and back down
var scale = []float64{261.63, 293.66, 329.63, 349.23, 392.00, 440.00, 493.88, 523.25, 493.88, 440.00, 392.00, 349.23, 329.63, 293.66, 261.63}

func runVoices(cmd *cobra.Command, args []string) error {
	if noteEvery <= 0 {
		return fmt.Errorf("every must be positive, got %d", noteEvery)
	}

	lc := config.DefaultConfig().Logging
	if logLevel != "" {
		lc.Level = logLevel
	}
	log, err := logging.New(lc)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	synth, err := voice.NewSynth(polyphony, sampleRate, log.Named("synth"))
	if err != nil {
		return err
	}

	// each note rings for six note slots, so more than polyphony notes overlap
	frames := 6 * noteEvery
	buf := make([]float64, 0, noteEvery)
	active := make([]float64, 0, len(scale))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NOTE\tFREQ\tRESULT\tACTIVE\tPEAK")
	for i, freq := range scale {
		result := "played"
		if _, err := synth.NoteOn(voice.Note{Freq: freq, Amp: 0.3, Decay: 0.9995, Frames: frames}); err != nil {
			result = "dropped"
		}

		buf = synth.Render(buf[:0], noteEvery)
		peak := 0.0
		for _, v := range buf {
			peak = math.Max(peak, math.Abs(v))
		}
		active = append(active, float64(synth.Active()))
		fmt.Fprintf(w, "%d\t%.2f\t%s\t%d/%d\t%.3f\n", i+1, freq, result, synth.Active(), synth.Polyphony(), peak)
	}
	w.Flush()

	tail := 0
	for synth.Active() > 0 {
		synth.Tick()
		tail++
	}

	st := synth.Stats()
	log.Info("synth finished",
		zap.Int("notes", len(scale)),
		zap.Int("dropped", synth.Dropped()),
		zap.Uint64("expired", st.Expired),
		zap.Int("tail_samples", tail))

	fmt.Printf("\n%d of %d notes dropped with %d voices\n\n", synth.Dropped(), len(scale), synth.Polyphony())
	fmt.Println(asciigraph.Plot(active,
		asciigraph.Height(6),
		asciigraph.Width(60),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(float64(synth.Polyphony())),
		asciigraph.Caption("active voices after each note"),
	))
	return nil
}

func benchSweep(cmd *cobra.Command, args []string) error {
	if sweeps <= 0 {
		return fmt.Errorf("sweeps must be positive, got %d", sweeps)
	}

	capacities := []int{1_000, 10_000, 100_000}
	fractions := []float64{0, 0.5, 1}

	fmt.Printf("benchmarking sweep, %d sweeps per row\n\n", sweeps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CAPACITY\tLIVE\tTIME/SWEEP\tNS/SLOT")

	for _, c := range capacities {
		for _, f := range fractions {
			p, err := particle.NewPool(c)
			if err != nil {
				return err
			}
			live := int(f * float64(c))
			for i := 0; i < live; i++ {
				if _, err := p.Acquire(particle.Spawn{VX: 1, Gravity: -0.01, Lifetime: math.MaxInt32}); err != nil {
					return err
				}
			}

			start := time.Now()
			for i := 0; i < sweeps; i++ {
				p.Sweep()
			}
			per := time.Since(start) / time.Duration(sweeps)

			fmt.Fprintf(w, "%d\t%d\t%v\t%.2f\n", c, p.Len(), per, float64(per.Nanoseconds())/float64(c))
		}
	}

	return w.Flush()
}
