package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/san-kum/poolsim/internal/emitter"
)

const (
	metadataFile = "metadata.json"
	ticksFile    = "ticks.csv"
)

var ticksHeader = []string{"tick", "live", "free", "spawned", "expired", "dropped", "backlog", "sweep_ns"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes how a run was configured.
type RunInfo struct {
	Preset   string         `json:"preset"`
	Capacity int            `json:"capacity"`
	Emitter  emitter.Config `json:"emitter"`
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Info      RunInfo            `json:"info"`
	Ticks     int                `json:"ticks"`
	Spawned   int                `json:"spawned"`
	Expired   int                `json:"expired"`
	Dropped   int                `json:"dropped"`
	PeakLive  int                `json:"peak_live"`
	Metrics   map[string]float64 `json:"metrics"`
}

func (s *Store) Save(info RunInfo, result *emitter.Result) (string, error) {
	name := info.Preset
	if name == "" {
		name = "run"
	}
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Timestamp: now,
		Info:      info,
		Ticks:     result.Totals.Ticks,
		Spawned:   result.Totals.Spawned,
		Expired:   result.Totals.Expired,
		Dropped:   result.Totals.Dropped,
		PeakLive:  result.Totals.PeakLive,
		Metrics:   result.Metrics,
	}

	if err := writeRun(runDir, meta, result.Ticks); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}

	return runID, nil
}

// writeRun writes ticks.csv before metadata.json, so a directory with
// metadata always holds a complete run.
func writeRun(runDir string, meta RunMetadata, ticks []emitter.TickStats) error {
	csvFile, err := os.Create(filepath.Join(runDir, ticksFile))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(ticksHeader); err != nil {
		return err
	}
	for _, ts := range ticks {
		row := []string{
			strconv.Itoa(ts.Tick),
			strconv.Itoa(ts.Live),
			strconv.Itoa(ts.Free),
			strconv.Itoa(ts.Spawned),
			strconv.Itoa(ts.Expired),
			strconv.Itoa(ts.Dropped),
			strconv.Itoa(ts.Backlog),
			strconv.FormatInt(ts.SweepTime.Nanoseconds(), 10),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := csvFile.Close(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	return os.WriteFile(filepath.Join(runDir, metadataFile), append(data, '\n'), 0644)
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadTicks(runID string) ([]emitter.TickStats, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, ticksFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(ticksHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []emitter.TickStats{}, nil
	}

	ticks := make([]emitter.TickStats, 0, len(records)-1)
	for i, record := range records[1:] {
		var vals [8]int64
		for j, field := range record {
			v, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d column %s: %w", ticksFile, i+2, ticksHeader[j], err)
			}
			vals[j] = v
		}
		ticks = append(ticks, emitter.TickStats{
			Tick:      int(vals[0]),
			Live:      int(vals[1]),
			Free:      int(vals[2]),
			Spawned:   int(vals[3]),
			Expired:   int(vals[4]),
			Dropped:   int(vals[5]),
			Backlog:   int(vals[6]),
			SweepTime: time.Duration(vals[7]),
		})
	}

	return ticks, nil
}
