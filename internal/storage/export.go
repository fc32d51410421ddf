package storage

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/san-kum/poolsim/internal/emitter"
)

type ExportData struct {
	Run   RunMetadata  `json:"run"`
	Ticks []ExportTick `json:"ticks"`
}

type ExportTick struct {
	Tick    int   `json:"tick"`
	Live    int   `json:"live"`
	Free    int   `json:"free"`
	Spawned int   `json:"spawned"`
	Expired int   `json:"expired"`
	Dropped int   `json:"dropped"`
	Backlog int   `json:"backlog"`
	SweepNs int64 `json:"sweep_ns"`
}

func exportTicks(ticks []emitter.TickStats) []ExportTick {
	out := make([]ExportTick, len(ticks))
	for i, ts := range ticks {
		out[i] = ExportTick{
			Tick:    ts.Tick,
			Live:    ts.Live,
			Free:    ts.Free,
			Spawned: ts.Spawned,
			Expired: ts.Expired,
			Dropped: ts.Dropped,
			Backlog: ts.Backlog,
			SweepNs: ts.SweepTime.Nanoseconds(),
		}
	}
	return out
}

// ExportJSON writes a stored run, metadata and ticks, as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	ticks, err := s.LoadTicks(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: *meta, Ticks: exportTicks(ticks)})
}
