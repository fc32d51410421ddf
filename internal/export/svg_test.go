package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/poolsim/internal/emitter"
	"github.com/san-kum/poolsim/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 2) != "" {
		t.Error("nil canvas should give empty output")
	}

	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(3, 5)

	svg := CanvasToSVG(c, 2)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("output is not a complete svg document")
	}
	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("expected 2 circles, got %d", got)
	}
	if !strings.Contains(svg, `width="16" height="16"`) {
		t.Error("svg size should be canvas size times scale")
	}
}

func TestParticlesToSVG(t *testing.T) {
	v := viz.Viewport{MinX: 0, MaxX: 10, MinY: 0, MaxY: 10}
	points := []emitter.Point{
		{Handle: "#0/g1", X: 5, Y: 5, FramesLeft: 10},
		{Handle: "#1/g1", X: 0, Y: 10, FramesLeft: 0},
		{Handle: "#2/g1", X: 50, Y: 5, FramesLeft: 3},
	}

	var buf bytes.Buffer
	if err := ParticlesToSVG(&buf, points, v, 100, 100); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	svg := buf.String()

	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("expected 2 circles inside the viewport, got %d", got)
	}
	if !strings.Contains(svg, `cx="50.0" cy="50.0" r="2" fill-opacity="1.00"`) {
		t.Error("center particle misplaced or not fully opaque")
	}
	if !strings.Contains(svg, `cx="0.0" cy="0.0" r="2" fill-opacity="0.20"`) {
		t.Error("top-left particle misplaced or not faded")
	}
	if strings.Contains(svg, "#2/g1") {
		t.Error("particle outside the viewport was drawn")
	}
}

func TestParticlesToSVGInvalidSize(t *testing.T) {
	var buf bytes.Buffer
	if err := ParticlesToSVG(&buf, nil, viz.DefaultViewport(), 0, 10); err == nil {
		t.Error("expected error for zero width")
	}
}
