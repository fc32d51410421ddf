package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/poolsim/internal/emitter"
	"github.com/san-kum/poolsim/internal/viz"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// CanvasToSVG converts a Braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := int(float64(canvas.Width) * scale * 2)
	height := int(float64(canvas.Height) * scale * 4)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	sb.WriteString(`<g fill="#00ccff">` + "\n")

	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}
	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r < 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// ParticlesToSVG draws live particles inside v. A particle fades as its
// remaining frames approach zero, relative to the longest-lived one.
func ParticlesToSVG(w io.Writer, points []emitter.Point, v viz.Viewport, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("svg size must be positive, got %dx%d", width, height)
	}

	longest := 1
	for _, p := range points {
		longest = max(longest, p.FramesLeft)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	sb.WriteString(`<g fill="#00ccff">` + "\n")

	rangeX, rangeY := v.MaxX-v.MinX, v.MaxY-v.MinY
	for _, p := range points {
		if p.X < v.MinX || p.X > v.MaxX || p.Y < v.MinY || p.Y > v.MaxY {
			continue
		}
		x := (p.X - v.MinX) / rangeX * float64(width)
		y := (v.MaxY - p.Y) / rangeY * float64(height)
		opacity := 0.2 + 0.8*float64(p.FramesLeft)/float64(longest)
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"2\" fill-opacity=\"%.2f\"><title>%s</title></circle>\n",
			x, y, opacity, p.Handle)
	}

	sb.WriteString("</g>\n</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
