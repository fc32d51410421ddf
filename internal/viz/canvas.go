package viz

import (
	"strings"

	"github.com/san-kum/poolsim/internal/emitter"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at (x, y) in sub-pixel coordinates. The canvas is
// Width*2 by Height*4 sub-pixels; points outside are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Lit counts the dots currently set.
func (c *Canvas) Lit() int {
	n := 0
	for _, row := range c.Grid {
		for _, r := range row {
			for bits := r - blank; bits != 0; bits &= bits - 1 {
				n++
			}
		}
	}
	return n
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Viewport is the world rectangle mapped onto a canvas. World y grows upward.
type Viewport struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

func DefaultViewport() Viewport {
	return Viewport{MinX: -25, MaxX: 25, MinY: -25, MaxY: 35}
}

// FitViewport bounds points with a 10% margin on each side.
func FitViewport(points []emitter.Point) Viewport {
	if len(points) == 0 {
		return DefaultViewport()
	}
	v := Viewport{MinX: points[0].X, MaxX: points[0].X, MinY: points[0].Y, MaxY: points[0].Y}
	for _, p := range points[1:] {
		v.MinX = min(v.MinX, p.X)
		v.MaxX = max(v.MaxX, p.X)
		v.MinY = min(v.MinY, p.Y)
		v.MaxY = max(v.MaxY, p.Y)
	}
	padX := (v.MaxX - v.MinX) * 0.1
	padY := (v.MaxY - v.MinY) * 0.1
	if padX == 0 {
		padX = 1
	}
	if padY == 0 {
		padY = 1
	}
	return Viewport{MinX: v.MinX - padX, MaxX: v.MaxX + padX, MinY: v.MinY - padY, MaxY: v.MaxY + padY}
}

// Project maps a world point to canvas sub-pixels.
func (v Viewport) Project(c *Canvas, x, y float64) (int, int) {
	w, h := float64(c.Width*2-1), float64(c.Height*4-1)
	px := (x - v.MinX) / (v.MaxX - v.MinX) * w
	py := (v.MaxY - y) / (v.MaxY - v.MinY) * h
	return int(px + 0.5), int(py + 0.5)
}

// Plot draws every point inside the viewport and returns how many landed.
func (c *Canvas) Plot(v Viewport, points []emitter.Point) int {
	n := 0
	for _, p := range points {
		if p.X < v.MinX || p.X > v.MaxX || p.Y < v.MinY || p.Y > v.MaxY {
			continue
		}
		x, y := v.Project(c, p.X, p.Y)
		c.Set(x, y)
		n++
	}
	return n
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
