// Package viz renders a running emitter in the terminal.
//
// [Canvas] is a braille dot grid (2x4 dots per cell) and [Viewport] maps
// particle world coordinates onto it. [Model] is a Bubble Tea program that
// steps the emitter on a timer and draws the live particles next to a stats
// panel and a live-count chart.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	B     - Burst of particles
//	C     - Release every live particle
//	+/-   - Raise/lower the spawn rate
//	Q     - Quit
package viz
