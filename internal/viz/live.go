package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/poolsim/internal/emitter"
)

const (
	width           = 70
	height          = 22
	historyCapacity = 120
	burstSize       = 25
	rateStep        = 0.5
)

type TickMsg time.Time

// Model steps an emitter once per frame and draws its live particles.
type Model struct {
	em       *emitter.Emitter
	name     string
	canvas   *Canvas
	view     Viewport
	frame    time.Duration
	running  bool
	last     emitter.TickStats
	totals   emitter.Totals
	liveHist []float64
	message  string
}

type Option func(*Model)

func WithViewport(v Viewport) Option {
	return func(m *Model) { m.view = v }
}

// WithFrame sets the delay between ticks; the default is 1/30s.
func WithFrame(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.frame = d
		}
	}
}

func NewModel(em *emitter.Emitter, name string, opts ...Option) Model {
	m := Model{
		em:       em,
		name:     name,
		canvas:   NewCanvas(width, height),
		view:     DefaultViewport(),
		frame:    time.Second / 30,
		running:  true,
		liveHist: make([]float64, 0, historyCapacity),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "b":
			n := m.em.Burst(burstSize)
			m.message = fmt.Sprintf("burst: %d of %d spawned", n, burstSize)
			m.refresh()
		case "c":
			n := m.em.Clear()
			m.message = fmt.Sprintf("cleared %d particles", n)
			m.refresh()
		case "+", "=":
			m.em.SetRate(m.em.Config().Rate + rateStep)
		case "-", "_":
			m.em.SetRate(m.em.Config().Rate - rateStep)
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	ts := m.em.Step()
	m.last = ts
	m.totals.Ticks++
	m.totals.Spawned += ts.Spawned
	m.totals.Expired += ts.Expired
	m.totals.Dropped += ts.Dropped
	if ts.Live > m.totals.PeakLive {
		m.totals.PeakLive = ts.Live
	}

	m.liveHist = append(m.liveHist, float64(ts.Live))
	if len(m.liveHist) > historyCapacity {
		m.liveHist = m.liveHist[1:]
	}
}

// refresh reloads occupancy after changes made between ticks.
func (m *Model) refresh() {
	st := m.em.Pool().Stats()
	m.last.Live, m.last.Free = st.Live, st.Free
	if st.Live > m.totals.PeakLive {
		m.totals.PeakLive = st.Live
	}
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.canvas.Plot(m.view, m.em.Snapshot())
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	status := StatusRunning.Render("RUNNING")
	switch {
	case !m.running:
		status = StatusPaused.Render("PAUSED")
	case m.last.Live > 0 && m.last.Free == 0:
		status = StatusFull.Render("POOL FULL")
	}

	capacity := m.em.Pool().Cap()
	cfg := m.em.Config()

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(status + "\n\n")
	if len(m.liveHist) > 1 {
		chart := asciigraph.Plot(m.liveHist,
			asciigraph.Height(5),
			asciigraph.Width(30),
			asciigraph.LowerBound(0),
			asciigraph.UpperBound(float64(capacity)),
			asciigraph.Caption("live"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Tick", fmt.Sprintf("%d", m.last.Tick))
	row("Pool", OccupancyBar(m.last.Live, capacity, 16))
	row("Live", fmt.Sprintf("%d / %d", m.last.Live, capacity))
	row("Backlog", fmt.Sprintf("%d", m.last.Backlog))
	row("Rate", fmt.Sprintf("%.1f /tick", cfg.Rate))
	row("Overflow", string(cfg.Overflow))
	row("Spawned", fmt.Sprintf("%d", m.totals.Spawned))
	row("Expired", fmt.Sprintf("%d", m.totals.Expired))
	row("Dropped", fmt.Sprintf("%d", m.totals.Dropped))
	row("Peak", fmt.Sprintf("%d", m.totals.PeakLive))
	row("Sweep", m.last.SweepTime.String())

	if m.message != "" {
		s.WriteString("\n" + valueStyle.Render(m.message) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause B:Burst C:Clear\n+/-:Rate Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}
