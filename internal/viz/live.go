// Package viz renders a live terminal view of a running integration.
// It is a passive consumer: concentrations flow in as observer segments
// and session snapshots, and control flows back only through the
// session's pause/resume/stop methods.
package viz

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/arshan-h/kinsim/internal/kinet"
)

const (
	chartWidth      = 64
	chartHeight     = 14
	historyCapacity = 600
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// Per-compound series colors, assigned by index. The original tool
// picked random chart colors per compound; a fixed palette keeps runs
// comparable.
var (
	seriesColors = []asciigraph.AnsiColor{
		asciigraph.Red, asciigraph.Green, asciigraph.Yellow,
		asciigraph.Blue, asciigraph.Magenta, asciigraph.Cyan,
	}
	legendColors = []lipgloss.Color{"9", "10", "11", "12", "13", "14"}
)

// history buffers segment endpoints for the chart. It implements
// kinet.Observer; the loop hands it copies, never live state.
type history struct {
	times []float64
	vals  [][]float64
}

func newHistory(compounds int) *history {
	return &history{vals: make([][]float64, compounds)}
}

func (h *history) OnStep(t float64, segs []kinet.Segment) {
	h.times = append(h.times, t)
	for _, seg := range segs {
		h.vals[seg.Compound] = append(h.vals[seg.Compound], seg.V1)
	}
	if len(h.times) > historyCapacity {
		h.times = h.times[1:]
		for i := range h.vals {
			h.vals[i] = h.vals[i][1:]
		}
	}
}

type TickMsg time.Time

// Model owns a session and its chart history for one live run.
type Model struct {
	name        string
	net         *kinet.Network
	dt          float64
	checkpoints []float64
	policy      kinet.Policy
	interval    time.Duration

	session *kinet.Session
	hist    *history
	series  *kinet.Series
	err     error
}

func NewModel(name string, net *kinet.Network, dt float64, checkpoints []float64, policy kinet.Policy, fps int) (Model, error) {
	if fps <= 0 {
		fps = 30
	}
	m := Model{
		name:        name,
		net:         net,
		dt:          dt,
		checkpoints: checkpoints,
		policy:      policy,
		interval:    time.Second / time.Duration(fps),
	}
	if err := m.restart(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// restart rebinds a fresh integrator to the original network.
func (m *Model) restart() error {
	g, err := kinet.New(m.dt)
	if err != nil {
		return err
	}
	if err := g.Bind(m.net); err != nil {
		return err
	}
	m.hist = newHistory(m.net.CompoundCount())
	g.AddObserver(m.hist)
	m.session, err = kinet.NewSession(g, m.checkpoints, m.policy)
	return err
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.series = m.session.Stop()
			return m, tea.Quit
		case " ":
			if m.session.Paused() {
				m.session.Resume()
			} else {
				m.session.Pause()
			}
		case "r":
			if err := m.restart(); err != nil {
				m.err = err
				return m, tea.Quit
			}
		}
	case TickMsg:
		if err := m.session.Tick(); err != nil && !errors.Is(err, kinet.ErrStopped) {
			m.err = err
			return m, tea.Quit
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")

	status := "RUNNING"
	if m.session.Paused() {
		status = "PAUSED"
	}
	b.WriteString(statusStyle.Render(status) + "\n")

	if len(m.hist.times) > 1 {
		chart := asciigraph.PlotMany(m.hist.vals,
			asciigraph.Height(chartHeight),
			asciigraph.Width(chartWidth),
			asciigraph.SeriesColors(colorsFor(len(m.hist.vals))...),
			asciigraph.Caption("concentration"),
		)
		b.WriteString(graphStyle.Render(chart) + "\n")
	}

	b.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3fs", m.session.Time())) + "\n")
	conc := m.session.Concentrations()
	for j, label := range m.session.Labels() {
		tag := lipgloss.NewStyle().Foreground(legendColors[j%len(legendColors)]).Width(12).Render(label)
		b.WriteString(tag + valueStyle.Render(fmt.Sprintf("%.6f", conc[j])) + "\n")
	}

	b.WriteString(helpStyle.Render("SP:pause/resume  R:restart  Q:stop"))
	return b.String()
}

func colorsFor(n int) []asciigraph.AnsiColor {
	out := make([]asciigraph.AnsiColor, n)
	for i := range out {
		out[i] = seriesColors[i%len(seriesColors)]
	}
	return out
}

// Run drives a live session until the user stops it and returns the
// sealed series (with the end sentinel set).
func Run(name string, net *kinet.Network, dt float64, checkpoints []float64, policy kinet.Policy, fps int) (*kinet.Series, error) {
	m, err := NewModel(name, net, dt, checkpoints, policy, fps)
	if err != nil {
		return nil, err
	}
	out, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, err
	}
	final := out.(Model)
	if final.err != nil {
		return nil, final.err
	}
	if final.series == nil {
		final.series = final.session.Stop()
	}
	return final.series, nil
}
