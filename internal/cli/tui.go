package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/reveal/pkg/force"
	"github.com/matzehuels/reveal/pkg/view"
)

const progressWidth = 40

var (
	barFullStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	barEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
	helpStyle     = lipgloss.NewStyle().Foreground(colorDim)
)

type stepMsg time.Time

// SimulateModel is the bubbletea model of 'reveal simulate'. It steps the
// view's simulation once per interval on the update goroutine, so nothing
// else may touch the view while the program runs.
type SimulateModel struct {
	view     *view.View
	Title    string
	Interval time.Duration
	// MaxTicks stops the run early; 0 means no limit.
	MaxTicks int
	// Stay keeps the program open after the simulation settles.
	Stay bool

	paused  bool
	settled bool
	started time.Time
	elapsed time.Duration
}

// NewSimulateModel returns a model that starts stepping immediately.
// A non-positive interval uses [force.DefaultInterval].
func NewSimulateModel(v *view.View, title string, interval time.Duration) SimulateModel {
	if interval <= 0 {
		interval = force.DefaultInterval
	}
	return SimulateModel{view: v, Title: title, Interval: interval}
}

func (m SimulateModel) step() tea.Cmd {
	return tea.Tick(m.Interval, func(t time.Time) tea.Msg { return stepMsg(t) })
}

func (m SimulateModel) Init() tea.Cmd {
	return m.step()
}

func (m SimulateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	sim := m.view.Simulation()
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "p":
			m.paused = !m.paused
		case "r":
			sim.SetAlpha(1)
			sim.Restart()
			if m.settled {
				m.settled, m.started = false, time.Time{}
				return m, m.step()
			}
		}
	case stepMsg:
		if m.settled {
			return m, nil
		}
		if m.started.IsZero() {
			m.started = time.Time(msg)
		}
		if !m.paused {
			still := sim.Step()
			m.elapsed = time.Since(m.started)
			if !still || (m.MaxTicks > 0 && sim.Ticks() >= m.MaxTicks) {
				sim.Stop()
				m.settled = true
				if !m.Stay {
					return m, tea.Quit
				}
				return m, nil
			}
		}
		return m, m.step()
	}
	return m, nil
}

func (m SimulateModel) View() string {
	sim := m.view.Simulation()
	var b strings.Builder

	b.WriteString(StyleTitle.Render("reveal simulate"))
	if m.Title != "" {
		b.WriteString(" " + StyleDim.Render(m.Title))
	}
	b.WriteString("\n\n")

	p := cooling(sim.Alpha(), sim.AlphaMin())
	full := int(math.Round(p * progressWidth))
	b.WriteString(barFullStyle.Render(strings.Repeat("█", full)))
	b.WriteString(barEmptyStyle.Render(strings.Repeat("░", progressWidth-full)))
	b.WriteString(fmt.Sprintf(" %3.0f%%\n\n", p*100))

	status := "running"
	switch {
	case m.settled:
		status = StyleSuccess.Render("settled")
	case m.paused:
		status = StyleWarning.Render("paused")
	}

	doc := m.view.Document()
	minX, minY, maxX, maxY := extent(m.view)
	rows := [][]string{
		{"status", status},
		{"tick", fmt.Sprint(sim.Ticks())},
		{"alpha", fmt.Sprintf("%.4f", sim.Alpha())},
		{"nodes", fmt.Sprintf("%d (%d pinned)", len(doc.Nodes), pinned(m.view))},
		{"links", fmt.Sprint(len(doc.Links))},
		{"extent", fmt.Sprintf("%.0f×%.0f at (%.0f, %.0f)", maxX-minX, maxY-minY, minX, minY)},
		{"elapsed", m.elapsed.Round(time.Millisecond).String()},
	}
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return StyleDim.Width(9)
			}
			return StyleValue
		})
	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("space pause  r reheat  q quit"))
	b.WriteString("\n")
	return b.String()
}

// cooling maps alpha onto [0, 1]: 0 at full heat, 1 once alpha reaches
// alphaMin. Alpha decays geometrically, so the scale is logarithmic.
func cooling(alpha, alphaMin float64) float64 {
	if alpha >= 1 || alphaMin <= 0 || alphaMin >= 1 {
		return 0
	}
	if alpha <= alphaMin {
		return 1
	}
	return math.Log(alpha) / math.Log(alphaMin)
}

func extent(v *view.View) (minX, minY, maxX, maxY float64) {
	groups := v.Groups()
	if len(groups) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, g := range groups {
		minX, maxX = math.Min(minX, g.X), math.Max(maxX, g.X)
		minY, maxY = math.Min(minY, g.Y), math.Max(maxY, g.Y)
	}
	return minX, minY, maxX, maxY
}

func pinned(v *view.View) int {
	n := 0
	for _, node := range v.Document().Nodes {
		if node.Pinned() {
			n++
		}
	}
	return n
}
