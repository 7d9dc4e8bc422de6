package cli

import (
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/reveal/pkg/force"
	"github.com/matzehuels/reveal/pkg/graph"
	"github.com/matzehuels/reveal/pkg/view"
)

func testModel(t *testing.T) SimulateModel {
	t.Helper()
	doc := &graph.Document{
		Nodes: []*graph.Node{graph.NewNode("a", 1), graph.NewNode("b", 2)},
		Links: []*graph.Link{{SourceID: "a", TargetID: "b", Value: 1}},
	}
	v, err := view.Init(doc, view.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return NewSimulateModel(v, "a.json", 0)
}

func update(t *testing.T, m SimulateModel, msg tea.Msg) (SimulateModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(SimulateModel), cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSimulateModelDefaults(t *testing.T) {
	m := testModel(t)
	if m.Interval != force.DefaultInterval {
		t.Errorf("Interval = %v, want %v", m.Interval, force.DefaultInterval)
	}
	if m.Init() == nil {
		t.Error("Init should schedule the first step")
	}
}

func TestSimulateModelSteps(t *testing.T) {
	m := testModel(t)
	m, cmd := update(t, m, stepMsg(time.Now()))
	if got := m.view.Simulation().Ticks(); got != 1 {
		t.Errorf("ticks after one step = %d", got)
	}
	if cmd == nil || isQuit(cmd) {
		t.Error("a running simulation should schedule the next step")
	}

	m, _ = update(t, m, key(" "))
	m, _ = update(t, m, stepMsg(time.Now()))
	if got := m.view.Simulation().Ticks(); got != 1 {
		t.Errorf("paused model stepped: ticks = %d", got)
	}
	if !strings.Contains(m.View(), "paused") {
		t.Error("view should show the paused status")
	}
}

func TestSimulateModelSettles(t *testing.T) {
	tests := []struct {
		name     string
		stay     bool
		wantQuit bool
	}{
		{"quits", false, true},
		{"stays", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModel(t)
			m.Stay = tt.stay
			m.MaxTicks = 2

			var cmd tea.Cmd
			for range 2 {
				m, cmd = update(t, m, stepMsg(time.Now()))
			}
			if !m.settled || m.view.Simulation().Running() {
				t.Fatal("model should settle at MaxTicks")
			}
			if isQuit(cmd) != tt.wantQuit {
				t.Errorf("quit = %v, want %v", isQuit(cmd), tt.wantQuit)
			}
			if tt.stay && !strings.Contains(m.View(), "settled") {
				t.Error("view should show the settled status")
			}
		})
	}
}

func TestSimulateModelReheat(t *testing.T) {
	m := testModel(t)
	m.Stay = true
	sim := m.view.Simulation()
	sim.SetAlpha(sim.AlphaMin() * 1.01)
	m, _ = update(t, m, stepMsg(time.Now()))
	if !m.settled {
		t.Fatal("model should settle once alpha drops below the minimum")
	}

	m, cmd := update(t, m, key("r"))
	if m.settled || !sim.Running() || sim.Alpha() != 1 {
		t.Errorf("reheat: settled=%v running=%v alpha=%v", m.settled, sim.Running(), sim.Alpha())
	}
	if cmd == nil {
		t.Error("reheat should schedule a step")
	}
}

func TestSimulateModelQuitKeys(t *testing.T) {
	for _, k := range []string{"q", "esc", "ctrl+c"} {
		t.Run(k, func(t *testing.T) {
			msg := key(k)
			switch k {
			case "esc":
				msg = tea.KeyMsg{Type: tea.KeyEsc}
			case "ctrl+c":
				msg = tea.KeyMsg{Type: tea.KeyCtrlC}
			}
			if _, cmd := update(t, testModel(t), msg); !isQuit(cmd) {
				t.Errorf("%s should quit", k)
			}
		})
	}
}

func TestSimulateModelView(t *testing.T) {
	m := testModel(t)
	out := m.View()
	for _, want := range []string{"reveal simulate", "a.json", "tick", "alpha", "2 (0 pinned)", "running"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestCooling(t *testing.T) {
	tests := []struct {
		alpha, min, want float64
	}{
		{1, 0.001, 0},
		{0.001, 0.001, 1},
		{0.0001, 0.001, 1},
		{math.Sqrt(0.001), 0.001, 0.5},
		{0.5, 0, 0},
	}
	for _, tt := range tests {
		if got := cooling(tt.alpha, tt.min); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("cooling(%v, %v) = %v, want %v", tt.alpha, tt.min, got, tt.want)
		}
	}
}
