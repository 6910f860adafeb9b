package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mengluoML/julia"
	"github.com/mengluoML/julia/irtext"
	"github.com/mengluoML/julia/mem2reg"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	statStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#666666")).
			Padding(0, 1)
)

type interactiveModel struct {
	err       error
	filename  string
	funcs     []funcReport
	selected  int
	state     modelState
	showAfter bool
	vp        viewport.Model
	width     int
	height    int
	ready     bool
}

type funcReport struct {
	name   string
	before string
	after  string
	stats  mem2reg.Stats
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateViewFunc
)

func newInteractiveModel(filename string) *interactiveModel {
	return &interactiveModel{filename: filename, state: stateSelectFunc}
}

type loadedMsg struct {
	err   error
	funcs []funcReport
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadInput
}

// loadInput parses the input file and promotes every function, keeping
// the textual form from before and after the pass for side-by-side view.
func (m *interactiveModel) loadInput() tea.Msg {
	data, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}
	mod, err := irtext.Parse(string(data))
	if err != nil {
		return loadedMsg{err: err}
	}

	var funcs []funcReport
	for _, f := range mod.Funcs {
		before := irtext.PrintFunc(f)
		stats, err := julia.Promote(f)
		if err != nil {
			return loadedMsg{err: fmt.Errorf("promote %s: %w", f.Name, err)}
		}
		funcs = append(funcs, funcReport{
			name:   f.Name,
			before: before,
			after:  irtext.PrintFunc(f),
			stats:  stats,
		})
	}
	return loadedMsg{funcs: funcs}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			if m.state == stateSelectFunc && len(m.funcs) > 0 {
				m.state = stateViewFunc
				m.showAfter = true
				m.setViewportContent()
			}

		case "tab":
			if m.state == stateViewFunc {
				m.showAfter = !m.showAfter
				m.setViewportContent()
			}

		case "esc":
			if m.state == stateViewFunc {
				m.state = stateSelectFunc
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.vp = viewport.New(msg.Width-4, msg.Height-7)
			m.ready = true
		} else {
			m.vp.Width = msg.Width - 4
			m.vp.Height = msg.Height - 7
		}
		if m.state == stateViewFunc {
			m.setViewportContent()
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.funcs = msg.funcs
	}

	if m.state == stateViewFunc {
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) setViewportContent() {
	if !m.ready || len(m.funcs) == 0 {
		return
	}
	f := m.funcs[m.selected]
	if m.showAfter {
		m.vp.SetContent(f.after)
	} else {
		m.vp.SetContent(f.before)
	}
	m.vp.GotoTop()
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if len(m.funcs) == 0 {
		return "Loading " + m.filename + "..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("ssaopt"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select a function:\n\n")
		for i, f := range m.funcs {
			line := m.formatFunc(f)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter view • q quit"))

	case stateViewFunc:
		f := m.funcs[m.selected]
		which := "after"
		if !m.showAfter {
			which = "before"
		}
		b.WriteString(funcStyle.Render(f.name))
		b.WriteString(" (" + which + " promotion)\n")
		if m.ready {
			b.WriteString(paneStyle.Render(m.vp.View()))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab before/after • ↑/↓ scroll • esc back • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatFunc(f funcReport) string {
	summary := fmt.Sprintf("%d promoted, %d phis, %d copies split",
		f.stats.Promoted(), f.stats.PhisPlaced, f.stats.CopiesSplit)
	return funcStyle.Render(f.name) + "  " + statStyle.Render(summary)
}

func runInteractive(filename string) error {
	p := tea.NewProgram(newInteractiveModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
