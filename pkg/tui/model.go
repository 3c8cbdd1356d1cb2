// Package tui is the interactive topology browser: a resource list
// ranked by risk, with a detail pane per resource.
package tui

import (
	"context"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MattVerwey/TopDeck-sub004/pkg/engine"
	"github.com/MattVerwey/TopDeck-sub004/pkg/graph"
)

type ViewState int

const (
	ViewStateList ViewState = iota
	ViewStateDetail
)

var (
	special    = lipgloss.NewStyle().Foreground(lipgloss.Color("#874BFD"))
	subtle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	dangerText = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF3366"))
	warnText   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFCC00"))
	okText     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF99"))
)

// row is one analyzed resource in the list.
type row struct {
	resource *graph.Resource
	report   *engine.ResourceRiskReport
	err      error
}

type Model struct {
	spinner spinner.Model
	engine  *engine.Engine
	graph   *graph.Graph

	state     ViewState
	analyzing bool
	quitting  bool
	err       error
	width     int
	height    int

	rows   []row
	cursor int

	startTime time.Time
}

// analyzedMsg carries the full analysis result back into the
// update loop.
type analyzedMsg struct {
	rows []row
	err  error
}

func NewModel(e *engine.Engine, g *graph.Graph) Model {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = special

	return Model{
		spinner:   s,
		engine:    e,
		graph:     g,
		state:     ViewStateList,
		analyzing: true,
		startTime: time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.analyzeCmd())
}

// analyzeCmd runs the full pipeline for every resource off the UI
// goroutine and returns the ranked rows.
func (m Model) analyzeCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		resources := m.graph.Store.GetAllResources()

		rows := make([]row, 0, len(resources))
		for _, res := range resources {
			r, err := m.engine.RiskReport(ctx, res.IDStr())
			rows = append(rows, row{resource: res, report: r, err: err})
		}

		sort.SliceStable(rows, func(i, j int) bool {
			var si, sj float64
			if rows[i].report != nil {
				si = rows[i].report.Assessment.RiskScore
			}
			if rows[j].report != nil {
				sj = rows[j].report.Assessment.RiskScore
			}
			if si != sj {
				return si > sj
			}
			return rows[i].resource.IDStr() < rows[j].resource.IDStr()
		})

		return analyzedMsg{rows: rows}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case analyzedMsg:
		m.analyzing = false
		m.rows = msg.rows
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.state == ViewStateList && m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.state == ViewStateList && m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case "enter":
			if m.state == ViewStateList && len(m.rows) > 0 {
				m.state = ViewStateDetail
			}
		case "esc", "backspace":
			if m.state == ViewStateDetail {
				m.state = ViewStateList
			}
		case "r":
			if !m.analyzing {
				m.analyzing = true
				return m, tea.Batch(m.spinner.Tick, m.analyzeCmd())
			}
		}
	}

	return m, nil
}

// Run starts the program and blocks until the user quits.
func Run(e *engine.Engine, g *graph.Graph) error {
	p := tea.NewProgram(NewModel(e, g), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
