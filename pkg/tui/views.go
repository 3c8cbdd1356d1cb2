package tui

import (
	"fmt"
	"strings"

	"github.com/MattVerwey/TopDeck-sub004/internal/report"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.analyzing {
		return fmt.Sprintf("\n\n   %s Analyzing topology (%d resources)...",
			m.spinner.View(), m.graph.Store.ResourceCount())
	}
	if m.err != nil {
		return "\n\n   " + dangerText.Render("Error: "+m.err.Error())
	}

	switch m.state {
	case ViewStateDetail:
		return m.viewDetail()
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	if len(m.rows) == 0 {
		return "\n\n   " + subtle.Render("Empty topology. Run discovery first.")
	}

	s := strings.Builder{}
	s.WriteString("\n")
	s.WriteString(dimStyle.Render(fmt.Sprintf("  %-28s | %-22s | %-6s | %-6s | %s",
		"RESOURCE", "TYPE", "SCORE", "BLAST", "SPOF")) + "\n")
	s.WriteString(dimStyle.Render("  "+strings.Repeat("-", 76)) + "\n")

	start, end := m.window(len(m.rows))
	for i := start; i < end; i++ {
		r := m.rows[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		id := r.resource.IDStr()
		if len(id) > 28 {
			id = id[:25] + "..."
		}
		typ := r.resource.Type
		if len(typ) > 22 {
			typ = typ[:22]
		}

		if r.err != nil {
			s.WriteString(cursor + dangerText.Render(fmt.Sprintf("%-28s analysis failed: %v", id, r.err)) + "\n")
			continue
		}

		score := r.report.Assessment.RiskScore
		spof := ""
		if r.report.Assessment.SinglePointOfFailure {
			spof = dangerText.Render("SPOF")
		}

		line := fmt.Sprintf("%-28s | %-22s | %6.1f | %6d | %s",
			id, typ, score, r.report.BlastRadius.TotalAffected, spof)
		if i == m.cursor {
			line = special.Render(line)
		}
		s.WriteString(cursor + line + "\n")
	}

	s.WriteString("\n" + subtle.Render("  enter: details  r: re-analyze  q: quit") + "\n")
	return s.String()
}

func (m Model) viewDetail() string {
	if m.cursor >= len(m.rows) {
		return ""
	}
	r := m.rows[m.cursor]
	if r.err != nil {
		return "\n   " + dangerText.Render("analysis failed: "+r.err.Error())
	}

	body := report.Render(r.report)
	return "\n" + body + "\n" + subtle.Render("  esc: back  q: quit") + "\n"
}

// window returns the visible slice bounds, keeping the cursor on screen.
func (m Model) window(total int) (int, int) {
	visible := m.height - 6
	if visible < 5 {
		visible = 5
	}
	if total <= visible {
		return 0, total
	}

	start := m.cursor - visible/2
	if start < 0 {
		start = 0
	}
	end := start + visible
	if end > total {
		end = total
		start = end - visible
	}
	return start, end
}
