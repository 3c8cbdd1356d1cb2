// Package report renders analysis results for the CLI: machine-readable
// JSON and a styled terminal summary.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MattVerwey/TopDeck-sub004/pkg/engine"
	"github.com/MattVerwey/TopDeck-sub004/pkg/engine/blastradius"
	"github.com/MattVerwey/TopDeck-sub004/pkg/engine/scenario"
)

// Item is the JSON export shape for one analyzed resource.
type Item struct {
	ResourceID           string         `json:"resource_id"`
	Name                 string         `json:"name"`
	Type                 string         `json:"type"`
	Provider             string         `json:"provider"`
	RiskScore            float64        `json:"risk_score"`
	SinglePointOfFailure bool           `json:"single_point_of_failure"`
	DependenciesCount    int            `json:"dependencies_count"`
	DependentsCount      int            `json:"dependents_count"`
	DirectlyAffected     []string       `json:"directly_affected"`
	IndirectlyAffected   []string       `json:"indirectly_affected"`
	TotalAffected        int            `json:"total_affected"`
	EstimatedDowntime    float64        `json:"estimated_downtime_seconds"`
	CriticalPath         []string       `json:"critical_path"`
	UserImpact           string         `json:"user_impact"`
	Recommendations      []string       `json:"recommendations"`
	Scenarios            []ScenarioItem `json:"scenarios,omitempty"`
}

// ScenarioItem is the JSON export shape for one simulated failure.
type ScenarioItem struct {
	FailureType   string        `json:"failure_type"`
	OverallImpact string        `json:"overall_impact"`
	Outcomes      []OutcomeItem `json:"outcomes"`
}

// OutcomeItem is one probabilistic branch of a scenario.
type OutcomeItem struct {
	Type               string  `json:"type"`
	Probability        float64 `json:"probability"`
	DurationSeconds    float64 `json:"duration_seconds"`
	AffectedPercentage float64 `json:"affected_percentage"`
	Description        string  `json:"description"`
}

// NewItem flattens a full risk report into the export shape.
func NewItem(r *engine.ResourceRiskReport) Item {
	item := Item{
		ResourceID:           r.Resource.IDStr(),
		Name:                 r.Resource.Name,
		Type:                 r.Resource.Type,
		Provider:             r.Resource.Provider,
		RiskScore:            r.Assessment.RiskScore,
		SinglePointOfFailure: r.Assessment.SinglePointOfFailure,
		DependenciesCount:    r.Assessment.DependenciesCount,
		DependentsCount:      r.Assessment.DependentsCount,
		TotalAffected:        r.BlastRadius.TotalAffected,
		EstimatedDowntime:    r.BlastRadius.EstimatedDowntimeSeconds,
		CriticalPath:         r.BlastRadius.CriticalPath,
		UserImpact:           string(r.BlastRadius.UserImpact),
		Recommendations:      r.Assessment.Recommendations,
	}
	for _, res := range r.BlastRadius.DirectlyAffected {
		item.DirectlyAffected = append(item.DirectlyAffected, res.IDStr())
	}
	for _, res := range r.BlastRadius.IndirectlyAffected {
		item.IndirectlyAffected = append(item.IndirectlyAffected, res.IDStr())
	}
	for _, sc := range r.Scenarios {
		item.Scenarios = append(item.Scenarios, newScenarioItem(sc))
	}
	return item
}

func newScenarioItem(sc *scenario.Scenario) ScenarioItem {
	si := ScenarioItem{
		FailureType:   string(sc.FailureType),
		OverallImpact: sc.OverallImpact,
	}
	for _, o := range sc.Outcomes {
		si.Outcomes = append(si.Outcomes, OutcomeItem{
			Type:               o.Type,
			Probability:        o.Probability,
			DurationSeconds:    o.DurationSeconds,
			AffectedPercentage: o.AffectedPercentage,
			Description:        o.UserImpactDescription,
		})
	}
	return si
}

// WriteJSON exports one or more reports to a file.
func WriteJSON(reports []*engine.ResourceRiskReport, path string) error {
	items := make([]Item, 0, len(reports))
	for _, r := range reports {
		items = append(items, NewItem(r))
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// MarshalJSON renders a single report as indented JSON, for stdout.
func MarshalJSON(r *engine.ResourceRiskReport) ([]byte, error) {
	return json.MarshalIndent(NewItem(r), "", "  ")
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#874BFD"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	highStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF3366"))
	medStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFCC00"))
	lowStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF99"))
	spofStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF3366"))
)

// Render formats a report for the terminal.
func Render(r *engine.ResourceRiskReport) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%s)", r.Resource.Name, r.Resource.IDStr())))
	b.WriteString("\n\n")

	score := fmt.Sprintf("%.1f / 100", r.Assessment.RiskScore)
	b.WriteString(labelStyle.Render("Risk score:     ") + scoreStyle(r.Assessment.RiskScore).Render(score) + "\n")
	if r.Assessment.SinglePointOfFailure {
		b.WriteString(labelStyle.Render("SPOF:           ") + spofStyle.Render("YES") + "\n")
	}
	b.WriteString(labelStyle.Render("Dependencies:   ") + fmt.Sprintf("%d out, %d in", r.Assessment.DependenciesCount, r.Assessment.DependentsCount) + "\n")
	b.WriteString(labelStyle.Render("Blast radius:   ") + fmt.Sprintf("%d direct, %d indirect (%d total)",
		len(r.BlastRadius.DirectlyAffected), len(r.BlastRadius.IndirectlyAffected), r.BlastRadius.TotalAffected) + "\n")
	b.WriteString(labelStyle.Render("Est. downtime:  ") + formatDuration(r.BlastRadius.EstimatedDowntimeSeconds) + "\n")
	b.WriteString(labelStyle.Render("User impact:    ") + impactStyle(r.BlastRadius.UserImpact).Render(string(r.BlastRadius.UserImpact)) + "\n")

	if len(r.BlastRadius.CriticalPath) > 0 {
		b.WriteString(labelStyle.Render("Critical path:  ") + strings.Join(r.BlastRadius.CriticalPath, " -> ") + "\n")
	}

	if len(r.Assessment.Recommendations) > 0 {
		b.WriteString("\n" + titleStyle.Render("Recommendations") + "\n")
		for _, rec := range r.Assessment.Recommendations {
			b.WriteString("  - " + rec + "\n")
		}
	}

	for _, sc := range r.Scenarios {
		b.WriteString("\n" + titleStyle.Render("Scenario: "+string(sc.FailureType)) + "\n")
		for _, o := range sc.Outcomes {
			b.WriteString(fmt.Sprintf("  %3.0f%%  %-20s %s (%s, %.0f%% of users)\n",
				o.Probability*100, o.Type, o.UserImpactDescription,
				formatDuration(o.DurationSeconds), o.AffectedPercentage))
		}
	}

	return b.String()
}

func scoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 70:
		return highStyle
	case score >= 40:
		return medStyle
	default:
		return lowStyle
	}
}

func impactStyle(impact blastradius.Impact) lipgloss.Style {
	switch impact {
	case blastradius.ImpactHigh:
		return highStyle
	case blastradius.ImpactMedium:
		return medStyle
	default:
		return lowStyle
	}
}

func formatDuration(seconds float64) string {
	if seconds >= 3600 {
		return fmt.Sprintf("%.1fh", seconds/3600)
	}
	if seconds >= 60 {
		return fmt.Sprintf("%.1fm", seconds/60)
	}
	return fmt.Sprintf("%.0fs", seconds)
}
