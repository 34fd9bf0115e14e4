// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/prose-humanizer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most width runes.
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// PrintMetrics outputs the components of an artificiality score.
func (p *Printer) PrintMetrics(title string, m types.MetricSnapshot) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Artificiality: %.1f / 100\n", m.Artificiality))
	sb.WriteString(fmt.Sprintf("Words: %d   Sentences: %d\n", m.Words, m.Sentences))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  • sentence CV   %6.3f  (%4.1f pts)\n", m.CV, m.Breakdown.CV))
	sb.WriteString(fmt.Sprintf("  • formulaic     %6.3f  (%4.1f pts)\n", m.FormulaicDensity, m.Breakdown.Formulaic))
	sb.WriteString(fmt.Sprintf("  • connectors    %6.3f  (%4.1f pts)\n", m.ConnectorRatio, m.Breakdown.Connector))
	sb.WriteString(fmt.Sprintf("  • repetition    %6.3f  (%4.1f pts)\n", m.Repetition, m.Breakdown.Repetition))
	sb.WriteString(fmt.Sprintf("  • typography    %6.3f  (%4.1f pts)\n", m.Typography, m.Breakdown.Typography))

	p.printBox(title, sb.String())
}

// PrintChanges outputs the change log, grouped by stage in order of first appearance.
func (p *Printer) PrintChanges(changes []types.ChangeEntry) {
	if len(changes) == 0 {
		p.printBox("CHANGES", "No changes")
		return
	}

	var order []string
	byStage := make(map[string][]types.ChangeEntry)
	for _, c := range changes {
		if _, ok := byStage[c.Stage]; !ok {
			order = append(order, c.Stage)
		}
		byStage[c.Stage] = append(byStage[c.Stage], c)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total: %d\n", len(changes)))
	for _, stage := range order {
		entries := byStage[stage]
		sb.WriteString(fmt.Sprintf("\n%s (%d)\n", stage, len(entries)))
		count := min(len(entries), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString("  • " + describeChange(entries[i]) + "\n")
		}
		if len(entries) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(entries)-maxItemsToShow))
		}
	}

	p.printBox("CHANGES", sb.String())
}

func describeChange(c types.ChangeEntry) string {
	switch {
	case c.Before != "" && c.After != "":
		return fmt.Sprintf("%s: %q → %q", c.Kind, c.Before, c.After)
	case c.Before != "":
		return fmt.Sprintf("%s: %q", c.Kind, c.Before)
	case c.After != "":
		return fmt.Sprintf("%s: → %q", c.Kind, c.After)
	default:
		return c.Kind
	}
}

// PrintValidation outputs the validation verdict with its errors and warnings.
func (p *Printer) PrintValidation(report types.ValidationReport) {
	var sb strings.Builder

	status := "✓ valid"
	if report.ShouldRollback {
		status = "✗ rollback"
	} else if !report.IsValid {
		status = "⚠ accepted with errors"
	}
	sb.WriteString(fmt.Sprintf("Status: %s\n", status))
	sb.WriteString(fmt.Sprintf("Change ratio: %.3f   Length ratio: %.3f\n", report.ChangeRatio, report.LengthRatio))

	if len(report.Errors) > 0 {
		sb.WriteString("\nErrors:\n")
		for _, e := range report.Errors {
			sb.WriteString(fmt.Sprintf("  ✗ %s\n", e))
		}
	}
	if len(report.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, w := range report.Warnings {
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", w))
		}
	}

	p.printBox("VALIDATION", sb.String())
}

// PrintResult outputs a summary of a pipeline run followed by its metrics, changes and validation.
func (p *Printer) PrintResult(result *types.PipelineResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:       %s\n", result.RunID))
	sb.WriteString(fmt.Sprintf("Language:  %s   Profile: %s\n", result.Language, result.Profile))
	sb.WriteString(fmt.Sprintf("Seed:      %d\n", result.Seed))
	sb.WriteString(fmt.Sprintf("Intensity: %d → %.1f effective\n", result.Intensity, result.EffectiveIntensity))
	sb.WriteString(fmt.Sprintf("Score:     %.1f → %.1f\n", result.MetricsBefore.Artificiality, result.MetricsAfter.Artificiality))
	sb.WriteString(fmt.Sprintf("Quality:   %.1f\n", result.QualityScore))

	var flags []string
	if result.ShortCircuited {
		flags = append(flags, "near-natural (typography only)")
	}
	if result.Retried {
		flags = append(flags, "retried at lower intensity")
	}
	if result.RolledBack {
		flags = append(flags, "rolled back")
	}
	if len(flags) > 0 {
		sb.WriteString("\n")
		for _, f := range flags {
			sb.WriteString(fmt.Sprintf("  • %s\n", f))
		}
	}

	p.printBox("HUMANIZER RUN", sb.String())
	p.PrintMetrics("METRICS BEFORE", result.MetricsBefore)
	p.PrintMetrics("METRICS AFTER", result.MetricsAfter)
	p.PrintChanges(result.Changes)
	p.PrintValidation(result.Validation)
}

// PrintDetection outputs a detection verdict and its metric values.
func (p *Printer) PrintDetection(d types.Detection) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Verdict:    %s\n", d.Verdict))
	sb.WriteString(fmt.Sprintf("Score:      %.1f / 100\n", d.Score))
	sb.WriteString(fmt.Sprintf("Confidence: %.0f%%\n", d.Confidence*100))
	sb.WriteString(fmt.Sprintf("Language:   %s\n", d.Language))
	sb.WriteString("\n")

	names := make([]string, 0, len(d.Metrics))
	for name := range d.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("  • %-18s %8.3f\n", name, d.Metrics[name]))
	}

	p.printBox("AI DETECTION", sb.String())
}
