// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-chat-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
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

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSectionAnalysis outputs a human-readable view of one section's
// alignment analysis.
func (p *Printer) PrintSectionAnalysis(section types.Section, analysis *types.SectionAnalysis) {
	if analysis == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Alignment: %d%%\n", analysis.AlignmentScore))

	if len(analysis.MissingRequirements) > 0 {
		sb.WriteString("\nMissing requirements:\n")
		count := min(len(analysis.MissingRequirements), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", analysis.MissingRequirements[i]))
		}
		if len(analysis.MissingRequirements) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(analysis.MissingRequirements)-maxItemsToShow))
		}
	}

	if len(analysis.RecommendedQuestions) > 0 {
		sb.WriteString("\nOpen questions:\n")
		count := min(len(analysis.RecommendedQuestions), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, analysis.RecommendedQuestions[i]))
		}
		if len(analysis.RecommendedQuestions) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(analysis.RecommendedQuestions)-maxItemsToShow))
		}
	}

	title := fmt.Sprintf("SECTION ANALYSIS: %s", strings.ToUpper(string(section)))
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAnswerTable echoes the full question/answer table for a section after
// reconciliation, so captured answers are visible turn by turn.
func (p *Printer) PrintAnswerTable(section types.Section, questions, answers []string) {
	if len(questions) == 0 {
		return
	}

	var sb strings.Builder
	for i, question := range questions {
		answer := ""
		if i < len(answers) {
			answer = answers[i]
		}
		if answer == "" {
			answer = "(unanswered)"
		}
		sb.WriteString(fmt.Sprintf("%d. Q: %s\n", i+1, question))
		sb.WriteString(fmt.Sprintf("   A: %s\n", answer))
	}

	title := fmt.Sprintf("CURRENT ANSWERS: %s", strings.ToUpper(string(section)))
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCVSummary outputs the cross-section ledger of signed bullets.
func (p *Printer) PrintCVSummary(cvSummary map[types.Section]string) {
	if len(cvSummary) == 0 {
		return
	}

	var sb strings.Builder
	for _, section := range types.AllSections {
		points, ok := cvSummary[section]
		if !ok || points == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s:\n", section))
		for _, line := range strings.Split(points, "\n") {
			sb.WriteString(fmt.Sprintf("  %s\n", line))
		}
	}

	p.printBox("CV SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSectionScores outputs a one-line alignment overview per analyzed
// section, used by the analyze command.
func (p *Printer) PrintSectionScores(objects map[types.Section]*types.SectionAnalysis) {
	if len(objects) == 0 {
		return
	}

	var sb strings.Builder
	for _, section := range types.AllSections {
		analysis, ok := objects[section]
		if !ok || analysis == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("%-16s %3d%%  (%d gaps, %d questions)\n",
			section, analysis.AlignmentScore,
			len(analysis.MissingRequirements), len(analysis.RecommendedQuestions)))
	}

	p.printBox("ALIGNMENT OVERVIEW", strings.TrimSuffix(sb.String(), "\n"))
}
