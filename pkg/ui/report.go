// Package ui renders command output for terminals.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"oifits/pkg/check"
)

// CheckReport renders the results of check.RunAll for the file at path:
// one line per check, the stored breach locations under each failed check,
// and a closing summary box.
func CheckReport(path string, reports []check.Report) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Checking " + path))
	b.WriteString("\n")

	failed := 0
	for _, r := range reports {
		line := lipgloss.JoinHorizontal(lipgloss.Top,
			nameStyle.Render(r.Name),
			levelStyle(r.Level).Render(r.Level.String()),
			descStyle.Render(r.Description),
		)
		b.WriteString(line + "\n")
		if r.Passed() {
			continue
		}
		failed++
		for _, loc := range r.Locations {
			b.WriteString(locationStyle.Render(loc) + "\n")
		}
		if r.Truncated() {
			more := fmt.Sprintf("... %d more", r.NumBreaches-len(r.Locations))
			b.WriteString(locationStyle.Render(descStyle.Render(more)) + "\n")
		}
	}

	worst := check.Worst(reports)
	summary := fmt.Sprintf("%d of %d checks failed, worst level %s",
		failed, len(reports), levelStyle(worst).UnsetWidth().Render(worst.String()))
	b.WriteString(summaryStyle.Render(summary))
	b.WriteString("\n")
	return b.String()
}
