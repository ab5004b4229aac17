// Package report renders validation findings for the terminal.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/derekprior/doubles/internal/validator"
)

// Summary counts the findings that were rendered.
type Summary struct {
	Errors   int
	Warnings int
}

// Clean reports whether nothing was flagged.
func (s Summary) Clean() bool {
	return s.Errors == 0 && s.Warnings == 0
}

type styles struct {
	heading lipgloss.Style
	name    lipgloss.Style
	err     lipgloss.Style
	warn    lipgloss.Style
	ok      lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
		name:    r.NewStyle().Width(16),
		err:     r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("#F2C94C")),
		ok:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("#27AE60")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#888888")),
	}
}

// Render writes per-player game counts, every finding, and a summary line.
// Colour is only emitted when w is a terminal.
func Render(w io.Writer, result validator.Result, appearances map[string]int) (Summary, error) {
	st := newStyles(w)
	var b strings.Builder

	b.WriteString(st.heading.Render("Games per player"))
	b.WriteString("\n")
	names := make([]string, 0, len(appearances))
	for name := range appearances {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "  %s %3d\n", st.name.Render(name), appearances[name])
	}
	if len(names) == 0 {
		b.WriteString(st.muted.Render("  (no players)"))
		b.WriteString("\n")
	}

	var summary Summary
	violations := result.Violations()
	if len(violations) > 0 {
		b.WriteString("\n")
		b.WriteString(st.heading.Render(fmt.Sprintf("Findings (%d)", len(violations))))
		b.WriteString("\n")
	}
	for _, v := range violations {
		switch v.Type {
		case "error":
			summary.Errors++
			b.WriteString(st.err.Render("  ✗ " + v.Message))
		default:
			summary.Warnings++
			b.WriteString(st.warn.Render("  ⚠ " + v.Message))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if summary.Clean() {
		b.WriteString(st.ok.Render("✓ No findings"))
	} else {
		line := fmt.Sprintf("Validation complete: %d errors, %d warnings", summary.Errors, summary.Warnings)
		if summary.Errors > 0 {
			b.WriteString(st.err.Render(line))
		} else {
			b.WriteString(st.warn.Render(line))
		}
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return summary, err
}
