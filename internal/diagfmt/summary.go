package diagfmt

import (
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"surge/internal/diag"
)

// Summary renders the closing "N error(s), M warning(s)" line tscore
// prints after a run's diagnostics, styled as a boxed line (lipgloss, the
// teacher's own styling library in internal/ui/progress.go) with correctly
// pluralized counts (golang.org/x/text/message).
func Summary(bag *diag.Bag, color bool) string {
	var errors, warnings int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errors++
		case diag.SevWarning:
			warnings++
		}
	}

	p := message.NewPrinter(language.English)
	text := p.Sprintf("%d %s, %d %s",
		errors, pluralize(errors, "error", "errors"),
		warnings, pluralize(warnings, "warning", "warnings"))

	if !color {
		return text
	}

	style := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch {
	case errors > 0:
		style = style.Foreground(lipgloss.Color("1"))
	case warnings > 0:
		style = style.Foreground(lipgloss.Color("3"))
	default:
		style = style.Foreground(lipgloss.Color("2"))
	}
	return style.Render(text)
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
