package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// ComplianceBar renders a fraction as [████░░░░]  45%, green when high.
func ComplianceBar(frac float64, width int) string {
	style := StyleGreen
	switch {
	case frac < 0.70:
		style = StyleRed
	case frac < 0.85:
		style = StyleYellow
	}
	return renderBar(frac, width, style)
}

// UtilizationBar renders a load percentage, red above 90 and blue below 50.
// Values over 100 fill the bar but keep their label.
func UtilizationBar(pct float64, width int) string {
	style := StyleGreen
	switch {
	case pct > 90:
		style = StyleRed
	case pct < 50:
		style = StyleBlue
	}
	return renderBar(pct/100, width, style)
}

func renderBar(frac float64, width int, style lipgloss.Style) string {
	label := fmt.Sprintf("%3.0f%%", frac*100)
	frac = min(max(frac, 0), 1)
	width = max(width, 2)
	filled := min(int(frac*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
	return fmt.Sprintf("[%s] %s", style.Render(bar), label)
}
