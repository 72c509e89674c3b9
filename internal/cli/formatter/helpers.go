package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// Age renders how long ago t was relative to now, e.g. "3h 20m ago".
func Age(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		return "in " + FormatDuration(-d)
	}
	if d < time.Minute {
		return "just now"
	}
	return FormatDuration(d) + " ago"
}

// Deadline renders a due deadline relative to now, red once it has passed
// and yellow within the last four hours.
func Deadline(due *time.Time, now time.Time) string {
	if due == nil {
		return StyleDim.Render("--")
	}
	left := due.Sub(now)
	switch {
	case left <= 0:
		return StyleRed.Render("overdue " + FormatDuration(-left))
	case left <= 4*time.Hour:
		return StyleYellow.Render("due in " + FormatDuration(left))
	default:
		return StyleFg.Render("due in " + FormatDuration(left))
	}
}

// FormatDuration renders d at minute resolution: "45m", "3h 5m", "2d 4h".
func FormatDuration(d time.Duration) string {
	mins := int(d.Minutes())
	if mins >= 24*60 {
		days, h := mins/(24*60), (mins%(24*60))/60
		if h > 0 {
			return fmt.Sprintf("%dd %dh", days, h)
		}
		return fmt.Sprintf("%dd", days)
	}
	return FormatMinutes(mins)
}

// FormatMinutes converts raw minutes into human-friendly format.
func FormatMinutes(min int) string {
	if min <= 0 {
		return "0m"
	}
	h := min / 60
	m := min % 60
	if h > 0 && m > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if h > 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dm", m)
}

// Timestamp renders t as UTC date and minute.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}

// Percent renders a fraction as a percentage, "n/a" when it is undefined.
func Percent(v *float64) string {
	if v == nil {
		return StyleDim.Render("n/a")
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// OrDash returns s, or a dim dash when s is empty.
func OrDash(s string) string {
	if s == "" {
		return StyleDim.Render("--")
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
