package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		Padding(1, 2)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// TruncID shortens a UUID to its first 8 characters.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// DaysToConfra renders the deadline distance. Events within a week get the
// "≤ 7 dias" badge.
func DaysToConfra(days *int) string {
	switch {
	case days == nil:
		return StyleDim.Render("—")
	case *days < 0:
		return StyleDim.Render(fmt.Sprintf("%dd atrás", -*days))
	case *days == 0:
		return StyleRed.Render("hoje  ≤ 7 dias")
	case *days <= 7:
		return StyleRed.Render(fmt.Sprintf("%dd  ≤ 7 dias", *days))
	default:
		return StyleFg.Render(fmt.Sprintf("%dd", *days))
	}
}

// CivilDate renders an event date, which carries no meaningful clock.
func CivilDate(t time.Time) string {
	return t.UTC().Format("02/01/2006")
}

func Timestamp(t time.Time) string {
	return t.Local().Format("02/01/2006 15:04")
}

// RenderProgress renders a module summary like [████░░░░] 2/4 50%.
func RenderProgress(s domain.ProgressSummary, width int) string {
	if s.Total == 0 {
		return StyleDim.Render("sem módulos")
	}
	width = max(width, 2)
	filled := min(s.Done*width/s.Total, width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case s.Percent < 33:
		style = StyleRed
	case s.Percent < 66:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %d/%d %3d%%", style.Render(bar), s.Done, s.Total, s.Percent)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return StyleDim.Render("—")
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
