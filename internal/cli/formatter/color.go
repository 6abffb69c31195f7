package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorOrange = lipgloss.Color("#fe8019")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleOrange = lipgloss.NewStyle().Foreground(ColorOrange)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// UseColor switches ANSI styling on or off for everything rendered through
// lipgloss. Callers pass the result of a TTY check on stdout.
func UseColor(enabled bool) {
	if enabled {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}
	lipgloss.SetColorProfile(termenv.Ascii)
}

func CriticalityColor(c domain.Criticality) lipgloss.Style {
	switch c {
	case domain.CriticalityCritica:
		return StyleRed.Bold(true)
	case domain.CriticalityAlta:
		return StyleOrange
	case domain.CriticalityMedia:
		return StyleYellow
	case domain.CriticalityBaixa:
		return StyleGreen
	default:
		return StyleDim
	}
}

// CriticalityBadge renders "● CRITICA" in the tier's color.
func CriticalityBadge(c domain.Criticality) string {
	if c == "" {
		return StyleDim.Render("● ?")
	}
	return CriticalityColor(c).Render("● " + string(c))
}

// StatusPill renders a case status in human form.
func StatusPill(s domain.CaseStatus) string {
	switch s {
	case domain.StatusPendenteMatricula:
		return StyleYellow.Render("pendente matrícula")
	case domain.StatusEmDiscipulado:
		return StyleBlue.Render("em discipulado")
	case domain.StatusPausado:
		return StyleDim.Render("pausado")
	case domain.StatusConcluido:
		return StyleGreen.Render("concluído")
	default:
		return StyleDim.Render(string(s))
	}
}

func PhaseLabel(p domain.Phase) string {
	switch p {
	case domain.PhaseAcolhimento:
		return "Acolhimento"
	case domain.PhaseDiscipulado:
		return "Discipulado"
	case domain.PhasePosDiscipulado:
		return "Pós-discipulado"
	default:
		return string(p)
	}
}

// Header renders a section header with an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
