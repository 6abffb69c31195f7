package cli

import (
	"github.com/alexanderramin/discipulado/internal/cli/formatter"
	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/alexanderramin/discipulado/internal/service"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// huhTheme matches the formatter palette: orange accent when focused.
func huhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

var outcomeLabels = map[domain.Outcome]string{
	domain.OutcomeNoAnswer:       "Não atendeu",
	domain.OutcomeWrongNumber:    "Número errado",
	domain.OutcomeRefused:        "Recusou",
	domain.OutcomeSemResposta:    "Sem resposta (mensagem)",
	domain.OutcomeContacted:      "Contato feito",
	domain.OutcomeScheduledVisit: "Visita agendada",
}

var channelLabels = map[domain.Channel]string{
	domain.ChannelWhatsApp: "WhatsApp",
	domain.ChannelLigacao:  "Ligação",
	domain.ChannelVisita:   "Visita",
	domain.ChannelOutro:    "Outro",
}

// attemptForm fills in whatever the flags left empty.
func attemptForm(req *service.RecordAttemptRequest) *huh.Form {
	outcomes := make([]huh.Option[domain.Outcome], 0, len(domain.Outcomes))
	for _, o := range domain.Outcomes {
		outcomes = append(outcomes, huh.NewOption(outcomeLabels[o], o))
	}
	channels := make([]huh.Option[domain.Channel], 0, len(domain.Channels))
	for _, c := range domain.Channels {
		channels = append(channels, huh.NewOption(channelLabels[c], c))
	}
	if req.Channel == "" {
		req.Channel = domain.ChannelWhatsApp
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[domain.Outcome]().
				Title("Resultado").
				Options(outcomes...).
				Value(&req.Outcome),
			huh.NewSelect[domain.Channel]().
				Title("Canal").
				Options(channels...).
				Value(&req.Channel),
			huh.NewText().
				Title("Notas").
				CharLimit(2000).
				Value(&req.Notes),
		),
	).WithTheme(huhTheme()).WithShowHelp(false)
}

func runAttemptForm(req *service.RecordAttemptRequest) error {
	return attemptForm(req).Run()
}
