package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/discipulado/internal/domain"
)

// CaseDetail is everything "case show" prints.
type CaseDetail struct {
	Case     *domain.Case
	Member   *domain.Member
	Event    *domain.Confraternizacao
	Attempts []*domain.ContactAttempt
	Progress []*domain.ModuleProgress
	// ModuleTitles maps module ID to title.
	ModuleTitles map[string]string
}

func FormatCaseDetail(d CaseDetail) string {
	c := d.Case
	var b strings.Builder

	name := c.MemberID
	origem := ""
	if d.Member != nil {
		name = d.Member.Name
		origem = d.Member.Origem
	}

	kv := [][2]string{
		{"Membro", Bold(name)},
		{"Origem", fmt.Sprintf("%s %s", orDash(origem), Dim("("+string(domain.ClassifyOrigin(origem))+")"))},
		{"Fase", PhaseLabel(c.Phase)},
		{"Status", StatusPill(c.Status)},
		{"Criticidade", CriticalityBadge(c.Criticality)},
		{"Contatos negativos", strconv.Itoa(c.NegativeContactCount)},
		{"Confraternização", eventLine(d.Event, c)},
		{"Dias p/ confra", DaysToConfra(c.DaysToConfra)},
		{"Responsável", orDash(c.AssignedTo)},
		{"Turno", orDash(c.TurnoOrigem)},
		{"Módulos", RenderProgress(domain.Summarize(d.Progress), 12)},
	}
	for _, row := range kv {
		fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render(fmt.Sprintf("%-19s", row[0])), row[1])
	}

	if len(d.Progress) > 0 {
		b.WriteString("\n" + Header("Módulos") + "\n")
		b.WriteString(FormatProgressList(d.Progress, d.ModuleTitles))
	}
	if len(d.Attempts) > 0 {
		b.WriteString("\n" + Header("Tentativas de contato") + "\n")
		b.WriteString(FormatAttempts(d.Attempts))
	}

	return RenderBox("Caso "+shortID(c.ID), strings.TrimRight(b.String(), "\n"))
}

func eventLine(e *domain.Confraternizacao, c *domain.Case) string {
	if e == nil {
		return Dim("nenhuma")
	}
	line := fmt.Sprintf("%s em %s", e.Title, CivilDate(e.EventDate))
	if c.ConfraternizacaoConfirmada {
		line += " " + StyleGreen.Render("✓ confirmada")
	}
	return line
}

func FormatCaseList(cases []*domain.Case) string {
	headers := []string{"ID", "FASE", "STATUS", "CRITICIDADE", "NEG", "CONFRA", "RESPONSÁVEL"}
	rows := make([][]string, 0, len(cases))
	for _, c := range cases {
		rows = append(rows, []string{
			TruncID(c.ID),
			PhaseLabel(c.Phase),
			StatusPill(c.Status),
			CriticalityBadge(c.Criticality),
			strconv.Itoa(c.NegativeContactCount),
			DaysToConfra(c.DaysToConfra),
			orDash(c.AssignedTo),
		})
	}
	return RenderTable(headers, rows)
}

func FormatAttempts(attempts []*domain.ContactAttempt) string {
	headers := []string{"QUANDO", "RESULTADO", "CANAL", "POR", "NOTAS"}
	rows := make([][]string, 0, len(attempts))
	for _, a := range attempts {
		outcome := StyleGreen.Render(string(a.Outcome))
		if a.Outcome.IsNegative() {
			outcome = StyleRed.Render(string(a.Outcome))
		}
		rows = append(rows, []string{
			Timestamp(a.CreatedAt),
			outcome,
			string(a.Channel),
			orDash(a.AttemptedBy),
			Dim(truncate(a.Notes, 40)),
		})
	}
	return RenderTable(headers, rows)
}

func FormatProgressList(rows []*domain.ModuleProgress, titles map[string]string) string {
	headers := []string{"ID", "MÓDULO", "STATUS", "TURNO", "CONCLUÍDO EM"}
	out := make([][]string, 0, len(rows))
	for _, p := range rows {
		title := titles[p.ModuleID]
		if title == "" {
			title = shortID(p.ModuleID)
		}
		completed := Dim("—")
		if p.CompletedAt != nil {
			completed = Timestamp(*p.CompletedAt)
		}
		out = append(out, []string{TruncID(p.ID), title, progressStatus(p.Status), orDash(p.Turno), completed})
	}
	return RenderTable(headers, out)
}

func progressStatus(s domain.ProgressStatus) string {
	switch s {
	case domain.ProgressConcluido:
		return StyleGreen.Render("concluído")
	case domain.ProgressEmAndamento:
		return StyleBlue.Render("em andamento")
	default:
		return StyleDim.Render("não iniciado")
	}
}

func FormatMembers(members []*domain.Member) string {
	headers := []string{"ID", "NOME", "TELEFONE", "ORIGEM", "GRUPO"}
	rows := make([][]string, 0, len(members))
	for _, m := range members {
		rows = append(rows, []string{
			TruncID(m.ID),
			m.Name,
			orDash(m.Phone),
			orDash(m.Origem),
			Dim(string(domain.ClassifyOrigin(m.Origem))),
		})
	}
	return RenderTable(headers, rows)
}

func FormatModules(modules []*domain.Module) string {
	headers := []string{"ID", "ORDEM", "TÍTULO", "ATIVO"}
	rows := make([][]string, 0, len(modules))
	for _, m := range modules {
		active := StyleGreen.Render("sim")
		if !m.Active {
			active = Dim("não")
		}
		rows = append(rows, []string{TruncID(m.ID), strconv.Itoa(m.SortOrder), m.Title, active})
	}
	return RenderTable(headers, rows)
}

func FormatEvents(events []*domain.Confraternizacao) string {
	headers := []string{"ID", "DATA", "TÍTULO", "ATIVA"}
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		active := ""
		if e.Active {
			active = StyleGreen.Render("●")
		}
		rows = append(rows, []string{TruncID(e.ID), CivilDate(e.EventDate), e.Title, active})
	}
	return RenderTable(headers, rows)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
