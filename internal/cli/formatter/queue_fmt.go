package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/alexanderramin/discipulado/internal/triage"
)

// FormatQueue renders a prioritized queue, most urgent first.
func FormatQueue(items []triage.QueueItem, now time.Time) string {
	headers := []string{"#", "ID", "NOME", "CRITICIDADE", "NEG", "SEM CONTATO", "CONFRA", "STATUS", "MÓDULOS"}
	rows := make([][]string, 0, len(items))
	for i, it := range items {
		c := it.Case
		rows = append(rows, []string{
			Dim(strconv.Itoa(i + 1)),
			TruncID(c.ID),
			truncate(it.MemberName, 28),
			CriticalityBadge(c.Criticality),
			strconv.Itoa(c.NegativeContactCount),
			daysWithout(c, now),
			DaysToConfra(c.DaysToConfra),
			StatusPill(c.Status),
			summaryCell(it.Summary),
		})
	}
	return RenderTable(headers, rows)
}

func daysWithout(c *domain.Case, now time.Time) string {
	return fmt.Sprintf("%dd", c.DaysWithoutContact(now))
}

func summaryCell(s domain.ProgressSummary) string {
	if s.Total == 0 {
		return Dim("—")
	}
	return fmt.Sprintf("%d/%d", s.Done, s.Total)
}

func FormatStatusGroups(groups []triage.StatusGroup, now time.Time) string {
	var b strings.Builder
	for _, g := range groups {
		fmt.Fprintf(&b, "%s %s\n", StatusPill(g.Status), Dim(fmt.Sprintf("(%d)", len(g.Items))))
		if len(g.Items) == 0 {
			b.WriteString(Dim("  vazio") + "\n\n")
			continue
		}
		b.WriteString(FormatQueue(g.Items, now))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func FormatOriginGroups(groups []triage.OriginGroup, now time.Time) string {
	if len(groups) == 0 {
		return Dim("Nenhum caso.") + "\n"
	}
	var b strings.Builder
	for _, g := range groups {
		b.WriteString(Header(fmt.Sprintf("%s (%d)", g.Origin, g.Total)) + "\n")
		for _, sg := range g.Statuses {
			if len(sg.Items) == 0 {
				continue
			}
			fmt.Fprintf(&b, "%s %s\n", StatusPill(sg.Status), Dim(fmt.Sprintf("(%d)", len(sg.Items))))
			b.WriteString(FormatQueue(sg.Items, now))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func FormatCohorts(groups []triage.CohortGroup, now time.Time) string {
	if len(groups) == 0 {
		return Dim("Nenhum caso.") + "\n"
	}
	var b strings.Builder
	for _, g := range groups {
		b.WriteString(Header(fmt.Sprintf("Turno %s (%d)", g.Turno, len(g.Items))) + "\n")
		b.WriteString(FormatQueue(g.Items, now))
		b.WriteString("\n")
	}
	return b.String()
}

// StatsView mirrors service.QueueStats without importing the service package.
type StatsView struct {
	Total         int
	ByCriticality map[domain.Criticality]int
	ByStatus      map[domain.CaseStatus]int
	NearConfra    int
}

func FormatStats(s StatsView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n\n", Bold("Casos:"), s.Total)
	for i := len(domain.Criticalities) - 1; i >= 0; i-- {
		c := domain.Criticalities[i]
		fmt.Fprintf(&b, "  %s  %d\n", CriticalityBadge(c), s.ByCriticality[c])
	}
	b.WriteString("\n")
	for _, st := range domain.CaseStatuses {
		fmt.Fprintf(&b, "  %s: %d\n", StatusPill(st), s.ByStatus[st])
	}
	fmt.Fprintf(&b, "\n  %s %d\n", StyleRed.Render("≤ 7 dias p/ confra:"), s.NearConfra)
	return b.String()
}
