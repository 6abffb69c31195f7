package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/discipulado/internal/cli/formatter"
	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/alexanderramin/discipulado/internal/service"
	"github.com/alexanderramin/discipulado/internal/triage"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newBoardCmd(app *App) *cobra.Command {
	var assigned string

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Interactive kanban of cases by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := service.QueueQuery{CongregationID: app.Congregation, AssignedTo: assigned}
			m := newBoardModel(cmd.Context(), app, q)
			_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&assigned, "assigned", "", "Only cases of this responsible person")

	return cmd
}

type boardKeyMap struct {
	Left    key.Binding
	Right   key.Binding
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func (k boardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Up, k.Down, k.Refresh, k.Quit}
}

func (k boardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var boardKeys = boardKeyMap{
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "column")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "column")),
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// boardLoadedMsg carries a fresh status grouping.
type boardLoadedMsg struct {
	groups []triage.StatusGroup
	err    error
}

// boardModel shows one column per case status. Columns are fixed even when
// empty; each column keeps the canonical priority order.
type boardModel struct {
	ctx   context.Context
	app   *App
	query service.QueueQuery

	groups  []triage.StatusGroup
	col     int
	cursors []int
	loading bool
	err     error

	width int
	help  help.Model
}

func newBoardModel(ctx context.Context, app *App, q service.QueueQuery) *boardModel {
	return &boardModel{
		ctx:     ctx,
		app:     app,
		query:   q,
		cursors: make([]int, len(domain.CaseStatuses)),
		loading: true,
		width:   120,
		help:    help.New(),
	}
}

func (m *boardModel) Init() tea.Cmd {
	return m.load()
}

func (m *boardModel) load() tea.Cmd {
	app, ctx, q := m.app, m.ctx, m.query
	return func() tea.Msg {
		groups, err := app.Queue.ByStatus(ctx, q)
		return boardLoadedMsg{groups: groups, err: err}
	}
}

func (m *boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case boardLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.groups = msg.groups
			m.clampCursors()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, boardKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, boardKeys.Refresh):
			m.loading = true
			return m, m.load()
		case key.Matches(msg, boardKeys.Left):
			if m.col > 0 {
				m.col--
			}
		case key.Matches(msg, boardKeys.Right):
			if m.col < len(domain.CaseStatuses)-1 {
				m.col++
			}
		case key.Matches(msg, boardKeys.Up):
			if m.cursors[m.col] > 0 {
				m.cursors[m.col]--
			}
		case key.Matches(msg, boardKeys.Down):
			if m.cursors[m.col] < len(m.column(m.col))-1 {
				m.cursors[m.col]++
			}
		}
	}
	return m, nil
}

func (m *boardModel) column(i int) []triage.QueueItem {
	if i < len(m.groups) {
		return m.groups[i].Items
	}
	return nil
}

func (m *boardModel) clampCursors() {
	for i := range m.cursors {
		n := len(m.column(i))
		m.cursors[i] = max(min(m.cursors[i], n-1), 0)
	}
}

// selected returns the highlighted case, or nil on an empty column.
func (m *boardModel) selected() *triage.QueueItem {
	items := m.column(m.col)
	if len(items) == 0 {
		return nil
	}
	return &items[m.cursors[m.col]]
}

func (m *boardModel) View() string {
	if m.err != nil {
		return formatter.StyleRed.Render("Error: "+m.err.Error()) + "\n"
	}
	if m.loading && m.groups == nil {
		return formatter.Dim("Loading…") + "\n"
	}

	colWidth := max(m.width/len(domain.CaseStatuses)-2, 20)
	columns := make([]string, len(domain.CaseStatuses))
	for i, status := range domain.CaseStatuses {
		columns[i] = m.renderColumn(i, status, colWidth)
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...))
	b.WriteString("\n")
	if it := m.selected(); it != nil {
		b.WriteString(m.renderDetail(it))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(boardKeys))
	return b.String()
}

func (m *boardModel) renderColumn(i int, status domain.CaseStatus, width int) string {
	items := m.column(i)
	border := formatter.ColorDim
	if i == m.col {
		border = formatter.ColorHeader
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(width).
		Padding(0, 1)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", formatter.StatusPill(status), formatter.Dim(fmt.Sprintf("(%d)", len(items))))
	if len(items) == 0 {
		b.WriteString(formatter.Dim("vazio"))
	}
	for j, it := range items {
		line := fmt.Sprintf("%s %s", formatter.CriticalityBadge(it.Case.Criticality), it.MemberName)
		if i == m.col && j == m.cursors[i] {
			line = formatter.StyleBold.Render("› ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return style.Render(strings.TrimRight(b.String(), "\n"))
}

func (m *boardModel) renderDetail(it *triage.QueueItem) string {
	c := it.Case
	return fmt.Sprintf("%s  %s  neg %d  confra %s  módulos %s  %s",
		formatter.Bold(it.MemberName),
		formatter.PhaseLabel(c.Phase),
		c.NegativeContactCount,
		formatter.DaysToConfra(c.DaysToConfra),
		formatter.RenderProgress(it.Summary, 8),
		formatter.Dim(fmt.Sprintf("sem contato há %dd", c.DaysWithoutContact(m.app.now()))),
	)
}
