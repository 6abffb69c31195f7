package cli

import (
	"fmt"

	"github.com/alexanderramin/discipulado/internal/cli/formatter"
	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/alexanderramin/discipulado/internal/service"
	"github.com/spf13/cobra"
)

func newQueueCmd(app *App) *cobra.Command {
	view := viewPriority
	var assigned string
	var tier domain.Criticality

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show the outreach queue, most urgent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			q := service.QueueQuery{CongregationID: app.Congregation, AssignedTo: assigned, Criticality: tier}
			now := app.now()
			out := cmd.OutOrStdout()

			switch view {
			case viewPriority, viewAcolhimento:
				q.AcolhimentoOnly = view == viewAcolhimento
				items, err := app.Queue.Priority(ctx, q)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(out, "Queue is empty.")
					return nil
				}
				fmt.Fprint(out, formatter.FormatQueue(items, now))
			case viewStatus:
				groups, err := app.Queue.ByStatus(ctx, q)
				if err != nil {
					return err
				}
				fmt.Fprint(out, formatter.FormatStatusGroups(groups, now))
			case viewOrigin:
				groups, err := app.Queue.ByOrigin(ctx, q)
				if err != nil {
					return err
				}
				fmt.Fprint(out, formatter.FormatOriginGroups(groups, now))
			case viewTurno:
				groups, err := app.Queue.ByTurno(ctx, q)
				if err != nil {
					return err
				}
				fmt.Fprint(out, formatter.FormatCohorts(groups, now))
			case viewStats:
				s, err := app.Queue.Stats(ctx, q)
				if err != nil {
					return err
				}
				fmt.Fprint(out, formatter.FormatStats(formatter.StatsView(*s)))
			}
			return nil
		},
	}

	v := newEnumValue(&view, "view", parseQueueView, queueViews)
	cmd.Flags().Var(v, "view", v.usage("Layout"))
	cmd.Flags().StringVar(&assigned, "assigned", "", "Only cases of this responsible person")
	criticalityFlag(cmd.Flags(), &tier)

	return cmd
}
