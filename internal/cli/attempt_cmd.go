package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/alexanderramin/discipulado/internal/cli/formatter"
	"github.com/alexanderramin/discipulado/internal/notify"
	"github.com/alexanderramin/discipulado/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAttemptCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attempt",
		Short: "Record and list contact attempts",
	}
	cmd.AddCommand(
		newAttemptRecordCmd(app),
		newAttemptListCmd(app),
	)
	return cmd
}

func newAttemptRecordCmd(app *App) *cobra.Command {
	var req service.RecordAttemptRequest

	cmd := &cobra.Command{
		Use:   "record CASE",
		Short: "Record the result of a contact attempt",
		Long: `Record the result of a contact attempt.

Negative outcomes (no_answer, wrong_number, refused, sem_resposta) add to the
case's negative contact count and may raise its criticality. Positive outcomes
leave the count alone; use "case reset-contacts" to clear it. Without
--outcome on an interactive terminal a form asks for the details.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveCaseID(ctx, app, args[0])
			if err != nil {
				return err
			}

			if req.Outcome == "" {
				if !app.interactive() {
					return errors.New(`required flag(s) "outcome" not set`)
				}
				if err := runAttemptForm(&req); err != nil {
					return err
				}
			}

			req.CongregationID = app.Congregation
			req.CaseID = id
			res, err := app.Attempts.RecordAttempt(ctx, req)
			if err != nil {
				return err
			}

			printAttemptResult(cmd.OutOrStdout(), res)
			if res.Escalated {
				raiseEscalation(ctx, app, cmd.ErrOrStderr(), res)
			}
			return nil
		},
	}

	outcomeFlag(cmd.Flags(), &req.Outcome)
	channelFlag(cmd.Flags(), &req.Channel)
	cmd.Flags().StringVar(&req.Notes, "notes", "", "Free-text notes")
	cmd.Flags().StringVar(&req.AttemptedBy, "by", "", "Who made the contact")

	return cmd
}

func printAttemptResult(w io.Writer, res *service.AttemptResult) {
	c := res.Case
	fmt.Fprintf(w, "Recorded %s for case %s (negative contacts: %d)\n",
		res.Attempt.Outcome, c.ID, c.NegativeContactCount)
	if res.Previous != c.Criticality {
		arrow := "▼"
		if res.Escalated {
			arrow = "▲"
		}
		fmt.Fprintf(w, "Criticality %s → %s %s\n",
			formatter.CriticalityBadge(res.Previous), formatter.CriticalityBadge(c.Criticality), arrow)
	}
}

// raiseEscalation hands the escalation to the notifier. Delivery failures are
// reported but never undo the recorded attempt.
func raiseEscalation(ctx context.Context, app *App, errOut io.Writer, res *service.AttemptResult) {
	if app.Notifier == nil {
		return
	}
	e := notify.NewEscalation(res.Case, res.Previous, res.Attempt.Outcome, res.Attempt.CreatedAt)
	if m, err := app.Members.Get(ctx, app.Congregation, res.Case.MemberID); err == nil {
		e.MemberName = m.Name
	}
	if err := app.Notifier.NotifyEscalation(ctx, e); err != nil {
		app.logger().Warn("escalation not delivered", zap.String("case_id", e.CaseID), zap.Error(err))
		fmt.Fprintf(errOut, "Warning: escalation not delivered: %v\n", err)
	}
}

func newAttemptListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list CASE",
		Short: "Show a case's contact log, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveCaseID(ctx, app, args[0])
			if err != nil {
				return err
			}
			attempts, err := app.Attempts.ListByCase(ctx, app.Congregation, id)
			if err != nil {
				return err
			}
			if len(attempts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No contact attempts recorded.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAttempts(attempts))
			return nil
		},
	}
}
