package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/alexanderramin/discipulado/internal/cli/formatter"
	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/alexanderramin/discipulado/internal/repository"
	"github.com/alexanderramin/discipulado/internal/service"
	"github.com/spf13/cobra"
)

func newCaseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "case",
		Short: "Manage follow-up cases",
	}

	cmd.AddCommand(
		newCaseCreateCmd(app),
		newCaseShowCmd(app),
		newCaseListCmd(app),
		newCaseDeleteCmd(app),
		newCaseStartCmd(app),
		newCaseTransitionCmd(app, "pause", "Pause discipleship", service.CaseService.Pause),
		newCaseTransitionCmd(app, "reactivate", "Resume a paused case", service.CaseService.Reactivate),
		newCaseTransitionCmd(app, "conclude", "Conclude discipleship (all modules done)", service.CaseService.Conclude),
		newCaseTransitionCmd(app, "reset-contacts", "Clear the negative contact counter", service.CaseService.ResetContacts),
		newCaseTransitionCmd(app, "revoke-confra", "Undo a confraternização confirmation", service.CaseService.RevokeConfraternizacao),
		newCaseAssignCmd(app),
		newCaseConfirmCmd(app),
	)

	return cmd
}

func newCaseCreateCmd(app *App) *cobra.Command {
	var memberID, turno, assignee, confraID string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a case for a member",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mID, err := resolveMemberID(ctx, app, memberID)
			if err != nil {
				return err
			}
			req := service.CreateCaseRequest{
				CongregationID: app.Congregation,
				MemberID:       mID,
				TurnoOrigem:    turno,
				AssignedTo:     assignee,
			}
			if confraID != "" {
				if req.ConfraternizacaoID, err = resolveEventID(ctx, app, confraID); err != nil {
					return err
				}
			}

			c, err := app.Cases.Create(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created case %s %s\n", c.ID, formatter.CriticalityBadge(c.Criticality))
			return nil
		},
	}

	cmd.Flags().StringVar(&memberID, "member", "", "Member ID")
	cmd.Flags().StringVar(&turno, "turno", "", "Cohort tag, e.g. manha or noite")
	cmd.Flags().StringVar(&assignee, "assign", "", "Responsible person")
	cmd.Flags().StringVar(&confraID, "confra", "", "Confraternização ID (default: the active one)")
	_ = cmd.MarkFlagRequired("member")

	return cmd
}

func newCaseShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a case with its contacts and modules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveCaseID(ctx, app, args[0])
			if err != nil {
				return err
			}
			c, err := app.Cases.Get(ctx, app.Congregation, id)
			if err != nil {
				return err
			}

			detail := formatter.CaseDetail{Case: c, ModuleTitles: moduleTitles(ctx, app)}
			if detail.Member, err = app.Members.Get(ctx, app.Congregation, c.MemberID); err != nil {
				return err
			}
			if detail.Attempts, err = app.Attempts.ListByCase(ctx, app.Congregation, c.ID); err != nil {
				return err
			}
			if detail.Progress, err = app.Enrollments.ListByCase(ctx, app.Congregation, c.ID); err != nil {
				return err
			}
			detail.Event = linkedEvent(ctx, app, c)

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatCaseDetail(detail))
			return nil
		},
	}
}

// linkedEvent finds the case's confraternização among the congregation's
// events. A dangling link shows as none.
func linkedEvent(ctx context.Context, app *App, c *domain.Case) *domain.Confraternizacao {
	if c.ConfraternizacaoID == "" {
		return nil
	}
	events, err := app.Confras.List(ctx, app.Congregation)
	if err != nil {
		return nil
	}
	for _, e := range events {
		if e.ID == c.ConfraternizacaoID {
			return e
		}
	}
	return nil
}

func newCaseListCmd(app *App) *cobra.Command {
	var f repository.CaseFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			cases, err := app.Cases.List(cmd.Context(), app.Congregation, f)
			if err != nil {
				return err
			}
			if len(cases) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cases found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCaseList(cases))
			return nil
		},
	}

	phaseFlag(cmd.Flags(), &f.Phase)
	caseStatusFlag(cmd.Flags(), &f.Status)
	cmd.Flags().StringVar(&f.AssignedTo, "assigned", "", "Filter by responsible person")

	return cmd
}

func newCaseDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a case with its contact log and enrollments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveCaseID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Cases.Delete(ctx, app.Congregation, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted case %s\n", id)
			return nil
		},
	}
}

func newCaseStartCmd(app *App) *cobra.Command {
	var moduleID, actor string

	cmd := &cobra.Command{
		Use:   "start ID",
		Short: "Start discipleship in the given first module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveCaseID(ctx, app, args[0])
			if err != nil {
				return err
			}
			modID, err := resolveModuleID(ctx, app, moduleID)
			if err != nil {
				return err
			}
			c, err := app.Cases.StartDiscipulado(ctx, app.Congregation, id, modID, actor)
			if err != nil {
				return err
			}
			printCaseState(cmd.OutOrStdout(), "Started discipleship for", c)
			return nil
		},
	}

	cmd.Flags().StringVar(&moduleID, "module", "", "First module ID")
	cmd.Flags().StringVar(&actor, "by", "", "Who is enrolling")
	_ = cmd.MarkFlagRequired("module")

	return cmd
}

// caseTransition is a CaseService method expression taking only the case ID.
type caseTransition func(s service.CaseService, ctx context.Context, congregationID, caseID string) (*domain.Case, error)

func newCaseTransitionCmd(app *App, use, short string, do caseTransition) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveCaseID(ctx, app, args[0])
			if err != nil {
				return err
			}
			c, err := do(app.Cases, ctx, app.Congregation, id)
			if err != nil {
				return err
			}
			printCaseState(cmd.OutOrStdout(), "Updated", c)
			return nil
		},
	}
}

func newCaseAssignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "assign ID ASSIGNEE",
		Short: `Set the responsible person ("" clears it)`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveCaseID(ctx, app, args[0])
			if err != nil {
				return err
			}
			c, err := app.Cases.Assign(ctx, app.Congregation, id, args[1])
			if err != nil {
				return err
			}
			printCaseState(cmd.OutOrStdout(), "Assigned", c)
			return nil
		},
	}
}

func newCaseConfirmCmd(app *App) *cobra.Command {
	var confraID string

	cmd := &cobra.Command{
		Use:   "confirm-confra ID",
		Short: "Confirm the case for a confraternização",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveCaseID(ctx, app, args[0])
			if err != nil {
				return err
			}
			eventID := ""
			if confraID != "" {
				if eventID, err = resolveEventID(ctx, app, confraID); err != nil {
					return err
				}
			}
			c, err := app.Cases.ConfirmConfraternizacao(ctx, app.Congregation, id, eventID)
			if err != nil {
				return err
			}
			printCaseState(cmd.OutOrStdout(), "Confirmed", c)
			return nil
		},
	}

	cmd.Flags().StringVar(&confraID, "confra", "", "Confraternização ID (default: the active one)")

	return cmd
}

func printCaseState(w io.Writer, verb string, c *domain.Case) {
	fmt.Fprintf(w, "%s case %s: %s / %s %s\n",
		verb, c.ID, formatter.PhaseLabel(c.Phase), formatter.StatusPill(c.Status), formatter.CriticalityBadge(c.Criticality))
}
