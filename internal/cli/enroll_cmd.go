package cli

import (
	"fmt"
	"io"

	"github.com/alexanderramin/discipulado/internal/cli/formatter"
	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/alexanderramin/discipulado/internal/service"
	"github.com/spf13/cobra"
)

func newEnrollCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Track module enrollment",
	}
	cmd.AddCommand(
		newEnrollAddCmd(app),
		newEnrollSetStatusCmd(app),
		newEnrollListCmd(app),
	)
	return cmd
}

func newEnrollAddCmd(app *App) *cobra.Command {
	var req service.EnrollRequest
	var moduleID string

	cmd := &cobra.Command{
		Use:   "add CASE",
		Short: "Enroll a case in a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var err error
			if req.CaseID, err = resolveCaseID(ctx, app, args[0]); err != nil {
				return err
			}
			if req.ModuleID, err = resolveModuleID(ctx, app, moduleID); err != nil {
				return err
			}
			req.CongregationID = app.Congregation

			res, err := app.Enrollments.Enroll(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Enrolled case %s in module %s (%s)\n",
				res.Case.ID, moduleID, res.Progress.Status)
			printReopened(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVar(&moduleID, "module", "", "Module ID")
	progressStatusFlag(cmd.Flags(), &req.Status)
	cmd.Flags().StringVar(&req.Turno, "turno", "", "Cohort tag for this enrollment")
	cmd.Flags().StringVar(&req.Actor, "by", "", "Who is enrolling")
	_ = cmd.MarkFlagRequired("module")

	return cmd
}

func newEnrollSetStatusCmd(app *App) *cobra.Command {
	var req service.SetModuleStatusRequest
	var moduleID string

	cmd := &cobra.Command{
		Use:   "set-status CASE",
		Short: "Update a case's status in one module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			caseID, err := resolveCaseID(ctx, app, args[0])
			if err != nil {
				return err
			}
			modID, err := resolveModuleID(ctx, app, moduleID)
			if err != nil {
				return err
			}
			rows, err := app.Enrollments.ListByCase(ctx, app.Congregation, caseID)
			if err != nil {
				return err
			}
			for _, r := range rows {
				if r.ModuleID == modID {
					req.ProgressID = r.ID
				}
			}
			if req.ProgressID == "" {
				return fmt.Errorf("case %s is not enrolled in module %s: %w", caseID, moduleID, domain.ErrNotFound)
			}

			req.CongregationID = app.Congregation
			res, err := app.Enrollments.SetModuleStatus(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Module %s is now %s\n", moduleID, res.Progress.Status)
			printReopened(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVar(&moduleID, "module", "", "Module ID")
	progressStatusFlag(cmd.Flags(), &req.Status)
	cmd.Flags().StringVar(&req.Actor, "by", "", "Who made the change")
	_ = cmd.MarkFlagRequired("module")
	_ = cmd.MarkFlagRequired("status")

	return cmd
}

func printReopened(w io.Writer, res *service.EnrollmentResult) {
	if res.Reopened {
		fmt.Fprintf(w, "Case %s reopened: back to %s\n", res.Case.ID, formatter.StatusPill(res.Case.Status))
	}
}

func newEnrollListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list CASE",
		Short: "Show a case's module progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveCaseID(ctx, app, args[0])
			if err != nil {
				return err
			}
			rows, err := app.Enrollments.ListByCase(ctx, app.Congregation, id)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Not enrolled in any module.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProgressList(rows, moduleTitles(ctx, app)))
			fmt.Fprintln(cmd.OutOrStdout(), formatter.RenderProgress(domain.Summarize(rows), 20))
			return nil
		},
	}
}
