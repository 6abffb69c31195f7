package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/discipulado/internal/cli/formatter"
	"github.com/alexanderramin/discipulado/internal/service"
	"github.com/spf13/cobra"
)

func newConfraCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confra",
		Short: "Manage confraternizações (fellowship events)",
	}
	cmd.AddCommand(
		newConfraCreateCmd(app),
		newConfraListCmd(app),
		newConfraActiveCmd(app),
		newConfraActivateCmd(app),
	)
	return cmd
}

func newConfraCreateCmd(app *App) *cobra.Command {
	var req service.CreateConfraRequest
	var date string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Schedule a confraternização",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := time.Parse(time.DateOnly, date)
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", date, err)
			}
			req.CongregationID = app.Congregation
			req.EventDate = d

			e, err := app.Confras.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created confraternização %s on %s (%s)\n",
				e.Title, formatter.CivilDate(e.EventDate), e.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "Event title")
	cmd.Flags().StringVar(&date, "date", "", "Event date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&req.Active, "active", false, "Make it the congregation's active event")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func newConfraListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List confraternizações",
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := app.Confras.List(cmd.Context(), app.Congregation)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No confraternizações found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEvents(events))
			return nil
		},
	}
}

func newConfraActiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "Show the event criticality counts down to",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.Confras.Active(cmd.Context(), app.Congregation)
			if err != nil {
				return err
			}
			if e == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No confraternização scheduled.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s on %s (%s)\n", e.Title, formatter.CivilDate(e.EventDate), e.ID)
			return nil
		},
	}
}

func newConfraActivateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "activate ID",
		Short: "Make an event active and relink open acolhimento cases to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveEventID(ctx, app, args[0])
			if err != nil {
				return err
			}
			e, err := app.Confras.SetActive(ctx, app.Congregation, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active confraternização: %s on %s\n", e.Title, formatter.CivilDate(e.EventDate))
			return nil
		},
	}
}
