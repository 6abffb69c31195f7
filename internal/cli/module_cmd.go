package cli

import (
	"fmt"

	"github.com/alexanderramin/discipulado/internal/cli/formatter"
	"github.com/alexanderramin/discipulado/internal/service"
	"github.com/spf13/cobra"
)

func newModuleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "module",
		Short: "Manage the discipleship curriculum",
	}
	cmd.AddCommand(
		newModuleCreateCmd(app),
		newModuleListCmd(app),
		newModuleActiveCmd(app, "activate", true),
		newModuleActiveCmd(app, "deactivate", false),
	)
	return cmd
}

func newModuleCreateCmd(app *App) *cobra.Command {
	var req service.CreateModuleRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a module",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.CongregationID = app.Congregation
			m, err := app.Modules.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created module %s (%s)\n", m.Title, m.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "Module title")
	cmd.Flags().IntVar(&req.SortOrder, "order", 0, "Position in the curriculum")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newModuleListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List modules in curriculum order",
		RunE: func(cmd *cobra.Command, args []string) error {
			modules, err := app.Modules.List(cmd.Context(), app.Congregation, !all)
			if err != nil {
				return err
			}
			if len(modules) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No modules found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatModules(modules))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include inactive modules")

	return cmd
}

func newModuleActiveCmd(app *App, use string, active bool) *cobra.Command {
	short := "Make a module available for enrollment"
	if !active {
		short = "Retire a module; existing enrollments are kept"
	}
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveModuleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			m, err := app.Modules.SetActive(ctx, app.Congregation, id, active)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Module %s active=%t\n", m.Title, m.Active)
			return nil
		},
	}
}
