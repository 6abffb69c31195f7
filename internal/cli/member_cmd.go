package cli

import (
	"fmt"

	"github.com/alexanderramin/discipulado/internal/cli/formatter"
	"github.com/alexanderramin/discipulado/internal/service"
	"github.com/spf13/cobra"
)

func newMemberCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage members",
	}
	cmd.AddCommand(
		newMemberCreateCmd(app),
		newMemberListCmd(app),
	)
	return cmd
}

func newMemberCreateCmd(app *App) *cobra.Command {
	var req service.CreateMemberRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a member",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.CongregationID = app.Congregation
			m, err := app.Members.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created member %s (%s)\n", m.Name, m.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&req.Origem, "origem", "", `Where the member came from, e.g. "culto da manhã"`)
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newMemberListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List members",
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := app.Members.List(cmd.Context(), app.Congregation)
			if err != nil {
				return err
			}
			if len(members) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No members found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMembers(members))
			return nil
		},
	}
}
