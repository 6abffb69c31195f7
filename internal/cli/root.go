package cli

import (
	"errors"
	"time"

	"github.com/alexanderramin/discipulado/internal/notify"
	"github.com/alexanderramin/discipulado/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Members     service.MemberService
	Cases       service.CaseService
	Attempts    service.AttemptService
	Modules     service.ModuleService
	Enrollments service.EnrollmentService
	Confras     service.ConfraService
	Queue       service.QueueService

	// Notifier receives escalations raised by "attempt record". Nil drops them.
	Notifier notify.Notifier
	Log      *zap.Logger

	// Congregation is the default tenant; --congregation overrides it.
	Congregation string

	Now           func() time.Time
	IsInteractive func() bool
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) logger() *zap.Logger {
	if a.Log == nil {
		return zap.NewNop()
	}
	return a.Log
}

// NewRootCmd creates the top-level "discipulado" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "discipulado",
		Short:         "Acompanhamento de casos de acolhimento e discipulado",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Congregation == "" {
				return errors.New("no congregation selected: pass --congregation or set DISCIPULADO_CONGREGATION")
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&app.Congregation, "congregation", "c", app.Congregation, "Congregation ID")

	root.AddCommand(
		newMemberCmd(app),
		newCaseCmd(app),
		newAttemptCmd(app),
		newModuleCmd(app),
		newEnrollCmd(app),
		newConfraCmd(app),
		newQueueCmd(app),
		newBoardCmd(app),
	)

	return root
}
