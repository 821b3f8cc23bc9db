package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amirbrooks/plannersync/internal/printer"
)

var (
	watchProject     string
	watchAllProjects bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow vault edits until interrupted",
	Long: `Watch runs the startup scan and then stays in the foreground, pulling
every note edit, creation and deletion into the store as it happens.
Stop it with Ctrl-C.`,
	Args: exactArgs(0),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchProject, "project", "", "project name or id (default: active)")
	watchCmd.Flags().BoolVar(&watchAllProjects, "all-projects", false, "watch every project")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	targets, err := a.syncTargets(watchProject, watchAllProjects)
	if err != nil {
		return err
	}

	for _, p := range targets {
		if err := a.sync.InitialSync(ctx, p.ID, p.Name); err != nil {
			a.logger.Warn("startup scan failed", "project", p.Name, "err", err)
		}
		cancel, err := a.sync.Watch(ctx, p.ID, p.Name)
		if err != nil {
			return err
		}
		defer cancel()
		printer.Step("watching %q", p.Name)
	}

	unsubscribe := a.store.Subscribe(func() {
		a.logger.Debug("store changed")
	})
	defer unsubscribe()

	printer.Info("press Ctrl-C to stop")
	<-ctx.Done()
	printer.Info("stopped")
	return nil
}
