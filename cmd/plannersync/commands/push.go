package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amirbrooks/plannersync/internal/printer"
	"github.com/amirbrooks/plannersync/internal/store"
)

var (
	pushAll     bool
	pushProject string
)

var pushCmd = &cobra.Command{
	Use:   "push [id]",
	Short: "Write tasks out as vault notes",
	Long: `Push renders a task into its markdown note inside the vault. With --all
it writes every task of a project. Tasks that were just pulled from the
vault are skipped, so push and a running watcher do not feed each other.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPush,
}

func init() {
	pushCmd.Flags().BoolVar(&pushAll, "all", false, "push every task of the project")
	pushCmd.Flags().StringVar(&pushProject, "project", "", "project name or id (default: active)")
	rootCmd.AddCommand(pushCmd)
}

func runPush(cmd *cobra.Command, args []string) error {
	if pushAll == (len(args) == 1) {
		return fmt.Errorf("%w: pass a task id or --all, not both", store.ErrInvalid)
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()
	ctx := cmd.Context()

	if len(args) == 1 {
		t, err := a.resolveTask(args[0])
		if err != nil {
			return err
		}
		project, _ := a.store.ProjectOf(t.ID)
		if err := a.sync.PushTask(ctx, t, project.Name); err != nil {
			return err
		}
		printer.Success("pushed %s  %s", shortID(t.ID), t.Title)
		return nil
	}

	p, err := a.resolveProject(pushProject)
	if err != nil {
		return err
	}
	pushed := 0
	for _, t := range a.store.AllForProject(p.ID) {
		if err := a.sync.PushTask(ctx, t, p.Name); err != nil {
			return err
		}
		pushed++
	}
	printer.Success("pushed %d tasks to %q", pushed, p.Name)
	return nil
}
