package commands

import (
	"github.com/spf13/cobra"

	"github.com/amirbrooks/plannersync/internal/printer"
)

var collapseCmd = &cobra.Command{
	Use:   "collapse <id>",
	Short: "Fold or unfold a task's subtasks in listings",
	Args:  exactArgs(1),
	RunE:  runCollapse,
}

func init() {
	rootCmd.AddCommand(collapseCmd)
}

func runCollapse(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	t, err := a.resolveTask(args[0])
	if err != nil {
		return err
	}
	if err := a.store.ToggleCollapsed(cmd.Context(), t.ID); err != nil {
		return err
	}
	if after, ok := a.store.Get(t.ID); ok && after.Collapsed {
		printer.Success("collapsed %s", t.Title)
	} else {
		printer.Success("expanded %s", t.Title)
	}
	return nil
}
