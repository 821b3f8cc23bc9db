package commands

import (
	"github.com/spf13/cobra"

	"github.com/amirbrooks/plannersync/internal/printer"
	"github.com/amirbrooks/plannersync/internal/store"
)

var doneUndo bool

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task completed",
	Long: `Done completes a task, which also flips its status to the configured
done status. With --undo the task reopens on the default status.`,
	Args: exactArgs(1),
	RunE: runDone,
}

func init() {
	doneCmd.Flags().BoolVar(&doneUndo, "undo", false, "reopen the task")
	rootCmd.AddCommand(doneCmd)
}

func runDone(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	t, err := a.resolveTask(args[0])
	if err != nil {
		return err
	}

	completed := !doneUndo
	if err := a.store.Update(cmd.Context(), t.ID, store.Patch{Completed: &completed}); err != nil {
		return err
	}
	if doneUndo {
		printer.Success("reopened %s  %s", shortID(t.ID), t.Title)
	} else {
		printer.Success("completed %s  %s", shortID(t.ID), t.Title)
	}
	return nil
}
