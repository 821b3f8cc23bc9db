package commands

import (
	"github.com/spf13/cobra"

	"github.com/amirbrooks/plannersync/internal/notes"
	"github.com/amirbrooks/plannersync/internal/printer"
)

var rmKeepNote bool

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Delete a task",
	Long: `Rm deletes a task and removes its vault note. Direct subtasks move up
to the top level instead of being deleted with it.`,
	Args: exactArgs(1),
	RunE: runRm,
}

func init() {
	rmCmd.Flags().BoolVar(&rmKeepNote, "keep-note", false, "leave the vault note in place")
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	t, err := a.resolveTask(args[0])
	if err != nil {
		return err
	}
	project, _ := a.store.ProjectOf(t.ID)

	if err := a.store.Delete(cmd.Context(), t.ID); err != nil {
		return err
	}
	if !rmKeepNote {
		path := notes.TaskFilePath(a.cfg.VaultPath, project.Name, t.Title)
		if err := a.files.Remove(path); err != nil {
			a.logger.Warn("could not remove vault note", "path", path, "err", err)
		}
	}
	printer.Success("deleted %s  %s", shortID(t.ID), t.Title)
	return nil
}
