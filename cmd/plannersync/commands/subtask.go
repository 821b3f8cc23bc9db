package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amirbrooks/plannersync/internal/printer"
	"github.com/amirbrooks/plannersync/internal/store"
)

var subCmd = &cobra.Command{
	Use:   "sub",
	Short: "Nest and un-nest tasks",
}

var subMakeCmd = &cobra.Command{
	Use:   "make <id> <parent-id>",
	Short: "Nest a task under a parent",
	Args:  exactArgs(2),
	RunE:  runSubMake,
}

var subPromoteCmd = &cobra.Command{
	Use:   "promote <id>",
	Short: "Move a subtask back to the top level",
	Args:  exactArgs(1),
	RunE:  runSubPromote,
}

func init() {
	subCmd.AddCommand(subMakeCmd, subPromoteCmd)
	rootCmd.AddCommand(subCmd)
}

func runSubMake(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	t, err := a.resolveTask(args[0])
	if err != nil {
		return err
	}
	parent, err := a.resolveTask(args[1])
	if err != nil {
		return err
	}
	if t.ID == parent.ID {
		return fmt.Errorf("%w: a task cannot be its own parent", store.ErrInvalid)
	}
	tp, _ := a.store.ProjectOf(t.ID)
	pp, _ := a.store.ProjectOf(parent.ID)
	if tp.ID != pp.ID {
		return fmt.Errorf("%w: %s is in %q but %s is in %q, subtasks stay within one project",
			store.ErrInvalid, shortID(t.ID), tp.Name, shortID(parent.ID), pp.Name)
	}

	if err := a.store.MakeSubtask(cmd.Context(), t.ID, parent.ID); err != nil {
		return err
	}
	printer.Success("%s is now under %s", t.Title, parent.Title)
	return nil
}

func runSubPromote(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	t, err := a.resolveTask(args[0])
	if err != nil {
		return err
	}
	if err := a.store.PromoteSubtask(cmd.Context(), t.ID); err != nil {
		return err
	}
	printer.Success("%s is back at the top level", t.Title)
	return nil
}
