package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amirbrooks/plannersync/internal/printer"
	"github.com/amirbrooks/plannersync/internal/store"
)

var (
	updateTitle    string
	updateStatus   string
	updatePriority string
	updateDue      string
	updateStart    string
	updateDesc     string
	updateTags     []string
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields on a task",
	Long: `Update patches the given fields and leaves the rest alone. Passing an
empty value clears a field:

  plannersync update tsk_01H8 --due ""

Renaming a task also moves its vault note so links keep working.`,
	Args: exactArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "new title")
	updateCmd.Flags().StringVar(&updateStatus, "status", "", "status from the configured ladder")
	updateCmd.Flags().StringVar(&updatePriority, "priority", "", "priority (Low, Medium, High, Urgent)")
	updateCmd.Flags().StringVar(&updateDue, "due", "", "due date, YYYY-MM-DD")
	updateCmd.Flags().StringVar(&updateStart, "start", "", "start date, YYYY-MM-DD")
	updateCmd.Flags().StringVar(&updateDesc, "desc", "", "description")
	updateCmd.Flags().StringSliceVar(&updateTags, "tags", nil, "comma separated tags, replaces the set")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	old, err := a.resolveTask(args[0])
	if err != nil {
		return err
	}

	var p store.Patch
	patched := false
	flags := cmd.Flags()
	if flags.Changed("title") {
		p.Title, patched = &updateTitle, true
	}
	if flags.Changed("status") {
		if !a.cfg.KnownStatus(updateStatus) {
			return fmt.Errorf("%w: status %q is not one of %s",
				store.ErrInvalid, updateStatus, strings.Join(a.cfg.Statuses, ", "))
		}
		p.Status, patched = &updateStatus, true
	}
	if flags.Changed("priority") {
		p.Priority, patched = &updatePriority, true
	}
	if flags.Changed("due") {
		p.DueDate, patched = &updateDue, true
	}
	if flags.Changed("start") {
		p.StartDate, patched = &updateStart, true
	}
	if flags.Changed("desc") {
		p.Description, patched = &updateDesc, true
	}
	if flags.Changed("tags") {
		p.Tags, patched = &updateTags, true
	}
	if !patched {
		return fmt.Errorf("%w: nothing to update, pass at least one field flag", store.ErrInvalid)
	}

	ctx := cmd.Context()
	if err := a.store.Update(ctx, old.ID, p); err != nil {
		return err
	}

	if p.Title != nil && *p.Title != old.Title {
		project, _ := a.store.ProjectOf(old.ID)
		if err := a.sync.RenameNote(ctx, old.Title, *p.Title, project.Name); err != nil {
			a.logger.Warn("could not move vault note", "task", old.ID, "err", err)
		}
	}

	printer.Success("updated %s", old.ID)
	return nil
}
