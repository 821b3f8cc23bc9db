package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/amirbrooks/plannersync/internal/printer"
	"github.com/amirbrooks/plannersync/internal/store"
)

var (
	addPriority string
	addDue      string
	addStart    string
	addDesc     string
	addTags     []string
	addParent   string
	addPush     bool
)

var addCmd = &cobra.Command{
	Use:   "add <title>...",
	Short: "Add a task to the active project",
	Long: `Add creates a task in the active project. Every word after the command
joins into the title, so quoting is optional:

  plannersync add Fix the login redirect --priority High --due 2026-09-01`,
	Args: minArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addPriority, "priority", "", "priority (Low, Medium, High, Urgent)")
	addCmd.Flags().StringVar(&addDue, "due", "", "due date, YYYY-MM-DD")
	addCmd.Flags().StringVar(&addStart, "start", "", "start date, YYYY-MM-DD")
	addCmd.Flags().StringVar(&addDesc, "desc", "", "description")
	addCmd.Flags().StringSliceVar(&addTags, "tags", nil, "comma separated tags")
	addCmd.Flags().StringVar(&addParent, "parent", "", "nest under this task id")
	addCmd.Flags().BoolVar(&addPush, "push", false, "write the vault note right away")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	t, err := a.store.Add(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	var p store.Patch
	patched := false
	if addPriority != "" {
		p.Priority, patched = &addPriority, true
	}
	if addDue != "" {
		p.DueDate, patched = &addDue, true
	}
	if addStart != "" {
		p.StartDate, patched = &addStart, true
	}
	if addDesc != "" {
		p.Description, patched = &addDesc, true
	}
	if len(addTags) > 0 {
		p.Tags, patched = &addTags, true
	}
	if patched {
		if err := a.store.Update(ctx, t.ID, p); err != nil {
			return err
		}
	}
	if addParent != "" {
		if _, ok := a.store.Get(addParent); !ok {
			return notFoundErr(addParent)
		}
		if err := a.store.MakeSubtask(ctx, t.ID, addParent); err != nil {
			return err
		}
	}

	if addPush {
		fresh, _ := a.store.Get(t.ID)
		project, _ := a.store.ProjectOf(t.ID)
		if err := a.sync.PushTask(ctx, fresh, project.Name); err != nil {
			return err
		}
	}

	printer.Success("added %s  %s", t.ID, t.Title)
	return nil
}
