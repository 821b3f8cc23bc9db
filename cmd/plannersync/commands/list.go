package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amirbrooks/plannersync/internal/task"
)

var (
	lsProject string
	lsJSON    bool
	lsOpen    bool
)

var lsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List tasks in a project",
	Long: `Ls prints the tasks of the active project (or --project) in their
stored order, with subtasks nested under their parents. Collapsed
parents hide their children and show how many are folded away.`,
	Args: exactArgs(0),
	RunE: runLs,
}

func init() {
	lsCmd.Flags().StringVar(&lsProject, "project", "", "project name or id (default: active)")
	lsCmd.Flags().BoolVar(&lsJSON, "json", false, "print tasks as JSON")
	lsCmd.Flags().BoolVar(&lsOpen, "open", false, "hide completed tasks")
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.resolveProject(lsProject)
	if err != nil {
		return err
	}
	tasks := a.store.AllForProject(p.ID)
	if lsOpen {
		kept := tasks[:0]
		for _, t := range tasks {
			if !t.Completed {
				kept = append(kept, t)
			}
		}
		tasks = kept
	}

	if lsJSON {
		return outputJSON(cmd.OutOrStdout(), tasks)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d tasks)\n\n", p.Name, len(tasks))
	renderTree(cmd.OutOrStdout(), tasks)
	return nil
}

// renderTree prints tasks as an indented tree in bucket order. A task whose
// parent is missing from the listing renders at the root, same as the
// planner board does.
func renderTree(w io.Writer, tasks []task.Task) {
	ids := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		ids[t.ID] = true
	}
	children := make(map[string][]task.Task)
	var roots []task.Task
	for _, t := range tasks {
		if t.ParentID != "" && ids[t.ParentID] {
			children[t.ParentID] = append(children[t.ParentID], t)
		} else {
			roots = append(roots, t)
		}
	}

	tw := newTabWriter(w)
	defer tw.Flush()
	fmt.Fprintln(tw, " \tID\tTASK\tSTATUS\tPRIORITY\tDUE")

	var walk func(t task.Task, depth int)
	walk = func(t task.Task, depth int) {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		title := strings.Repeat("  ", depth) + t.Title
		if t.Collapsed && len(children[t.ID]) > 0 {
			title += fmt.Sprintf(" [+%d]", len(children[t.ID]))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			box, shortID(t.ID), title, t.Status, t.Priority, t.DueDate)
		if t.Collapsed {
			return
		}
		for _, c := range children[t.ID] {
			walk(c, depth+1)
		}
	}
	for _, t := range roots {
		walk(t, 0)
	}
}
