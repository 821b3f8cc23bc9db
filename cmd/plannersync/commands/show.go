package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one task in full",
	Args:  exactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print the task as JSON")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	t, err := a.resolveTask(args[0])
	if err != nil {
		return err
	}

	if showJSON {
		return outputJSON(cmd.OutOrStdout(), t)
	}

	out := cmd.OutOrStdout()
	project, _ := a.store.ProjectOf(t.ID)

	fmt.Fprintf(out, "%s\n", t.Title)
	tw := newTabWriter(out)
	fmt.Fprintf(tw, "  id:\t%s\n", t.ID)
	fmt.Fprintf(tw, "  project:\t%s\n", project.Name)
	fmt.Fprintf(tw, "  status:\t%s\n", t.Status)
	fmt.Fprintf(tw, "  priority:\t%s\n", t.Priority)
	if t.StartDate != "" {
		fmt.Fprintf(tw, "  start:\t%s\n", t.StartDate)
	}
	if t.DueDate != "" {
		fmt.Fprintf(tw, "  due:\t%s\n", t.DueDate)
	}
	if t.ParentID != "" {
		parent := t.ParentID
		if pt, ok := a.store.Get(t.ParentID); ok {
			parent = fmt.Sprintf("%s (%s)", pt.Title, shortID(pt.ID))
		}
		fmt.Fprintf(tw, "  parent:\t%s\n", parent)
	}
	if len(t.Tags) > 0 {
		fmt.Fprintf(tw, "  tags:\t%v\n", t.Tags)
	}
	if t.CreatedAt != nil {
		fmt.Fprintf(tw, "  created:\t%s\n", t.CreatedAt.Format("2006-01-02 15:04"))
	}
	if t.ModifiedAt != nil {
		fmt.Fprintf(tw, "  modified:\t%s\n", t.ModifiedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush()

	if t.Description != "" {
		fmt.Fprintf(out, "\n%s\n", t.Description)
	}
	if len(t.Subtasks) > 0 {
		fmt.Fprintln(out, "\nSubtasks:")
		for _, st := range t.Subtasks {
			box := "[ ]"
			if st.Completed {
				box = "[x]"
			}
			fmt.Fprintf(out, "  %s %s\n", box, st.Title)
		}
	}
	if len(t.Dependencies) > 0 {
		fmt.Fprintln(out, "\nDepends on:")
		for _, d := range t.Dependencies {
			label := d.ID
			if dt, ok := a.store.Get(d.ID); ok {
				label = fmt.Sprintf("%s (%s)", dt.Title, shortID(dt.ID))
			}
			fmt.Fprintf(out, "  %s  %s\n", d.Type, label)
		}
	}
	if len(t.Links) > 0 {
		fmt.Fprintln(out, "\nLinks:")
		for _, l := range t.Links {
			if l.Title != "" {
				fmt.Fprintf(out, "  %s: %s (%s)\n", l.Kind, l.Title, l.Target)
			} else {
				fmt.Fprintf(out, "  %s: %s\n", l.Kind, l.Target)
			}
		}
	}
	return nil
}
