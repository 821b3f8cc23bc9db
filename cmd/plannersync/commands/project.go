package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amirbrooks/plannersync/internal/notes"
	"github.com/amirbrooks/plannersync/internal/printer"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a project and its vault folder",
	Args:  exactArgs(1),
	RunE:  runProjectAdd,
}

var projectLsJSON bool

var projectLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List projects",
	Args:  exactArgs(0),
	RunE:  runProjectLs,
}

var projectUseCmd = &cobra.Command{
	Use:   "use <name-or-id>",
	Short: "Switch the active project",
	Args:  exactArgs(1),
	RunE:  runProjectUse,
}

func init() {
	projectLsCmd.Flags().BoolVar(&projectLsJSON, "json", false, "print projects as JSON")
	projectCmd.AddCommand(projectAddCmd, projectLsCmd, projectUseCmd)
	rootCmd.AddCommand(projectCmd)
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.store.EnsureProject(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	dir := notes.ProjectFolder(a.cfg.VaultPath, p.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	printer.Success("project %q (%s)", p.Name, p.ID)
	return nil
}

func runProjectLs(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	projects := a.store.Projects()
	activeID := a.store.ActiveProject()

	if projectLsJSON {
		type row struct {
			ID     string `json:"id"`
			Name   string `json:"name"`
			Active bool   `json:"active"`
			Tasks  int    `json:"tasks"`
		}
		rows := make([]row, 0, len(projects))
		for _, p := range projects {
			rows = append(rows, row{
				ID:     p.ID,
				Name:   p.Name,
				Active: p.ID == activeID,
				Tasks:  len(a.store.AllForProject(p.ID)),
			})
		}
		return outputJSON(cmd.OutOrStdout(), rows)
	}

	tw := newTabWriter(cmd.OutOrStdout())
	defer tw.Flush()
	fmt.Fprintln(tw, " \tID\tNAME\tTASKS")
	for _, p := range projects {
		marker := " "
		if p.ID == activeID {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", marker, p.ID, p.Name, len(a.store.AllForProject(p.ID)))
	}
	return nil
}

func runProjectUse(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.resolveProject(args[0])
	if err != nil {
		return err
	}
	if err := a.store.SetActiveProject(cmd.Context(), p.ID); err != nil {
		return err
	}
	dir := notes.ProjectFolder(a.cfg.VaultPath, p.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	printer.Success("active project is now %q", p.Name)
	return nil
}
