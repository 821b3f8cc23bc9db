package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amirbrooks/plannersync/internal/printer"
	"github.com/amirbrooks/plannersync/internal/store"
	"github.com/amirbrooks/plannersync/internal/task"
)

var pullProject string

var pullCmd = &cobra.Command{
	Use:   "pull <file>",
	Short: "Read one vault note into the store",
	Long: `Pull parses a task note and upserts it. For files inside the vault the
project comes from the folder the note lives in; anywhere else pass
--project. Pulling into a project name the vault knows but the store
does not creates the project.`,
	Args: exactArgs(1),
	RunE: runPull,
}

func init() {
	pullCmd.Flags().StringVar(&pullProject, "project", "", "project name or id (default: from the note's folder)")
	rootCmd.AddCommand(pullCmd)
}

func runPull(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()
	ctx := cmd.Context()

	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	p, err := a.pullTarget(ctx, path)
	if err != nil {
		return err
	}
	if err := a.sync.PullFile(ctx, path, p.ID); err != nil {
		return err
	}
	printer.Success("pulled %s into %q", filepath.Base(path), p.Name)
	return nil
}

// pullTarget picks the project a note belongs to: the --project flag if
// given, otherwise the first folder under the vault root.
func (a *app) pullTarget(ctx context.Context, path string) (task.Project, error) {
	if pullProject != "" {
		return a.resolveProject(pullProject)
	}
	rel, err := filepath.Rel(a.cfg.VaultPath, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return task.Project{}, fmt.Errorf("%w: %s is outside the vault, pass --project", store.ErrInvalid, path)
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) < 2 {
		return task.Project{}, fmt.Errorf("%w: %s is not inside a project folder, pass --project", store.ErrInvalid, path)
	}
	return a.store.EnsureProject(ctx, parts[0])
}
