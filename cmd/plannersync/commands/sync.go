package commands

import (
	"github.com/spf13/cobra"

	"github.com/amirbrooks/plannersync/internal/printer"
	"github.com/amirbrooks/plannersync/internal/task"
)

var (
	syncProject     string
	syncAllProjects bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Scan vault folders and pull every task note",
	Long: `Sync walks a project's notes folder and pulls each note into the store,
the same scan the watcher runs on startup. It reads the vault only;
use push to write the store back out.`,
	Args: exactArgs(0),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncProject, "project", "", "project name or id (default: active)")
	syncCmd.Flags().BoolVar(&syncAllProjects, "all-projects", false, "scan every project")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	targets, err := a.syncTargets(syncProject, syncAllProjects)
	if err != nil {
		return err
	}
	for _, p := range targets {
		if err := a.sync.InitialSync(cmd.Context(), p.ID, p.Name); err != nil {
			return err
		}
		printer.Success("scanned %q, %d tasks in the store", p.Name, len(a.store.AllForProject(p.ID)))
	}
	return nil
}

// syncTargets resolves the --project / --all-projects pair shared by the
// sync and watch commands.
func (a *app) syncTargets(project string, all bool) ([]task.Project, error) {
	if all {
		return a.store.Projects(), nil
	}
	p, err := a.resolveProject(project)
	if err != nil {
		return nil, err
	}
	return []task.Project{p}, nil
}
