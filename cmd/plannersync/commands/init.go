package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/amirbrooks/plannersync/internal/config"
	"github.com/amirbrooks/plannersync/internal/notes"
	"github.com/amirbrooks/plannersync/internal/printer"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold the config file, state file and vault folders",
	Long: `Init prepares a fresh workspace:

  • writes a commented config file to ~/.plannersync/ when none exists
  • creates the state file with a default "Personal" project
  • creates the vault folder tree for every known project

Everything is write-if-absent; running init twice changes nothing.`,
	Args: exactArgs(0),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := config.UserConfigPath()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(configPath, []byte(config.ExampleConfig()), 0o644); err != nil {
			return err
		}
		printer.Success("wrote config %s", configPath)
	} else {
		printer.Muted("config %s exists, left unchanged", configPath)
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	for _, p := range a.store.Projects() {
		dir := notes.ProjectFolder(a.cfg.VaultPath, p.Name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		printer.Success("vault folder %s", dir)
	}

	active, err := a.activeProject()
	if err != nil {
		return err
	}
	printer.Info("workspace ready, active project is %q", active.Name)
	return nil
}
