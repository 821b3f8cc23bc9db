package commands

import (
	"github.com/spf13/cobra"

	"github.com/amirbrooks/plannersync/internal/printer"
)

var orderCmd = &cobra.Command{
	Use:   "order <id>...",
	Short: "Reorder the active project's tasks",
	Long: `Order rewrites the active project's task order to match the given ids.
Ids the project does not contain are dropped, and tasks left unnamed
disappear from the board, so list the full set.`,
	Args: minArgs(1),
	RunE: runOrder,
}

func init() {
	rootCmd.AddCommand(orderCmd)
}

func runOrder(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	ids := make([]string, 0, len(args))
	for _, arg := range args {
		t, err := a.resolveTask(arg)
		if err != nil {
			return err
		}
		ids = append(ids, t.ID)
	}
	if err := a.store.SetOrder(cmd.Context(), ids); err != nil {
		return err
	}
	printer.Success("reordered %d tasks", len(ids))
	return nil
}
