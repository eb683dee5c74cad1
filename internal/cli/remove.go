package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"scholar/internal/adapter/store"
)

var removeCmd = &cobra.Command{
	Use:   "remove <doc-id>...",
	Short: "Remove documents from the index",
	Long: `Remove documents by ID. Barrel shards keep stale entries until the
next rebuild; run 'scholar rebuild' to reconcile them.

Examples:
  scholar remove 2101.00001
  scholar remove 2101.00001 2101.00002`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	st, err := store.Open(dataDir(), logger)
	if err != nil {
		return fmt.Errorf("failed to open index store: %w", err)
	}

	indexer := newIndexer(st)
	removed := 0
	for _, id := range args {
		if err := indexer.Remove(id); err != nil {
			fmt.Printf("skip %s: %v\n", id, err)
			continue
		}
		removed++
	}
	if err := indexer.Commit(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	fmt.Printf("Removed %d of %d documents\n", removed, len(args))
	return nil
}
