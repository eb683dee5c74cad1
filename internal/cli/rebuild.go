package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"scholar/internal/adapter/store"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild barrel shards from the forward index",
	Long: `Rewrite every barrel shard from the forward index. This reconciles
shards left stale by document removals.`,
	RunE: runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(cmd *cobra.Command, args []string) error {
	st, err := store.Open(dataDir(), logger)
	if err != nil {
		return fmt.Errorf("failed to open index store: %w", err)
	}

	indexer := newIndexer(st)
	if err := indexer.RebuildBarrels(); err != nil {
		return err
	}
	if err := indexer.Commit(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	fmt.Println("Barrels rebuilt.")
	return nil
}
