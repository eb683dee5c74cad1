package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scholar/internal/adapter/store"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	st, err := store.Open(dataDir(), logger)
	if err != nil {
		return fmt.Errorf("failed to open index store: %w", err)
	}

	stats := st.Stats()
	if statsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}
	fmt.Printf("Documents:  %d\n", stats.Documents)
	fmt.Printf("Terms:      %d\n", stats.Terms)
	fmt.Printf("Postings:   %d\n", stats.Postings)
	fmt.Printf("Generation: %d\n", stats.Generation)
	if err := st.VerifyMirror(); err != nil {
		fmt.Printf("Mirror:     BROKEN (%v)\n", err)
		return nil
	}
	fmt.Println("Mirror:     ok")
	return nil
}
