package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var suggestLimit int

var suggestCmd = &cobra.Command{
	Use:   "suggest <prefix>",
	Short: "Autocomplete a search prefix",
	Long: `Suggest query completions for a prefix, most popular first.
Prefixes shorter than 2 characters yield nothing.

Examples:
  scholar suggest mach
  scholar suggest neur -n 5`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)
	suggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", 0, "maximum suggestions (default from config)")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	limit := cfg.Suggest.Limit
	if suggestLimit > 0 {
		limit = suggestLimit
	}
	for _, term := range engine.Suggest(args[0], limit) {
		fmt.Println(term)
	}
	return nil
}
