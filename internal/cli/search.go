package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scholar/config"
	"scholar/internal/adapter/analyzer"
	"scholar/internal/adapter/cache"
	"scholar/internal/adapter/store"
	"scholar/internal/usecase"
)

var (
	searchQuery string
	searchMode  string
	searchTopK  int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the indexed corpus",
	Long: `Search indexed documents. Keyword mode ranks by field-weighted
TF-IDF, semantic mode by embedding similarity, hybrid blends both.

Examples:
  scholar search -q "machine learning"
  scholar search -q "transformers" -m hybrid -k 20 --json`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "search query (required)")
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", usecase.ModeKeyword, "search mode: keyword, semantic or hybrid")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.MarkFlagRequired("query")
}

func runSearch(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	results, err := engine.Search(searchQuery, searchMode, searchTopK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%2d. [%.4f] %s\n", i+1, r.Score, r.Title)
		if r.Authors != "" {
			fmt.Printf("    %s\n", r.Authors)
		}
		fmt.Printf("    id: %s\n", r.DocID)
		if r.Snippet != "" {
			fmt.Printf("    %s\n", r.Snippet)
		}
	}
	return nil
}

// newEngine opens the store and wires the search stack with the configured
// cache.
func newEngine() (*usecase.SearchEngine, error) {
	st, err := store.Open(dataDir(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open index store: %w", err)
	}

	var qc *cache.QueryCache
	if cfg.Search.CacheEnabled {
		qc, err = cache.Open(config.CacheDBPath(dataDir()), cfg.Search.CacheEntries, cfg.CacheTTL())
		if err != nil {
			logger.Warn("query cache unavailable, continuing without it", "error", err)
			qc = nil
		}
	}

	opts := usecase.SearchOptions{
		TopK:            cfg.Search.TopK,
		Alpha:           cfg.Search.Alpha,
		ProximityWeight: cfg.Search.ProximityWeight,
		CoverageWeight:  cfg.Search.CoverageWeight,
		SeedDocs:        cfg.Search.SeedDocs,
		Cache:           qc,
	}
	return usecase.NewSearchEngine(st, analyzer.NewTokenizer(), opts, logger), nil
}
