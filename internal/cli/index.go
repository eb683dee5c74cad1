package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"scholar/config"
	"scholar/internal/adapter/analyzer"
	"scholar/internal/adapter/store"
	"scholar/internal/domain"
	"scholar/internal/usecase"
)

var indexBatchSize int

var indexCmd = &cobra.Command{
	Use:   "index <pattern>...",
	Short: "Index document files",
	Long: `Index JSON document files into the corpus. Each file holds either a
single document object or an array of documents. Patterns support ** globs.

Examples:
  scholar index papers.json
  scholar index "data/**/*.json"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().IntVar(&indexBatchSize, "batch-size", 0, "auto-commit threshold (default from config)")
}

func runIndex(cmd *cobra.Command, args []string) error {
	docs, err := loadDocumentFiles(args)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documents matched %v", args)
	}

	if err := config.EnsureDataDir(dataDir()); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.Open(dataDir(), logger)
	if err != nil {
		return fmt.Errorf("failed to open index store: %w", err)
	}

	indexer := newIndexer(st)
	bar := progressbar.Default(int64(len(docs)), "indexing")
	added, failed, err := indexer.BatchAdd(docs, func(done, total int) {
		bar.Set(done)
	})
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	bar.Finish()

	stats := indexer.Stats()
	fmt.Printf("Indexed %d documents (%d skipped)\n", added, failed)
	fmt.Printf("Corpus: %d documents, %d terms, %d postings\n",
		stats.Documents, stats.Terms, stats.Postings)
	return nil
}

func newIndexer(st *store.IndexStore) *usecase.DynamicIndexer {
	indexer := usecase.NewDynamicIndexer(st, analyzer.NewTokenizer(), logger).
		WithFieldLimits(usecase.FieldLimits{
			Title:      cfg.Index.MaxTitle,
			Authors:    cfg.Index.MaxAuthors,
			Categories: cfg.Index.MaxCategories,
			Abstract:   cfg.Index.MaxAbstract,
		})
	if indexBatchSize > 0 {
		indexer.WithBatchSize(indexBatchSize)
	} else if cfg.Index.BatchSize > 0 {
		indexer.WithBatchSize(cfg.Index.BatchSize)
	}
	return indexer
}

// loadDocumentFiles expands glob patterns and parses every matched JSON
// file. A file may hold one document or an array.
func loadDocumentFiles(patterns []string) ([]domain.Document, error) {
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			// Not a glob; treat as a literal path.
			if _, statErr := os.Stat(pattern); statErr == nil {
				matches = []string{pattern}
			}
		}
		paths = append(paths, matches...)
	}

	var docs []domain.Document
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var batch []domain.Document
		if err := json.Unmarshal(data, &batch); err != nil {
			var single domain.Document
			if err := json.Unmarshal(data, &single); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
			batch = []domain.Document{single}
		}
		docs = append(docs, batch...)
	}
	return docs, nil
}
