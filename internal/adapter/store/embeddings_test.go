package store

import (
	"path/filepath"
	"testing"
)

func writeEmbeddings(t *testing.T, path string, wire embeddingsWire) {
	t.Helper()
	if err := writeJSONAtomic(path, wire); err != nil {
		t.Fatal(err)
	}
}

func TestEmbeddingsMissingFile(t *testing.T) {
	m := NewEmbeddingMatrix(filepath.Join(t.TempDir(), EmbeddingsFile), nil)
	if m.Load() {
		t.Fatal("missing artifact reported as available")
	}
	if m.Mean([]string{"doc1"}) != nil {
		t.Error("mean over unavailable matrix not nil")
	}
}

func TestEmbeddingsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), EmbeddingsFile)
	writeEmbeddings(t, path, embeddingsWire{
		Dims:   2,
		DocIDs: []string{"doc1", "doc2"},
		Matrix: [][]float64{{1, 0}},
	})
	m := NewEmbeddingMatrix(path, nil)
	if m.Load() {
		t.Fatal("row/id mismatch reported as available")
	}
}

func TestEmbeddingsRaggedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), EmbeddingsFile)
	writeEmbeddings(t, path, embeddingsWire{
		Dims:   2,
		DocIDs: []string{"doc1", "doc2"},
		Matrix: [][]float64{{1, 0}, {0, 1, 5}},
	})
	m := NewEmbeddingMatrix(path, nil)
	if m.Load() {
		t.Fatal("ragged matrix reported as available")
	}
	if mean := m.Mean([]string{"doc1", "doc2"}); mean != nil {
		t.Fatalf("mean over rejected matrix = %v", mean)
	}
}

func TestEmbeddingsSimilarities(t *testing.T) {
	path := filepath.Join(t.TempDir(), EmbeddingsFile)
	writeEmbeddings(t, path, embeddingsWire{
		Dims:   2,
		DocIDs: []string{"doc1", "doc2"},
		Matrix: [][]float64{{1, 0}, {0, 1}},
	})
	m := NewEmbeddingMatrix(path, nil)
	if !m.Load() {
		t.Fatal("artifact not loaded")
	}

	mean := m.Mean([]string{"doc1", "ghost"})
	if mean == nil || mean[0] != 1 || mean[1] != 0 {
		t.Fatalf("mean = %v, want [1 0]", mean)
	}

	sims := m.Similarities(mean)
	if sims["doc1"] < 0.99 {
		t.Errorf("self similarity = %f", sims["doc1"])
	}
	if sims["doc2"] > 0.01 {
		t.Errorf("orthogonal similarity = %f", sims["doc2"])
	}
}
