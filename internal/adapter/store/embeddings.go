package store

import (
	"fmt"
	"log/slog"
	"math"
)

// EmbeddingMatrix lazily loads the externally produced per-document
// embedding artifact: a vector matrix plus a parallel doc-id list. It is
// read-only and cached for the process lifetime once loaded.
type EmbeddingMatrix struct {
	path string
	log  *slog.Logger

	attempted bool
	available bool
	dims      int
	docIDs    []string
	vectors   [][]float64
	norms     []float64
	index     map[string]int
}

type embeddingsWire struct {
	Dims   int         `json:"dims"`
	DocIDs []string    `json:"doc_ids"`
	Matrix [][]float64 `json:"matrix"`
}

// WriteEmbeddingsArtifact persists an embedding matrix in the artifact
// format Load expects. docIDs and matrix rows are parallel.
func WriteEmbeddingsArtifact(path string, dims int, docIDs []string, matrix [][]float64) error {
	if len(docIDs) != len(matrix) {
		return fmt.Errorf("embeddings artifact: %d ids for %d rows", len(docIDs), len(matrix))
	}
	return writeJSONAtomic(path, embeddingsWire{Dims: dims, DocIDs: docIDs, Matrix: matrix})
}

// NewEmbeddingMatrix creates a lazy loader for the artifact at path.
func NewEmbeddingMatrix(path string, log *slog.Logger) *EmbeddingMatrix {
	if log == nil {
		log = slog.Default()
	}
	return &EmbeddingMatrix{path: path, log: log}
}

// Load reads the artifact on first call and reports availability. A missing
// or malformed artifact is not an error; semantic search degrades instead.
func (m *EmbeddingMatrix) Load() bool {
	if m.attempted {
		return m.available
	}
	m.attempted = true

	var wire embeddingsWire
	found, err := readJSONFile(m.path, &wire)
	if err != nil {
		m.log.Warn("embeddings artifact unreadable, semantic search disabled", "error", err)
		return false
	}
	if !found {
		return false
	}
	if len(wire.DocIDs) != len(wire.Matrix) {
		m.log.Warn("embeddings artifact malformed, semantic search disabled",
			"doc_ids", len(wire.DocIDs), "rows", len(wire.Matrix))
		return false
	}

	// Every row must share one dimensionality; a ragged matrix would index
	// out of range during mean and similarity math.
	dims := wire.Dims
	for i, vec := range wire.Matrix {
		if dims == 0 {
			dims = len(vec)
		}
		if len(vec) != dims {
			m.log.Warn("embeddings artifact has ragged rows, semantic search disabled",
				"row", i, "len", len(vec), "dims", dims)
			return false
		}
	}
	m.dims = dims
	m.docIDs = wire.DocIDs
	m.vectors = wire.Matrix
	m.norms = make([]float64, len(wire.Matrix))
	m.index = make(map[string]int, len(wire.DocIDs))
	for i, vec := range wire.Matrix {
		m.norms[i] = vectorNorm(vec)
		m.index[wire.DocIDs[i]] = i
	}
	m.available = true
	return true
}

// Has reports whether the document has an embedding. Load must have
// succeeded.
func (m *EmbeddingMatrix) Has(docID string) bool {
	_, ok := m.index[docID]
	return ok
}

// Mean returns the mean vector of the given documents' embeddings, skipping
// documents without one. Returns nil if none have embeddings.
func (m *EmbeddingMatrix) Mean(docIDs []string) []float64 {
	if !m.available {
		return nil
	}
	var mean []float64
	n := 0
	for _, id := range docIDs {
		row, ok := m.index[id]
		if !ok {
			continue
		}
		vec := m.vectors[row]
		if mean == nil {
			mean = make([]float64, len(vec))
		}
		for i, v := range vec {
			mean[i] += v
		}
		n++
	}
	if n == 0 {
		return nil
	}
	for i := range mean {
		mean[i] /= float64(n)
	}
	return mean
}

// Similarities returns the cosine similarity of query against every
// document vector, keyed by doc ID.
func (m *EmbeddingMatrix) Similarities(query []float64) map[string]float64 {
	if !m.available || len(query) == 0 {
		return nil
	}
	qnorm := vectorNorm(query)
	sims := make(map[string]float64, len(m.docIDs))
	for i, vec := range m.vectors {
		var dot float64
		n := len(vec)
		if len(query) < n {
			n = len(query)
		}
		for j := 0; j < n; j++ {
			dot += vec[j] * query[j]
		}
		sims[m.docIDs[i]] = dot / (m.norms[i]*qnorm + 1e-10)
	}
	return sims
}

// Unload drops the cached matrix; the next Load re-reads from disk.
func (m *EmbeddingMatrix) Unload() {
	m.attempted = false
	m.available = false
	m.dims = 0
	m.docIDs = nil
	m.vectors = nil
	m.norms = nil
	m.index = nil
}

func vectorNorm(vec []float64) float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// String describes the loaded artifact, for logs.
func (m *EmbeddingMatrix) String() string {
	if !m.available {
		return "embeddings: unavailable"
	}
	return fmt.Sprintf("embeddings: %d docs × %d dims", len(m.docIDs), m.dims)
}
