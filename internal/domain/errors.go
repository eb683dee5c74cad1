package domain

import "errors"

var (
	// ErrDuplicateDocument is returned when adding a document whose ID is
	// already present in the forward index.
	ErrDuplicateDocument = errors.New("document already indexed")

	// ErrNoIndexableContent is returned when tokenization yields no terms.
	ErrNoIndexableContent = errors.New("document has no indexable content")

	// ErrNotFound is returned for operations on an absent document ID.
	ErrNotFound = errors.New("document not found")
)
