// Package internalerr holds the sentinel errors shared by the revtopics
// packages. Callers match them with errors.Is; every site wraps them with
// context via fmt.Errorf("...: %w", err).
package internalerr

import "errors"

var (
	// ErrInvalidConfig covers bad topic-model parameters, unknown lexicon
	// formats, unparsable language tags and corpora too empty to sample.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidInput covers malformed records: bad lexicon lines, unknown
	// emotion categories, empty report ids, zero-sized matrices.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned by report stores for an unknown id.
	ErrNotFound = errors.New("report not found")

	// ErrStoreUnavailable is returned after Close, or when the engine has
	// no store configured.
	ErrStoreUnavailable = errors.New("report store unavailable")
)
