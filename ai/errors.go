package ai

import "errors"

var (
	// ErrEmptyText indicates an embedding request for empty or blank input.
	ErrEmptyText = errors.New("cannot embed empty text")

	// ErrEmbeddingFailed indicates the embedding backend failed or is unavailable.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrAnalysisFailed indicates the pattern analyzer backend failed.
	// Callers degrade to quantitative-only scoring on this error.
	ErrAnalysisFailed = errors.New("pattern analysis failed")
)
