package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity scoring.
// Implementations must be thread-safe for concurrent use and must produce
// vectors of consistent dimensionality across calls, so section and concept
// embeddings are comparable by cosine similarity.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns ErrEmptyText (wrapped) for empty input and a wrapped
	// ErrEmbeddingFailed when the backend is unavailable.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// CandidateConcept is the analyzer's view of a shortlisted concept.
type CandidateConcept struct {
	// URI identifies the concept.
	URI string

	// Label is the human-readable concept name presented to the analyzer.
	Label string

	// Definition is optional supporting text (e.g. joined matching terms).
	Definition string
}

// Judgment is the analyzer's qualitative verdict for one candidate concept.
type Judgment struct {
	// URI names the judged concept.
	URI string

	// Agreement in [0,1] indicates how strongly the qualitative analysis
	// supports associating the section with the concept.
	Agreement float64

	// Explanation is the analyzer's free-text rationale.
	Explanation string
}

// PatternAnalyzer produces qualitative relevance judgments for a shortlist of
// candidate concepts against a section text. Implementations must be
// thread-safe for concurrent use.
//
// The analyzer stage is best-effort by contract: callers treat any error as
// "no judgment available" and fall back to quantitative-only scoring. An
// implementation should therefore report failures rather than guess.
type PatternAnalyzer interface {
	// Analyze judges each candidate against the section text.
	// The returned judgments may cover a subset of the candidates; missing
	// candidates are treated as having no judgment.
	Analyze(ctx context.Context, sectionText string, candidates []CandidateConcept) ([]Judgment, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages Embedder and PatternAnalyzer
// instances, ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// PatternAnalyzer returns the qualitative analysis service.
	// The returned PatternAnalyzer is safe for concurrent use.
	PatternAnalyzer() PatternAnalyzer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
