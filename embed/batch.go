package embed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/casewise/ontolink/ai"
	"github.com/casewise/ontolink/core"
	"github.com/casewise/ontolink/storage"
)

// BatchProcessor handles embedding generation for batches of concepts.
type BatchProcessor struct {
	repo           storage.ConceptRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.ConceptRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates embeddings for a batch of concepts and updates them in
// the database. Vectors are normalized after embedding to ensure
// compatibility with cosine similarity.
func (bp *BatchProcessor) Process(ctx context.Context, concepts []*core.Concept) error {
	if len(concepts) == 0 {
		return nil
	}

	texts := make([]string, len(concepts))
	for i, concept := range concepts {
		texts[i] = EmbeddingText(concept)
	}

	// Generate embeddings with retry
	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(concepts) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(concepts), len(embeddings))
	}

	// Normalize vectors and assign to concepts
	for i := range concepts {
		concepts[i].Vector = NormalizeVector(embeddings[i])
	}

	_, err = bp.repo.UpdateConcepts(ctx, concepts...)
	if err != nil {
		return fmt.Errorf("failed to update concepts: %w", err)
	}

	return nil
}

// EmbeddingText renders the text a concept is embedded from: its label plus
// its matching terms. Ontology exports rarely ship prose definitions, so the
// terms carry most of the lexical signal.
func EmbeddingText(concept *core.Concept) string {
	if len(concept.MatchingTerms) == 0 {
		return concept.Label
	}
	return concept.Label + ": " + strings.Join(concept.MatchingTerms, ", ")
}
