package embed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casewise/ontolink/ai/mock"
	"github.com/casewise/ontolink/core"
	"github.com/casewise/ontolink/storage/badger"
)

func seedConcepts(t *testing.T, stores *badger.TestStores, concepts ...*core.Concept) {
	t.Helper()
	_, err := stores.Concepts.AddConcepts(context.Background(), concepts...)
	require.NoError(t, err)
}

func TestRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("embeds pending and skips vectored", func(t *testing.T) {
		stores := badger.NewTestStores(t)
		seedConcepts(t, stores,
			&core.Concept{URI: "onto:A", Label: "Alpha", Kind: core.ConceptKindClass},
			&core.Concept{URI: "onto:B", Label: "Beta", Kind: core.ConceptKindClass, Vector: []float32{1, 0}},
		)

		runner, err := NewRunner(stores.Concepts, mock.NewMockEmbedder())
		require.NoError(t, err)

		embedded, skipped, err := runner.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, embedded)
		assert.Equal(t, 1, skipped)

		stored, err := stores.Concepts.GetConceptByURI(ctx, "onto:A")
		require.NoError(t, err)
		assert.NotEmpty(t, stored.Vector)

		// the pre-vectored concept is untouched
		stored, err = stores.Concepts.GetConceptByURI(ctx, "onto:B")
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 0}, stored.Vector)
	})

	t.Run("force re-embeds everything", func(t *testing.T) {
		stores := badger.NewTestStores(t)
		seedConcepts(t, stores,
			&core.Concept{URI: "onto:A", Label: "Alpha", Kind: core.ConceptKindClass, Vector: []float32{1, 0}},
		)

		runner, err := NewRunner(stores.Concepts, mock.NewMockEmbedder(), WithForce())
		require.NoError(t, err)

		embedded, skipped, err := runner.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, embedded)
		assert.Equal(t, 0, skipped)

		stored, err := stores.Concepts.GetConceptByURI(ctx, "onto:A")
		require.NoError(t, err)
		assert.NotEqual(t, []float32{1, 0}, stored.Vector)
	})

	t.Run("batches by size", func(t *testing.T) {
		stores := badger.NewTestStores(t)
		seedConcepts(t, stores,
			&core.Concept{URI: "onto:A", Label: "Alpha", Kind: core.ConceptKindClass},
			&core.Concept{URI: "onto:B", Label: "Beta", Kind: core.ConceptKindClass},
			&core.Concept{URI: "onto:C", Label: "Gamma", Kind: core.ConceptKindClass},
		)

		embedder := mock.NewMockEmbedder()
		var batchSizes []int
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			batchSizes = append(batchSizes, len(texts))
			vectors := make([][]float32, len(texts))
			for i := range texts {
				vectors[i] = []float32{1, 0}
			}
			return vectors, nil
		}

		runner, err := NewRunner(stores.Concepts, embedder, WithBatchSize(2))
		require.NoError(t, err)

		embedded, _, err := runner.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, embedded)
		assert.Equal(t, []int{2, 1}, batchSizes)
	})

	t.Run("batch failure keeps completed work", func(t *testing.T) {
		stores := badger.NewTestStores(t)
		seedConcepts(t, stores,
			&core.Concept{URI: "onto:A", Label: "Alpha", Kind: core.ConceptKindClass},
			&core.Concept{URI: "onto:B", Label: "Beta", Kind: core.ConceptKindClass},
		)

		embedder := mock.NewMockEmbedder()
		calls := 0
		apiErr := errors.New("rate limited")
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			calls++
			if calls > 1 {
				return nil, apiErr
			}
			return [][]float32{{0, 1}}, nil
		}

		runner, err := NewRunner(stores.Concepts, embedder, WithBatchSize(1), WithRetryPolicy(1, 0))
		require.NoError(t, err)

		embedded, _, err := runner.Run(ctx)
		assert.ErrorIs(t, err, apiErr)
		assert.Equal(t, 1, embedded)
	})

	t.Run("rejects missing dependencies", func(t *testing.T) {
		_, err := NewRunner(nil, mock.NewMockEmbedder())
		assert.ErrorIs(t, err, ErrConceptRepositoryRequired)

		stores := badger.NewTestStores(t)
		_, err = NewRunner(stores.Concepts, nil)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})
}

func TestBatchProcessor(t *testing.T) {
	ctx := context.Background()

	t.Run("count mismatch is an error", func(t *testing.T) {
		stores := badger.NewTestStores(t)
		seedConcepts(t, stores,
			&core.Concept{URI: "onto:A", Label: "Alpha", Kind: core.ConceptKindClass},
			&core.Concept{URI: "onto:B", Label: "Beta", Kind: core.ConceptKindClass},
		)
		concepts, err := stores.Concepts.GetAllConcepts(ctx)
		require.NoError(t, err)

		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{1, 0}}, nil
		}

		processor := NewBatchProcessor(stores.Concepts, embedder, 1, 0)
		err = processor.Process(ctx, concepts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mismatch")
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		processor := NewBatchProcessor(nil, nil, 1, 0)
		require.NoError(t, processor.Process(ctx, nil))
	})
}

func TestEmbeddingText(t *testing.T) {
	assert.Equal(t, "Alpha", EmbeddingText(&core.Concept{Label: "Alpha"}))
	assert.Equal(t, "Alpha: one, two", EmbeddingText(&core.Concept{
		Label:         "Alpha",
		MatchingTerms: []string{"one", "two"},
	}))
}
