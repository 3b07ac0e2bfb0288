package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casewise/ontolink/core"
	"github.com/casewise/ontolink/storage"
)

func assoc(sectionID, conceptID core.ID, uri string, confidence float64) *core.Association {
	return &core.Association{
		SectionId:           sectionID,
		ConceptId:           conceptID,
		ConceptURI:          uri,
		SemanticSimilarity:  confidence,
		StructuralRelevance: 0.5,
		OverallConfidence:   confidence,
		Reasoning: core.Reasoning{
			DominantMetric: "semantic",
			Contributions:  map[string]float64{"semantic": confidence},
		},
		Method: core.MethodHybrid,
	}
}

func TestUpsertAssociations(t *testing.T) {
	ctx := context.Background()
	stores := NewTestStores(t)

	t.Run("upsert preserves CreatedAt and refreshes UpdatedAt", func(t *testing.T) {
		first, err := stores.Associations.UpsertAssociations(ctx, assoc(1, 10, "ont:A", 0.6))
		require.NoError(t, err)
		created := first[0].CreatedAt
		require.False(t, created.IsZero())

		second, err := stores.Associations.UpsertAssociations(ctx, assoc(1, 10, "ont:A", 0.9))
		require.NoError(t, err)

		assert.Equal(t, created, second[0].CreatedAt)
		assert.False(t, second[0].UpdatedAt.Before(created))

		stored, err := stores.Associations.GetAssociation(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 0.9, stored.OverallConfidence)
		assert.Equal(t, created, stored.CreatedAt)
	})

	t.Run("pair is unique", func(t *testing.T) {
		_, err := stores.Associations.UpsertAssociations(ctx, assoc(1, 10, "ont:A", 0.7))
		require.NoError(t, err)

		all, err := stores.Associations.GetForSection(ctx, 1, 0)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestGetAssociation(t *testing.T) {
	ctx := context.Background()
	stores := NewTestStores(t)

	_, err := stores.Associations.GetAssociation(ctx, 1, 2)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetForSection(t *testing.T) {
	ctx := context.Background()
	stores := NewTestStores(t)

	_, err := stores.Associations.UpsertAssociations(ctx,
		assoc(1, 10, "ont:Weak", 0.2),
		assoc(1, 11, "ont:Mid", 0.5),
		assoc(1, 12, "ont:Strong", 0.95),
		assoc(2, 10, "ont:Weak", 0.8), // different section
	)
	require.NoError(t, err)

	t.Run("sorted by descending confidence", func(t *testing.T) {
		results, err := stores.Associations.GetForSection(ctx, 1, 0)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "ont:Strong", results[0].ConceptURI)
		assert.Equal(t, "ont:Mid", results[1].ConceptURI)
		assert.Equal(t, "ont:Weak", results[2].ConceptURI)
	})

	t.Run("minConfidence filters", func(t *testing.T) {
		results, err := stores.Associations.GetForSection(ctx, 1, 0.9)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "ont:Strong", results[0].ConceptURI)
	})

	t.Run("ties break by URI", func(t *testing.T) {
		_, err := stores.Associations.UpsertAssociations(ctx,
			assoc(3, 20, "ont:Zeta", 0.5),
			assoc(3, 21, "ont:Alpha", 0.5),
		)
		require.NoError(t, err)

		results, err := stores.Associations.GetForSection(ctx, 3, 0)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "ont:Alpha", results[0].ConceptURI)
	})

	t.Run("unknown section yields empty", func(t *testing.T) {
		results, err := stores.Associations.GetForSection(ctx, 999, 0)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestGetForConcept(t *testing.T) {
	ctx := context.Background()
	stores := NewTestStores(t)

	_, err := stores.Associations.UpsertAssociations(ctx,
		assoc(1, 10, "ont:A", 0.4),
		assoc(2, 10, "ont:A", 0.9),
		assoc(3, 11, "ont:B", 0.7),
	)
	require.NoError(t, err)

	results, err := stores.Associations.GetForConcept(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, core.ID(2), results[0].SectionId)
	assert.Equal(t, core.ID(1), results[1].SectionId)

	filtered, err := stores.Associations.GetForConcept(ctx, 10, 0.5)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, core.ID(2), filtered[0].SectionId)
}

func TestDeleteAssociations(t *testing.T) {
	ctx := context.Background()

	t.Run("for section", func(t *testing.T) {
		stores := NewTestStores(t)
		_, err := stores.Associations.UpsertAssociations(ctx,
			assoc(1, 10, "ont:A", 0.4),
			assoc(1, 11, "ont:B", 0.5),
			assoc(2, 10, "ont:A", 0.6),
		)
		require.NoError(t, err)

		require.NoError(t, stores.Associations.DeleteForSection(ctx, 1))

		remaining, err := stores.Associations.GetForSection(ctx, 1, 0)
		require.NoError(t, err)
		assert.Empty(t, remaining)

		// the concept index must not reference the deleted section anymore
		byConcept, err := stores.Associations.GetForConcept(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, byConcept, 1)
		assert.Equal(t, core.ID(2), byConcept[0].SectionId)
	})

	t.Run("for concept", func(t *testing.T) {
		stores := NewTestStores(t)
		_, err := stores.Associations.UpsertAssociations(ctx,
			assoc(1, 10, "ont:A", 0.4),
			assoc(2, 10, "ont:A", 0.6),
			assoc(1, 11, "ont:B", 0.5),
		)
		require.NoError(t, err)

		require.NoError(t, stores.Associations.DeleteForConcept(ctx, 10))

		byConcept, err := stores.Associations.GetForConcept(ctx, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, byConcept)

		bySection, err := stores.Associations.GetForSection(ctx, 1, 0)
		require.NoError(t, err)
		require.Len(t, bySection, 1)
		assert.Equal(t, "ont:B", bySection[0].ConceptURI)
	})

	t.Run("missing rows are not an error", func(t *testing.T) {
		stores := NewTestStores(t)
		assert.NoError(t, stores.Associations.DeleteForSection(ctx, 42))
		assert.NoError(t, stores.Associations.DeleteForConcept(ctx, 42))
	})
}
