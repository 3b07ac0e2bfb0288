package ontolink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casewise/ontolink/ai/mock"
	"github.com/casewise/ontolink/core"
	"github.com/casewise/ontolink/hierarchy"
	"github.com/casewise/ontolink/match"
	"github.com/casewise/ontolink/storage"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()

	provider := mock.NewMockProvider()
	provider.(*mock.MockProvider).GetMockEmbedder().EmbedTextFunc =
		func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0}, nil
		}

	options := match.DefaultOptions()
	options.CandidateFloor = 0

	db, err := NewDatabase("",
		WithInMemory(),
		WithProvider(provider),
		WithEngineOptions(options),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	return db
}

// seedHierarchy stores a two-level concept tree and gives both concepts
// vectors, so the coarse selector ranks them instead of falling back.
func seedHierarchy(t *testing.T, db *Database) (rootID, leafID core.ID) {
	t.Helper()
	ctx := context.Background()

	rootID, err := db.IngestConcept(ctx, &core.Concept{
		URI:   "onto:Obligation",
		Label: "Obligation",
		Kind:  core.ConceptKindClass,
	})
	require.NoError(t, err)

	leafID, err = db.IngestConcept(ctx, &core.Concept{
		URI:           "onto:SafetyObligation",
		Label:         "Safety Obligation",
		Kind:          core.ConceptKindClass,
		ParentURI:     "onto:Obligation",
		MatchingTerms: []string{"safety", "public"},
		Affinities:    []core.SectionType{core.SectionTypeFacts},
	})
	require.NoError(t, err)

	concepts, err := db.ConceptRepository().GetConcepts(ctx, rootID, leafID)
	require.NoError(t, err)
	for _, concept := range concepts {
		switch concept.URI {
		case "onto:Obligation":
			concept.Vector = []float32{0.7, 0.7}
		case "onto:SafetyObligation":
			concept.Vector = []float32{1, 0}
		}
	}
	_, err = db.ConceptRepository().UpdateConcepts(ctx, concepts...)
	require.NoError(t, err)

	return rootID, leafID
}

func TestDatabaseIngestSection(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	id, err := db.IngestSection(ctx, "Engineers shall hold paramount the safety of the public.", core.SectionTypeFacts)
	require.NoError(t, err)
	assert.NotZero(t, id)

	// same content maps to the same id
	again, err := db.IngestSection(ctx, "Engineers shall hold paramount the safety of the public.", core.SectionTypeFacts)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	// the synchronous embed persisted a vector
	stored, err := db.SectionRepository().GetSection(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, stored.Vector)

	_, err = db.IngestSection(ctx, "", core.SectionTypeFacts)
	assert.ErrorIs(t, err, core.ErrEmptyText)
}

func TestDatabaseIngestConcept(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	t.Run("unresolved parent is accepted", func(t *testing.T) {
		id, err := db.IngestConcept(ctx, &core.Concept{
			URI:       "onto:Leaf",
			Label:     "Leaf",
			Kind:      core.ConceptKindClass,
			ParentURI: "onto:NotYetLoaded",
		})
		require.NoError(t, err)
		assert.Equal(t, core.IDFromContent("onto:Leaf"), id)
	})

	t.Run("insert closing a cycle is rejected", func(t *testing.T) {
		_, err := db.IngestConcept(ctx, &core.Concept{
			URI:       "onto:X",
			Label:     "X",
			Kind:      core.ConceptKindClass,
			ParentURI: "onto:Y",
		})
		require.NoError(t, err)

		_, err = db.IngestConcept(ctx, &core.Concept{
			URI:       "onto:Y",
			Label:     "Y",
			Kind:      core.ConceptKindClass,
			ParentURI: "onto:X",
		})
		assert.ErrorIs(t, err, hierarchy.ErrCycleDetected)
	})

	t.Run("invalid concept is rejected", func(t *testing.T) {
		_, err := db.IngestConcept(ctx, &core.Concept{
			URI:  "onto:NoLabel",
			Kind: core.ConceptKindClass,
		})
		assert.ErrorIs(t, err, core.ErrEmptyConceptLabel)
	})
}

func TestDatabaseAssociations(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	_, leafID := seedHierarchy(t, db)

	sectionID, err := db.IngestSection(ctx, "Engineers shall hold paramount the safety of the public.", core.SectionTypeFacts)
	require.NoError(t, err)

	computed, err := db.ComputeAssociations(ctx, sectionID)
	require.NoError(t, err)
	require.Len(t, computed, 2)

	// the term-matching, affinity-declaring leaf wins
	assert.Equal(t, "onto:SafetyObligation", computed[0].ConceptURI)
	assert.Equal(t, leafID, computed[0].ConceptId)
	assert.Greater(t, computed[0].OverallConfidence, computed[1].OverallConfidence)

	t.Run("stored and queryable by section", func(t *testing.T) {
		stored, err := db.GetAssociationsForSection(ctx, sectionID, 0)
		require.NoError(t, err)
		require.Len(t, stored, 2)
		assert.Equal(t, "onto:SafetyObligation", stored[0].ConceptURI)
	})

	t.Run("category query includes descendants", func(t *testing.T) {
		byCategory, err := db.GetAssociationsForCategory(ctx, "onto:Obligation", 0)
		require.NoError(t, err)
		assert.Len(t, byCategory, 2)

		byLeaf, err := db.GetAssociationsForCategory(ctx, "onto:SafetyObligation", 0)
		require.NoError(t, err)
		require.Len(t, byLeaf, 1)
		assert.Equal(t, sectionID, byLeaf[0].SectionId)
	})

	t.Run("unknown category fails", func(t *testing.T) {
		_, err := db.GetAssociationsForCategory(ctx, "onto:Nowhere", 0)
		assert.ErrorIs(t, err, hierarchy.ErrUnknownConcept)
	})

	t.Run("batch processing reports per-section outcomes", func(t *testing.T) {
		report, err := db.ProcessSections(ctx, sectionID, core.ID(424242))
		require.NoError(t, err)
		assert.Equal(t, []core.ID{sectionID}, report.Succeeded)
		require.Len(t, report.Failed, 1)
		assert.Equal(t, core.ID(424242), report.Failed[0].SectionId)
	})
}

func TestDatabaseDeletes(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	rootID, leafID := seedHierarchy(t, db)

	sectionID, err := db.IngestSection(ctx, "Engineers shall hold paramount the safety of the public.", core.SectionTypeFacts)
	require.NoError(t, err)
	_, err = db.ComputeAssociations(ctx, sectionID)
	require.NoError(t, err)

	t.Run("concept with children is protected", func(t *testing.T) {
		assert.ErrorIs(t, db.DeleteConcept(ctx, rootID), ErrConceptHasChildren)
	})

	t.Run("leaf delete cascades to its associations", func(t *testing.T) {
		require.NoError(t, db.DeleteConcept(ctx, leafID))

		remaining, err := db.GetAssociationsForSection(ctx, sectionID, 0)
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, "onto:Obligation", remaining[0].ConceptURI)
	})

	t.Run("section delete cascades", func(t *testing.T) {
		require.NoError(t, db.DeleteSection(ctx, sectionID))

		_, err := db.SectionRepository().GetSection(ctx, sectionID)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		remaining, err := db.GetAssociationsForSection(ctx, sectionID, 0)
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})

	t.Run("missing concept delete fails", func(t *testing.T) {
		assert.ErrorIs(t, db.DeleteConcept(ctx, core.ID(999)), storage.ErrNotFound)
	})
}
