package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casewise/ontolink/core"
)

func TestKeywordOverlap(t *testing.T) {
	sectionText := "Engineers shall hold paramount the safety of the public."

	t.Run("partial overlap", func(t *testing.T) {
		concept := &core.Concept{MatchingTerms: []string{"safety", "public"}}

		overlap, ok := KeywordOverlap(sectionText, concept)
		require.True(t, ok)
		// section tokens: engineers, hold, paramount, safety, public
		// term tokens: safety, public -> intersection 2, union 5
		assert.InDelta(t, 0.4, overlap, 1e-9)
	})

	t.Run("no matching terms declared", func(t *testing.T) {
		concept := &core.Concept{}
		_, ok := KeywordOverlap(sectionText, concept)
		assert.False(t, ok)
	})

	t.Run("terms that are all stop words", func(t *testing.T) {
		concept := &core.Concept{MatchingTerms: []string{"the", "and"}}
		_, ok := KeywordOverlap(sectionText, concept)
		assert.False(t, ok)
	})

	t.Run("disjoint vocabularies", func(t *testing.T) {
		concept := &core.Concept{MatchingTerms: []string{"ledger", "audit"}}
		overlap, ok := KeywordOverlap(sectionText, concept)
		require.True(t, ok)
		assert.Zero(t, overlap)
	})

	t.Run("case and punctuation insensitive", func(t *testing.T) {
		concept := &core.Concept{MatchingTerms: []string{"SAFETY!", "Public"}}
		overlap, ok := KeywordOverlap(sectionText, concept)
		require.True(t, ok)
		assert.InDelta(t, 0.4, overlap, 1e-9)
	})
}

func TestStructuralRelevance(t *testing.T) {
	t.Run("declared and matching", func(t *testing.T) {
		concept := &core.Concept{Affinities: []core.SectionType{core.SectionTypeFacts}}
		assert.Equal(t, 1.0, StructuralRelevance(concept, core.SectionTypeFacts))
	})

	t.Run("declared and missing", func(t *testing.T) {
		concept := &core.Concept{Affinities: []core.SectionType{core.SectionTypeFacts}}
		assert.Equal(t, 0.25, StructuralRelevance(concept, core.SectionTypeQuestion))
	})

	t.Run("undeclared is neutral", func(t *testing.T) {
		concept := &core.Concept{}
		assert.Equal(t, 0.5, StructuralRelevance(concept, core.SectionTypeFacts))
	})
}
