package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casewise/ontolink/core"
)

func concept(uri, parent string) *core.Concept {
	return &core.Concept{
		Id:        core.IDFromContent(uri),
		URI:       uri,
		Label:     uri,
		Kind:      core.ConceptKindClass,
		ParentURI: parent,
	}
}

func TestLoad(t *testing.T) {
	t.Run("forest with two roots", func(t *testing.T) {
		g, err := Load([]*core.Concept{
			concept("ont:Obligation", ""),
			concept("ont:SafetyObligation", "ont:Obligation"),
			concept("ont:Virtue", ""),
		})
		require.NoError(t, err)
		assert.Equal(t, 3, g.Len())
		assert.ElementsMatch(t, []string{"ont:Obligation", "ont:Virtue"}, g.Roots())
	})

	t.Run("duplicate URI", func(t *testing.T) {
		_, err := Load([]*core.Concept{
			concept("ont:Obligation", ""),
			concept("ont:Obligation", ""),
		})
		assert.ErrorIs(t, err, ErrDuplicateURI)
	})

	t.Run("orphan parent is rejected by default", func(t *testing.T) {
		_, err := Load([]*core.Concept{
			concept("ont:SafetyObligation", "ont:Obligation"),
		})
		assert.ErrorIs(t, err, ErrOrphanParent)
	})

	t.Run("orphan parent becomes root when lenient", func(t *testing.T) {
		g, err := Load([]*core.Concept{
			concept("ont:SafetyObligation", "ont:Obligation"),
		}, WithOrphansAsRoots())
		require.NoError(t, err)
		assert.Equal(t, []string{"ont:SafetyObligation"}, g.Roots())
	})

	t.Run("cycle terminates with error", func(t *testing.T) {
		_, err := Load([]*core.Concept{
			concept("ont:A", "ont:C"),
			concept("ont:B", "ont:A"),
			concept("ont:C", "ont:B"),
		})
		assert.ErrorIs(t, err, ErrCycleDetected)
	})

	t.Run("empty URI", func(t *testing.T) {
		_, err := Load([]*core.Concept{concept("", "")})
		assert.ErrorIs(t, err, ErrInvalidGraph)
	})
}

func TestClosure(t *testing.T) {
	// Obligation -> SafetyObligation -> MandatorySafetyObligation
	//            -> DisclosureObligation
	g, err := Load([]*core.Concept{
		concept("ont:Obligation", ""),
		concept("ont:SafetyObligation", "ont:Obligation"),
		concept("ont:MandatorySafetyObligation", "ont:SafetyObligation"),
		concept("ont:DisclosureObligation", "ont:Obligation"),
	})
	require.NoError(t, err)

	t.Run("descendants at any depth", func(t *testing.T) {
		descendants, err := g.DescendantsOf("ont:Obligation")
		require.NoError(t, err)

		assert.Len(t, descendants, 3)
		assert.Contains(t, descendants, "ont:MandatorySafetyObligation")
		assert.NotContains(t, descendants, "ont:Obligation")
	})

	t.Run("leaf has no descendants", func(t *testing.T) {
		descendants, err := g.DescendantsOf("ont:MandatorySafetyObligation")
		require.NoError(t, err)
		assert.Empty(t, descendants)
	})

	t.Run("ancestors at any depth", func(t *testing.T) {
		ancestors, err := g.AncestorsOf("ont:MandatorySafetyObligation")
		require.NoError(t, err)

		assert.Len(t, ancestors, 2)
		assert.Contains(t, ancestors, "ont:Obligation")
		assert.Contains(t, ancestors, "ont:SafetyObligation")
	})

	t.Run("root has no ancestors", func(t *testing.T) {
		ancestors, err := g.AncestorsOf("ont:Obligation")
		require.NoError(t, err)
		assert.Empty(t, ancestors)
	})

	t.Run("category includes self", func(t *testing.T) {
		uris, err := g.CategoryOf("ont:SafetyObligation")
		require.NoError(t, err)
		assert.ElementsMatch(t,
			[]string{"ont:SafetyObligation", "ont:MandatorySafetyObligation"}, uris)
	})

	t.Run("unknown concept", func(t *testing.T) {
		_, err := g.DescendantsOf("ont:Nonexistent")
		assert.ErrorIs(t, err, ErrUnknownConcept)

		_, err = g.AncestorsOf("ont:Nonexistent")
		assert.ErrorIs(t, err, ErrUnknownConcept)
	})
}

func TestGetAndContains(t *testing.T) {
	g, err := Load([]*core.Concept{concept("ont:Obligation", "")})
	require.NoError(t, err)

	assert.True(t, g.Contains("ont:Obligation"))
	assert.False(t, g.Contains("ont:Virtue"))
	assert.NotNil(t, g.Get("ont:Obligation"))
	assert.Nil(t, g.Get("ont:Virtue"))
}
