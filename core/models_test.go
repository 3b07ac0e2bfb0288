package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		id1 := IDFromContent("engineers shall hold paramount the safety of the public")
		id2 := IDFromContent("engineers shall hold paramount the safety of the public")
		assert.Equal(t, id1, id2)
	})

	t.Run("different content yields different ids", func(t *testing.T) {
		id1 := IDFromContent("public safety")
		id2 := IDFromContent("public welfare")
		assert.NotEqual(t, id1, id2)
	})
}

func TestSectionContentKey(t *testing.T) {
	t.Run("same text different type is distinct", func(t *testing.T) {
		facts := &Section{Text: "the bridge load rating was exceeded", Type: SectionTypeFacts}
		analysis := &Section{Text: "the bridge load rating was exceeded", Type: SectionTypeAnalysis}

		require.NotEqual(t, facts.ContentKey(), analysis.ContentKey())
		assert.NotEqual(t, IDFromContent(facts.ContentKey()), IDFromContent(analysis.ContentKey()))
	})

	t.Run("identical sections share a key", func(t *testing.T) {
		a := &Section{Text: "identical", Type: SectionTypeDiscussion}
		b := &Section{Text: "identical", Type: SectionTypeDiscussion}
		assert.Equal(t, a.ContentKey(), b.ContentKey())
	})
}

func TestSectionTypeRoundTrip(t *testing.T) {
	types := []SectionType{
		SectionTypeFacts,
		SectionTypeDiscussion,
		SectionTypeAnalysis,
		SectionTypeConclusion,
		SectionTypeQuestion,
	}
	for _, typ := range types {
		t.Run(typ.String(), func(t *testing.T) {
			assert.Equal(t, typ, ParseSectionType(typ.String()))
		})
	}

	t.Run("unknown name", func(t *testing.T) {
		assert.Equal(t, SectionType(0), ParseSectionType("prologue"))
	})

	t.Run("unknown value", func(t *testing.T) {
		assert.Equal(t, "unknown", SectionType(42).String())
	})
}

func TestConceptHasAffinity(t *testing.T) {
	t.Run("declared match", func(t *testing.T) {
		c := &Concept{Affinities: []SectionType{SectionTypeFacts, SectionTypeAnalysis}}
		assert.True(t, c.HasAffinity(SectionTypeAnalysis))
		assert.False(t, c.HasAffinity(SectionTypeQuestion))
	})

	t.Run("undeclared is false for all types", func(t *testing.T) {
		c := &Concept{}
		assert.False(t, c.HasAffinity(SectionTypeFacts))
	})
}

func TestConceptIsRoot(t *testing.T) {
	assert.True(t, (&Concept{URI: "ont:Obligation"}).IsRoot())
	assert.False(t, (&Concept{URI: "ont:SafetyObligation", ParentURI: "ont:Obligation"}).IsRoot())
}
