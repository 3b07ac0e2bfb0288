package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionMUSRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	section := Section{
		Id:         IDFromContent("roundtrip"),
		Text:       "the firm disclosed the conflict of interest",
		Type:       SectionTypeFacts,
		Vector:     []float32{0.1, -0.5, 0.75},
		InsertedAt: now,
		UpdatedAt:  now.Add(time.Minute),
	}

	buf := make([]byte, SectionMUS.Size(section))
	n := SectionMUS.Marshal(section, buf)
	require.Equal(t, len(buf), n)

	got, n, err := SectionMUS.Unmarshal(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	assert.Equal(t, section, got)
}

func TestConceptMUSRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	concept := Concept{
		Id:            IDFromContent("ont:SafetyObligation"),
		URI:           "ont:SafetyObligation",
		Label:         "Safety Obligation",
		Kind:          ConceptKindClass,
		ParentURI:     "ont:Obligation",
		MatchingTerms: []string{"safety", "paramount", "public welfare"},
		Affinities:    []SectionType{SectionTypeFacts, SectionTypeConclusion},
		Vector:        []float32{0.3, 0.4},
		InsertedAt:    now,
		UpdatedAt:     now,
	}

	buf := make([]byte, ConceptMUS.Size(concept))
	ConceptMUS.Marshal(concept, buf)

	got, _, err := ConceptMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, concept, got)
}

func TestConceptMUSEmptySlices(t *testing.T) {
	concept := Concept{
		Id:    IDFromContent("ont:Root"),
		URI:   "ont:Root",
		Label: "Root",
		Kind:  ConceptKindClass,
	}

	buf := make([]byte, ConceptMUS.Size(concept))
	ConceptMUS.Marshal(concept, buf)

	got, _, err := ConceptMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Nil(t, got.MatchingTerms)
	assert.Nil(t, got.Affinities)
	assert.Nil(t, got.Vector)
}

func TestAssociationMUSRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	agreement := 0.85

	t.Run("with agreement", func(t *testing.T) {
		assoc := Association{
			SectionId:           10,
			ConceptId:           20,
			ConceptURI:          "ont:SafetyObligation",
			SemanticSimilarity:  0.72,
			KeywordOverlap:      0.31,
			StructuralRelevance: 1.0,
			LLMAgreement:        &agreement,
			OverallConfidence:   0.69,
			Reasoning: Reasoning{
				DominantMetric: "semantic",
				Contributions: map[string]float64{
					"semantic":   0.36,
					"structural": 0.3,
					"keyword":    0.06,
				},
				Summary: "semantic signal dominated",
			},
			Method:    MethodLLMAssisted,
			CreatedAt: now,
			UpdatedAt: now,
		}

		buf := make([]byte, AssociationMUS.Size(assoc))
		AssociationMUS.Marshal(assoc, buf)

		got, _, err := AssociationMUS.Unmarshal(buf)
		require.NoError(t, err)
		assert.Equal(t, assoc, got)
	})

	t.Run("nil agreement survives", func(t *testing.T) {
		assoc := Association{
			SectionId:         10,
			ConceptId:         20,
			ConceptURI:        "ont:Obligation",
			OverallConfidence: 0.4,
			Method:            MethodEmbedding,
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		buf := make([]byte, AssociationMUS.Size(assoc))
		AssociationMUS.Marshal(assoc, buf)

		got, _, err := AssociationMUS.Unmarshal(buf)
		require.NoError(t, err)
		assert.Nil(t, got.LLMAgreement)
	})
}

// Recomputing an association must store identical bytes, so the contribution
// map has to serialize in a fixed order regardless of Go map iteration.
func TestAssociationMUSDeterministic(t *testing.T) {
	assoc := Association{
		SectionId:  1,
		ConceptId:  2,
		ConceptURI: "ont:Obligation",
		Reasoning: Reasoning{
			DominantMetric: "semantic",
			Contributions: map[string]float64{
				"keyword":    0.1,
				"semantic":   0.5,
				"structural": 0.2,
			},
		},
		Method: MethodHybrid,
	}

	first := make([]byte, AssociationMUS.Size(assoc))
	AssociationMUS.Marshal(assoc, first)

	for i := 0; i < 20; i++ {
		again := make([]byte, AssociationMUS.Size(assoc))
		AssociationMUS.Marshal(assoc, again)
		require.Equal(t, first, again)
	}
}
