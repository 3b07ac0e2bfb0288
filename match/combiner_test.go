package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casewise/ontolink/core"
)

func TestCombine(t *testing.T) {
	weights := DefaultWeights()

	t.Run("all metrics present", func(t *testing.T) {
		signals := Signals{
			Semantic:           0.8,
			SemanticOK:         true,
			Structural:         1.0,
			StructuralDeclared: true,
			Keyword:            0.4,
			KeywordOK:          true,
		}

		confidence, reasoning, method := Combine(signals, weights)

		// 0.5*0.8 + 0.3*1.0 + 0.2*0.4
		assert.InDelta(t, 0.78, confidence, 1e-9)
		assert.Equal(t, MetricSemantic, reasoning.DominantMetric)
		assert.Equal(t, core.MethodHybrid, method)

		assert.InDelta(t, 0.40, reasoning.Contributions[MetricSemantic], 1e-9)
		assert.InDelta(t, 0.30, reasoning.Contributions[MetricStructural], 1e-9)
		assert.InDelta(t, 0.08, reasoning.Contributions[MetricKeyword], 1e-9)
	})

	t.Run("missing keyword renormalizes", func(t *testing.T) {
		signals := Signals{
			Semantic:   0.8,
			SemanticOK: true,
			Structural: 0.5,
		}

		confidence, _, method := Combine(signals, weights)

		// weights 0.5/0.3 renormalized over 0.8: 0.625*0.8 + 0.375*0.5
		assert.InDelta(t, 0.6875, confidence, 1e-9)
		assert.Equal(t, core.MethodEmbedding, method)
	})

	t.Run("structural only", func(t *testing.T) {
		signals := Signals{Structural: 0.25, StructuralDeclared: true}

		confidence, reasoning, method := Combine(signals, weights)

		assert.InDelta(t, 0.25, confidence, 1e-9)
		assert.Equal(t, MetricStructural, reasoning.DominantMetric)
		assert.Equal(t, core.MethodHybrid, method)
	})

	t.Run("full agreement leaves score untouched", func(t *testing.T) {
		agreement := 1.0
		with := Signals{Semantic: 0.8, SemanticOK: true, Structural: 1.0, Agreement: &agreement}
		without := Signals{Semantic: 0.8, SemanticOK: true, Structural: 1.0}

		confWith, _, method := Combine(with, weights)
		confWithout, _, _ := Combine(without, weights)

		assert.InDelta(t, confWithout, confWith, 1e-9)
		assert.Equal(t, core.MethodLLMAssisted, method)
	})

	t.Run("full disagreement halves score", func(t *testing.T) {
		agreement := 0.0
		with := Signals{Semantic: 0.8, SemanticOK: true, Structural: 1.0, Agreement: &agreement}
		without := Signals{Semantic: 0.8, SemanticOK: true, Structural: 1.0}

		confWith, _, _ := Combine(with, weights)
		confWithout, _, _ := Combine(without, weights)

		assert.InDelta(t, confWithout/2, confWith, 1e-9)
	})

	t.Run("all-zero signals yield zero", func(t *testing.T) {
		signals := Signals{SemanticOK: true, KeywordOK: true}
		confidence, _, _ := Combine(signals, weights)
		assert.Zero(t, confidence)
	})

	t.Run("out-of-range inputs are clamped", func(t *testing.T) {
		signals := Signals{Semantic: 1.7, SemanticOK: true, Structural: 1.0}
		confidence, _, _ := Combine(signals, weights)
		assert.LessOrEqual(t, confidence, 1.0)
		assert.GreaterOrEqual(t, confidence, 0.0)
	})

	t.Run("deterministic", func(t *testing.T) {
		agreement := 0.7
		signals := Signals{
			Semantic: 0.61, SemanticOK: true,
			Structural: 0.25, StructuralDeclared: true,
			Keyword: 0.33, KeywordOK: true,
			Agreement: &agreement,
		}

		first, firstReasoning, _ := Combine(signals, weights)
		for i := 0; i < 10; i++ {
			again, againReasoning, _ := Combine(signals, weights)
			require.Equal(t, first, again)
			require.Equal(t, firstReasoning, againReasoning)
		}
	})
}

func TestOptionsValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, DefaultOptions().Validate())
	})

	t.Run("bad topK", func(t *testing.T) {
		o := DefaultOptions()
		o.TopK = 0
		assert.ErrorIs(t, o.Validate(), ErrInvalidOptions)
	})

	t.Run("bad floor", func(t *testing.T) {
		o := DefaultOptions()
		o.CandidateFloor = 1.5
		assert.ErrorIs(t, o.Validate(), ErrInvalidOptions)
	})

	t.Run("all-zero weights", func(t *testing.T) {
		o := DefaultOptions()
		o.Weights = Weights{}
		assert.ErrorIs(t, o.Validate(), ErrInvalidOptions)
	})

	t.Run("analyzer needs a timeout", func(t *testing.T) {
		o := DefaultOptions()
		o.UseAnalyzer = true
		o.AnalyzerTimeout = 0
		assert.ErrorIs(t, o.Validate(), ErrInvalidOptions)
	})
}
