// Copyright 2026 Casewise Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package match

import (
	"fmt"

	"github.com/casewise/ontolink/core"
)

// Metric names used in Reasoning contributions.
const (
	MetricSemantic   = "semantic"
	MetricStructural = "structural"
	MetricKeyword    = "keyword"
)

// Signals carries the per-pair metric values handed to the combiner.
// Absent metrics (SemanticOK/KeywordOK false) are excluded from the fusion
// instead of counting as zero. Structural relevance is always computable.
type Signals struct {
	Semantic   float64
	SemanticOK bool

	Structural float64

	Keyword   float64
	KeywordOK bool

	// StructuralDeclared is true when the concept declares affinities, so the
	// structural score is an actual signal rather than the neutral default.
	StructuralDeclared bool

	// Agreement is the qualitative judgment, nil when none was available.
	Agreement *float64
}

// Combine fuses the signals into an overall confidence with an explanation.
//
// The weighted sum runs over the metrics present, with weights renormalized
// so missing metrics do not drag the score down. A qualitative agreement, if
// present, scales the quantitative score by 0.5+0.5*agreement: full agreement
// leaves it untouched, full disagreement halves it. The result is clamped to
// [0,1] and is deterministic for identical inputs.
func Combine(signals Signals, weights Weights) (float64, core.Reasoning, string) {
	type term struct {
		name   string
		value  float64
		weight float64
	}

	var terms []term
	if signals.SemanticOK {
		terms = append(terms, term{MetricSemantic, clamp01(signals.Semantic), weights.Semantic})
	}
	terms = append(terms, term{MetricStructural, clamp01(signals.Structural), weights.Structural})
	if signals.KeywordOK {
		terms = append(terms, term{MetricKeyword, clamp01(signals.Keyword), weights.Keyword})
	}

	var totalWeight float64
	for _, t := range terms {
		totalWeight += t.weight
	}

	contributions := make(map[string]float64, len(terms))
	var score float64
	if totalWeight > 0 {
		for _, t := range terms {
			contribution := (t.weight / totalWeight) * t.value
			contributions[t.name] = contribution
			score += contribution
		}
	} else {
		for _, t := range terms {
			contributions[t.name] = 0
		}
	}

	if signals.Agreement != nil {
		score *= 0.5 + 0.5*clamp01(*signals.Agreement)
	}
	score = clamp01(score)

	// Dominant metric: largest contribution, ties resolved by the fixed
	// semantic > structural > keyword order the terms were appended in.
	dominant := ""
	best := -1.0
	for _, t := range terms {
		if contributions[t.name] > best {
			best = contributions[t.name]
			dominant = t.name
		}
	}

	reasoning := core.Reasoning{
		DominantMetric: dominant,
		Contributions:  contributions,
		Summary:        buildSummary(signals, dominant),
	}

	return score, reasoning, methodFor(signals)
}

// methodFor picks the association method tag from the signals present.
func methodFor(signals Signals) string {
	if signals.Agreement != nil {
		return core.MethodLLMAssisted
	}
	if signals.KeywordOK || signals.StructuralDeclared {
		return core.MethodHybrid
	}
	return core.MethodEmbedding
}

func buildSummary(signals Signals, dominant string) string {
	summary := fmt.Sprintf("%s signal dominated", dominant)
	if signals.SemanticOK {
		summary += fmt.Sprintf("; semantic similarity %.2f", signals.Semantic)
	}
	summary += fmt.Sprintf("; structural fit %.2f", signals.Structural)
	if signals.KeywordOK {
		summary += fmt.Sprintf("; keyword overlap %.2f", signals.Keyword)
	}
	if signals.Agreement != nil {
		summary += fmt.Sprintf("; qualitative agreement %.2f", *signals.Agreement)
	}
	return summary
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
