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

import "github.com/casewise/ontolink/core"

// Structural relevance levels. A concept that declares affinities is either
// a match or an explicit miss; a concept that declares nothing is neutral.
const (
	structuralMatch   = 1.0
	structuralMiss    = 0.25
	structuralNeutral = 0.5
)

// KeywordOverlap computes the Jaccard similarity between the section's token
// set and the token set of the concept's matching terms. The second return
// value is false when the concept declares no matching terms; the metric is
// then absent rather than zero, and the combiner renormalizes without it.
func KeywordOverlap(sectionText string, concept *core.Concept) (float64, bool) {
	if len(concept.MatchingTerms) == 0 {
		return 0, false
	}

	sectionSet := tokenSet(sectionText)
	termSet := tokenSet(concept.MatchingTerms...)
	if len(termSet) == 0 {
		return 0, false
	}
	if len(sectionSet) == 0 {
		return 0, true
	}

	intersection := 0
	for token := range termSet {
		if sectionSet[token] {
			intersection++
		}
	}
	union := len(sectionSet) + len(termSet) - intersection
	return float64(intersection) / float64(union), true
}

// StructuralRelevance scores how well the concept's declared section-type
// affinities fit the section's type.
func StructuralRelevance(concept *core.Concept, sectionType core.SectionType) float64 {
	if len(concept.Affinities) == 0 {
		return structuralNeutral
	}
	if concept.HasAffinity(sectionType) {
		return structuralMatch
	}
	return structuralMiss
}
