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
	"slices"
	"strings"

	"github.com/casewise/ontolink/core"
	"github.com/casewise/ontolink/embed"
)

// SelectCandidates runs the coarse retrieval stage: cosine similarity between
// the section vector and every concept vector, keeping the topK concepts at
// or above the floor. Ties are broken by concept URI so output is stable.
//
// Fail-soft: when the section has no vector, or no concept does, ranking is
// impossible and the full concept list passes through unranked (Ranked=false)
// so the fine-grained metrics can still run.
func SelectCandidates(section *core.Section, concepts []*core.Concept, topK int, floor float64) []core.Candidate {
	candidates := make([]core.Candidate, 0, len(concepts))

	ranked := len(section.Vector) > 0
	if ranked {
		ranked = false
		for _, c := range concepts {
			if len(c.Vector) > 0 {
				ranked = true
				break
			}
		}
	}

	if !ranked {
		for _, c := range concepts {
			candidates = append(candidates, core.Candidate{Concept: c})
		}
		sortCandidates(candidates)
		return candidates
	}

	for _, c := range concepts {
		if len(c.Vector) == 0 {
			continue
		}
		sim := embed.CosineSimilarity(section.Vector, c.Vector)
		if sim < floor {
			continue
		}
		candidates = append(candidates, core.Candidate{
			Concept:    c,
			Similarity: sim,
			Ranked:     true,
		})
	}

	sortCandidates(candidates)
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates
}

// sortCandidates orders by descending similarity, ties broken by URI.
func sortCandidates(candidates []core.Candidate) {
	slices.SortFunc(candidates, func(a, b core.Candidate) int {
		if a.Similarity > b.Similarity {
			return -1
		}
		if a.Similarity < b.Similarity {
			return 1
		}
		return strings.Compare(a.Concept.URI, b.Concept.URI)
	})
}
