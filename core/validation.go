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


package core

import "fmt"

// ValidateSection validates a Section according to domain rules.
//
// Validation rules:
//   - Text must not be empty and must not exceed MaxSectionTextLen
//   - Type must be a known SectionType
//
// NOT validated (populated by processors):
//   - Vector (can be empty until the embedder runs)
//   - ID (derived from content at ingestion)
func ValidateSection(section *Section) error {
	if section == nil {
		return fmt.Errorf("%w: section is nil", ErrInvalidSection)
	}

	if section.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSection, ErrEmptyText)
	}

	if len(section.Text) > MaxSectionTextLen {
		return fmt.Errorf("%w: %w (%d > %d)", ErrInvalidSection, ErrTextTooLong,
			len(section.Text), MaxSectionTextLen)
	}

	if err := ValidateSectionType(section.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSection, err)
	}

	return nil
}

// ValidateConcept validates a Concept according to domain rules.
//
// Validation rules:
//   - URI must not be empty
//   - Label must not be empty
//   - Kind must be a known ConceptKind
//   - ParentURI must not equal the concept's own URI
//
// Parent resolution and cycle detection across the full concept set are the
// hierarchy package's responsibility, not per-concept validation.
func ValidateConcept(concept *Concept) error {
	if concept == nil {
		return fmt.Errorf("%w: concept is nil", ErrInvalidConcept)
	}

	if concept.URI == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConcept, ErrEmptyConceptURI)
	}

	if concept.Label == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConcept, ErrEmptyConceptLabel)
	}

	if concept.Kind != ConceptKindClass && concept.Kind != ConceptKindIndividual {
		return fmt.Errorf("%w: %w: value %d", ErrInvalidConcept, ErrInvalidConceptKind, concept.Kind)
	}

	if concept.ParentURI != "" && concept.ParentURI == concept.URI {
		return fmt.Errorf("%w: %w: %s", ErrInvalidConcept, ErrSelfParent, concept.URI)
	}

	return nil
}

// ValidateSectionType validates that a SectionType has a valid value.
func ValidateSectionType(t SectionType) error {
	if t < SectionTypeFacts || t > SectionTypeQuestion {
		return fmt.Errorf("%w: value %d", ErrInvalidSectionType, t)
	}
	return nil
}

// ValidateAssociation validates an Association according to domain rules.
//
// Validation rules:
//   - SectionId and ConceptId must be set
//   - every metric, including LLMAgreement when present, must lie in [0,1]
//   - Method must be one of the recognized tags
func ValidateAssociation(assoc *Association) error {
	if assoc == nil {
		return fmt.Errorf("%w: association is nil", ErrInvalidAssociation)
	}

	if assoc.SectionId == 0 || assoc.ConceptId == 0 {
		return fmt.Errorf("%w: section and concept ids are required", ErrInvalidAssociation)
	}

	metrics := map[string]float64{
		"semantic_similarity":  assoc.SemanticSimilarity,
		"keyword_overlap":      assoc.KeywordOverlap,
		"structural_relevance": assoc.StructuralRelevance,
		"overall_confidence":   assoc.OverallConfidence,
	}
	for name, v := range metrics {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %w: %s=%f", ErrInvalidAssociation, ErrMetricOutOfRange, name, v)
		}
	}

	if assoc.LLMAgreement != nil && (*assoc.LLMAgreement < 0 || *assoc.LLMAgreement > 1) {
		return fmt.Errorf("%w: %w: llm_agreement=%f", ErrInvalidAssociation, ErrMetricOutOfRange, *assoc.LLMAgreement)
	}

	switch assoc.Method {
	case MethodEmbedding, MethodHybrid, MethodLLMAssisted:
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidAssociation, ErrInvalidMethod, assoc.Method)
	}

	return nil
}
