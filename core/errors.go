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

import "errors"

// Domain validation errors
var (
	// ErrInvalidSection indicates a Section failed validation.
	ErrInvalidSection = errors.New("invalid section")

	// ErrInvalidConcept indicates a Concept failed validation.
	ErrInvalidConcept = errors.New("invalid concept")

	// ErrInvalidAssociation indicates an Association failed validation.
	ErrInvalidAssociation = errors.New("invalid association")

	// ErrEmptyText indicates the section Text field is empty.
	ErrEmptyText = errors.New("section text cannot be empty")

	// ErrTextTooLong indicates the section Text field exceeds MaxSectionTextLen.
	ErrTextTooLong = errors.New("section text exceeds maximum length")

	// ErrInvalidSectionType indicates an invalid SectionType value.
	ErrInvalidSectionType = errors.New("invalid section type")

	// ErrEmptyConceptURI indicates the concept URI field is empty.
	ErrEmptyConceptURI = errors.New("concept URI cannot be empty")

	// ErrEmptyConceptLabel indicates the concept Label field is empty.
	ErrEmptyConceptLabel = errors.New("concept label cannot be empty")

	// ErrInvalidConceptKind indicates an invalid ConceptKind value.
	ErrInvalidConceptKind = errors.New("invalid concept kind")

	// ErrSelfParent indicates a concept names itself as its parent.
	ErrSelfParent = errors.New("concept cannot be its own parent")

	// ErrMetricOutOfRange indicates a metric value outside [0,1].
	ErrMetricOutOfRange = errors.New("metric value out of [0,1] range")

	// ErrInvalidMethod indicates an unrecognized association method tag.
	ErrInvalidMethod = errors.New("invalid association method")
)
