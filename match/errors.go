package match

import "errors"

var (
	// ErrSectionRepositoryRequired is returned when no section repository is provided.
	ErrSectionRepositoryRequired = errors.New("section repository is required")

	// ErrConceptRepositoryRequired is returned when no concept repository is provided.
	ErrConceptRepositoryRequired = errors.New("concept repository is required")

	// ErrAssociationRepositoryRequired is returned when no association repository is provided.
	ErrAssociationRepositoryRequired = errors.New("association repository is required")

	// ErrAIProviderRequired is returned when no AI provider is provided.
	ErrAIProviderRequired = errors.New("AI provider is required")

	// ErrNoConcepts is returned when a run is attempted against an empty
	// concept store.
	ErrNoConcepts = errors.New("no concepts available")

	// ErrAnalyzerTimeout marks a qualitative analysis that ran out of time.
	// It is soft: the engine logs it and scores without the judgment.
	ErrAnalyzerTimeout = errors.New("analyzer timed out")

	// ErrInvalidOptions is returned when engine options fail validation.
	ErrInvalidOptions = errors.New("invalid engine options")
)
