package storage

import (
	"context"

	"github.com/casewise/ontolink/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// SectionRepository provides operations for managing document sections.
type SectionRepository interface {
	Repository

	// AddSections adds one or more sections to storage.
	// IDs are content-derived; adding a section whose content is already
	// stored overwrites the existing record (same ID, same content).
	// Sets InsertedAt timestamp if not already set.
	// Returns the sections with IDs and timestamps populated.
	AddSections(ctx context.Context, sections ...*core.Section) ([]*core.Section, error)

	// UpdateSections updates existing sections (typically the vector).
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any section doesn't exist.
	UpdateSections(ctx context.Context, sections ...*core.Section) ([]*core.Section, error)

	// DeleteSections removes sections by their IDs.
	// Returns ErrNotFound if any section doesn't exist. Associated
	// association rows are the AssociationRepository's responsibility;
	// the facade cascades the cleanup.
	DeleteSections(ctx context.Context, ids ...core.ID) error

	// GetSection retrieves a single section by ID.
	// Returns ErrNotFound if the section doesn't exist.
	GetSection(ctx context.Context, id core.ID) (*core.Section, error)

	// GetSections retrieves multiple sections by their IDs.
	// Returns only the sections that exist (no error for missing sections).
	GetSections(ctx context.Context, ids ...core.ID) ([]*core.Section, error)

	// GetAllSections retrieves all sections from storage.
	GetAllSections(ctx context.Context) ([]*core.Section, error)
}

// ConceptRepository provides operations for managing concepts.
type ConceptRepository interface {
	Repository

	// AddConcepts adds one or more concepts to storage.
	// Uses content-based IDs (IDFromContent of the URI).
	// Sets InsertedAt timestamp if not already set.
	// Returns the concepts with timestamps populated.
	AddConcepts(ctx context.Context, concepts ...*core.Concept) ([]*core.Concept, error)

	// UpdateConcepts updates existing concepts (typically the vector).
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any concept doesn't exist.
	UpdateConcepts(ctx context.Context, concepts ...*core.Concept) ([]*core.Concept, error)

	// DeleteConcepts removes concepts by their IDs.
	// Returns ErrNotFound if any concept doesn't exist.
	DeleteConcepts(ctx context.Context, ids ...core.ID) error

	// GetConcept retrieves a single concept by ID.
	// Returns ErrNotFound if the concept doesn't exist.
	GetConcept(ctx context.Context, id core.ID) (*core.Concept, error)

	// GetConceptByURI retrieves a single concept by its URI.
	// Returns ErrNotFound if the concept doesn't exist.
	GetConceptByURI(ctx context.Context, uri string) (*core.Concept, error)

	// GetConcepts retrieves multiple concepts by their IDs.
	// Returns only the concepts that exist (no error for missing concepts).
	GetConcepts(ctx context.Context, ids ...core.ID) ([]*core.Concept, error)

	// GetAllConcepts retrieves all concepts from storage.
	GetAllConcepts(ctx context.Context) ([]*core.Concept, error)
}

// AssociationRepository provides operations for managing section-concept
// associations. The (SectionId, ConceptId) pair is the unique key.
type AssociationRepository interface {
	Repository

	// UpsertAssociations writes associations, overwriting any existing row
	// for the same (section, concept) pair. CreatedAt is preserved from the
	// existing row; UpdatedAt is always refreshed (last writer wins).
	// Concurrent writers for the same pair serialize through the backend's
	// transaction conflict detection, surfaced as ErrConflict.
	UpsertAssociations(ctx context.Context, assocs ...*core.Association) ([]*core.Association, error)

	// GetAssociation retrieves one association by its composite key.
	// Returns ErrNotFound if it doesn't exist.
	GetAssociation(ctx context.Context, sectionID, conceptID core.ID) (*core.Association, error)

	// GetForSection returns all associations for a section with
	// OverallConfidence >= minConfidence, sorted by descending confidence,
	// ties broken by concept URI.
	GetForSection(ctx context.Context, sectionID core.ID, minConfidence float64) ([]*core.Association, error)

	// GetForConcept returns all associations against a single concept with
	// OverallConfidence >= minConfidence, sorted by descending confidence.
	GetForConcept(ctx context.Context, conceptID core.ID, minConfidence float64) ([]*core.Association, error)

	// DeleteForSection removes every association referencing the section.
	// Missing rows are not an error.
	DeleteForSection(ctx context.Context, sectionID core.ID) error

	// DeleteForConcept removes every association referencing the concept.
	// Missing rows are not an error.
	DeleteForConcept(ctx context.Context, conceptID core.ID) error
}
