package badger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestStores bundles the repositories backed by a shared in-memory Backend.
// Intended for tests only.
type TestStores struct {
	Backend      *Backend
	Sections     *SectionRepository
	Concepts     *ConceptRepository
	Associations *AssociationRepository
}

// NewTestStores opens an in-memory backend and builds all repositories on
// top of it. Cleanup is registered on the test.
func NewTestStores(t *testing.T) *TestStores {
	t.Helper()

	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, backend.Close())
	})

	sections, err := NewSectionRepository(backend)
	require.NoError(t, err)

	concepts, err := NewConceptRepository(backend)
	require.NoError(t, err)

	assocs, err := NewAssociationRepository(backend)
	require.NoError(t, err)

	return &TestStores{
		Backend:      backend,
		Sections:     sections,
		Concepts:     concepts,
		Associations: assocs,
	}
}
