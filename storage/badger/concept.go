package badger

import (
	"context"
	"time"

	"github.com/casewise/ontolink/core"
	"github.com/casewise/ontolink/storage"
	"github.com/dgraph-io/badger/v4"
)

// ConceptRepository implements storage.ConceptRepository for BadgerDB.
type ConceptRepository struct {
	backend *Backend
}

var _ storage.ConceptRepository = (*ConceptRepository)(nil)

// NewConceptRepository creates a new ConceptRepository.
func NewConceptRepository(backend *Backend) (*ConceptRepository, error) {
	return &ConceptRepository{
		backend: backend,
	}, nil
}

// Close releases resources. ConceptRepository has no resources to release.
func (r *ConceptRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ConceptRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddConcepts adds one or more concepts to storage.
func (r *ConceptRepository) AddConcepts(ctx context.Context, concepts ...*core.Concept) ([]*core.Concept, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, concept := range concepts {
			// Use content-based ID if not set
			if concept.Id == 0 {
				concept.Id = core.IDFromContent(concept.URI)
			}

			// Set timestamps
			concept.InsertedAt = time.Now().UTC().Truncate(time.Microsecond)
			concept.UpdatedAt = concept.InsertedAt

			// Store primary record
			key := makeConceptKey(concept.Id)
			value := storage.MarshalConcept(concept)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Store URI index
			uriKey := makeConceptURIKey(concept.URI)
			if err := tx.Set(uriKey, storage.MarshalID(concept.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return concepts, err
}

// UpdateConcepts updates existing concepts.
func (r *ConceptRepository) UpdateConcepts(ctx context.Context, concepts ...*core.Concept) ([]*core.Concept, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, concept := range concepts {
			key := makeConceptKey(concept.Id)

			// Read old concept to detect changes
			old, err := readConcept(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			concept.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

			value := storage.MarshalConcept(concept)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update URI index if the URI changed
			if old.URI != concept.URI {
				if err := tx.Delete(makeConceptURIKey(old.URI)); err != nil {
					return err
				}
				if err := tx.Set(makeConceptURIKey(concept.URI), storage.MarshalID(concept.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return concepts, err
}

// DeleteConcepts removes concepts by their IDs.
func (r *ConceptRepository) DeleteConcepts(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeConceptKey(id)

			// Read concept to get metadata for index cleanup
			concept, err := readConcept(tx, key)
			if err != nil {
				return err
			}
			if concept == nil {
				return storage.ErrNotFound
			}

			// Delete from URI index
			if err := tx.Delete(makeConceptURIKey(concept.URI)); err != nil {
				return err
			}

			// Delete primary record
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetConcept retrieves a single concept by ID.
func (r *ConceptRepository) GetConcept(ctx context.Context, id core.ID) (*core.Concept, error) {
	var result *core.Concept
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeConceptKey(id)
		var err error
		result, err = readConcept(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetConceptByURI retrieves a single concept by its URI.
func (r *ConceptRepository) GetConceptByURI(ctx context.Context, uri string) (*core.Concept, error) {
	var result *core.Concept
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Look up ID from URI index
		item, err := tx.Get(makeConceptURIKey(uri))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var conceptID core.ID
		err = item.Value(func(val []byte) error {
			conceptID, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		// Look up full concept
		result, err = readConcept(tx, makeConceptKey(conceptID))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetConcepts retrieves multiple concepts by their IDs.
func (r *ConceptRepository) GetConcepts(ctx context.Context, ids ...core.ID) ([]*core.Concept, error) {
	var result []*core.Concept
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeConceptKey(id)
			concept, err := readConcept(tx, key)
			if err != nil {
				return err
			}
			if concept != nil {
				result = append(result, concept)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetAllConcepts retrieves all concepts from storage.
func (r *ConceptRepository) GetAllConcepts(ctx context.Context) ([]*core.Concept, error) {
	var results []*core.Concept
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(conceptRecordPrefix + ":")
		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			item := iter.Item()
			key := item.Key()

			if !hasPrefix(key, prefix) {
				break
			}

			var concept *core.Concept
			err := item.Value(func(val []byte) error {
				var err error
				concept, err = storage.UnmarshalConcept(val)
				return err
			})
			if err != nil {
				return err
			}

			if concept != nil {
				results = append(results, concept)
			}
		}
		return nil
	}, false)

	return results, err
}

// readConcept reads a concept from the transaction.
func readConcept(tx *badger.Txn, key []byte) (*core.Concept, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var concept *core.Concept
	err = item.Value(func(val []byte) error {
		var err error
		concept, err = storage.UnmarshalConcept(val)
		return err
	})
	return concept, err
}
