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


package badger

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/casewise/ontolink/core"
	"github.com/casewise/ontolink/storage"
	"github.com/dgraph-io/badger/v4"
)

// AssociationRepository implements storage.AssociationRepository for BadgerDB.
//
// Associations are keyed by (sectionID, conceptID); a secondary index keyed
// by (conceptID, sectionID) serves concept-side and category queries.
type AssociationRepository struct {
	backend *Backend
}

var _ storage.AssociationRepository = (*AssociationRepository)(nil)

// NewAssociationRepository creates a new AssociationRepository.
func NewAssociationRepository(backend *Backend) (*AssociationRepository, error) {
	return &AssociationRepository{
		backend: backend,
	}, nil
}

// Close releases resources. AssociationRepository has no resources to release.
func (r *AssociationRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *AssociationRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// UpsertAssociations writes associations, overwriting any existing row for
// the same (section, concept) pair. CreatedAt is preserved from the existing
// row; UpdatedAt always reflects this write, so concurrent writers resolve
// last-writer-wins. Commit conflicts surface as storage.ErrConflict.
func (r *AssociationRepository) UpsertAssociations(ctx context.Context, assocs ...*core.Association) ([]*core.Association, error) {
	// Truncate to the codec's precision so returned and stored values agree.
	now := time.Now().UTC().Truncate(time.Microsecond)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, assoc := range assocs {
			key := makeAssociationKey(assoc.SectionId, assoc.ConceptId)

			old, err := readAssociation(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				assoc.CreatedAt = old.CreatedAt
			} else {
				assoc.CreatedAt = now
			}
			assoc.UpdatedAt = now

			value := storage.MarshalAssociation(assoc)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Maintain the concept-side index
			idxKey := makeAssocConceptIdxKey(assoc.ConceptId, assoc.SectionId)
			if err := tx.Set(idxKey, storage.MarshalID(assoc.SectionId)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return assocs, err
}

// GetAssociation retrieves one association by its composite key.
func (r *AssociationRepository) GetAssociation(ctx context.Context, sectionID, conceptID core.ID) (*core.Association, error) {
	var result *core.Association
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readAssociation(tx, makeAssociationKey(sectionID, conceptID))
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

// GetForSection returns a section's associations above the confidence floor,
// sorted by descending confidence, ties broken by concept URI.
func (r *AssociationRepository) GetForSection(ctx context.Context, sectionID core.ID, minConfidence float64) ([]*core.Association, error) {
	var results []*core.Association
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialAssociationKey(sectionID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			var assoc *core.Association
			err := item.Value(func(val []byte) error {
				var err error
				assoc, err = storage.UnmarshalAssociation(val)
				return err
			})
			if err != nil {
				return err
			}
			if assoc == nil || assoc.OverallConfidence < minConfidence {
				continue
			}
			results = append(results, assoc)
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	sortByConfidence(results)
	return results, nil
}

// GetForConcept returns associations against a single concept above the
// confidence floor, sorted by descending confidence.
func (r *AssociationRepository) GetForConcept(ctx context.Context, conceptID core.ID, minConfidence float64) ([]*core.Association, error) {
	var results []*core.Association
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		sectionIDs, err := r.sectionIDsForConcept(tx, conceptID)
		if err != nil {
			return err
		}

		for _, sectionID := range sectionIDs {
			assoc, err := readAssociation(tx, makeAssociationKey(sectionID, conceptID))
			if err != nil {
				return err
			}
			if assoc == nil || assoc.OverallConfidence < minConfidence {
				continue
			}
			results = append(results, assoc)
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	sortByConfidence(results)
	return results, nil
}

// DeleteForSection removes every association referencing the section.
func (r *AssociationRepository) DeleteForSection(ctx context.Context, sectionID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialAssociationKey(sectionID)
		iter := tx.NewIterator(opts)

		var keys [][]byte
		var conceptIDs []core.ID
		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			keys = append(keys, item.KeyCopy(nil))

			var assoc *core.Association
			err := item.Value(func(val []byte) error {
				var err error
				assoc, err = storage.UnmarshalAssociation(val)
				return err
			})
			if err != nil {
				iter.Close()
				return err
			}
			if assoc != nil {
				conceptIDs = append(conceptIDs, assoc.ConceptId)
			}
		}
		iter.Close()

		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		for _, conceptID := range conceptIDs {
			if err := tx.Delete(makeAssocConceptIdxKey(conceptID, sectionID)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteForConcept removes every association referencing the concept.
func (r *AssociationRepository) DeleteForConcept(ctx context.Context, conceptID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		sectionIDs, err := r.sectionIDsForConcept(tx, conceptID)
		if err != nil {
			return err
		}

		for _, sectionID := range sectionIDs {
			if err := tx.Delete(makeAssociationKey(sectionID, conceptID)); err != nil {
				return err
			}
			if err := tx.Delete(makeAssocConceptIdxKey(conceptID, sectionID)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// sectionIDsForConcept scans the concept-side index.
func (r *AssociationRepository) sectionIDsForConcept(tx *badger.Txn, conceptID core.ID) ([]core.ID, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makePartialAssocConceptIdxKey(conceptID)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var ids []core.ID
	for iter.Rewind(); iter.Valid(); iter.Next() {
		item := iter.Item()
		var sectionID core.ID
		err := item.Value(func(val []byte) error {
			var err error
			sectionID, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, sectionID)
	}
	return ids, nil
}

// sortByConfidence orders associations by descending confidence, ties broken
// by concept URI for deterministic output.
func sortByConfidence(assocs []*core.Association) {
	slices.SortFunc(assocs, func(a, b *core.Association) int {
		if a.OverallConfidence > b.OverallConfidence {
			return -1
		}
		if a.OverallConfidence < b.OverallConfidence {
			return 1
		}
		return strings.Compare(a.ConceptURI, b.ConceptURI)
	})
}

// readAssociation reads an association from the transaction.
func readAssociation(tx *badger.Txn, key []byte) (*core.Association, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var assoc *core.Association
	err = item.Value(func(val []byte) error {
		var err error
		assoc, err = storage.UnmarshalAssociation(val)
		return err
	})
	return assoc, err
}
