package badger

import (
	"context"
	"time"

	"github.com/casewise/ontolink/core"
	"github.com/casewise/ontolink/storage"
	"github.com/dgraph-io/badger/v4"
)

// SectionRepository implements storage.SectionRepository for BadgerDB.
type SectionRepository struct {
	backend *Backend
}

var _ storage.SectionRepository = (*SectionRepository)(nil)

// NewSectionRepository creates a new SectionRepository.
func NewSectionRepository(backend *Backend) (*SectionRepository, error) {
	return &SectionRepository{
		backend: backend,
	}, nil
}

// Close releases resources. SectionRepository has no resources to release.
func (r *SectionRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *SectionRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddSections adds one or more sections to storage.
func (r *SectionRepository) AddSections(ctx context.Context, sections ...*core.Section) ([]*core.Section, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, section := range sections {
			// Use content-based ID if not set
			if section.Id == 0 {
				section.Id = core.IDFromContent(section.ContentKey())
			}

			// Set timestamps
			section.InsertedAt = time.Now().UTC().Truncate(time.Microsecond)
			section.UpdatedAt = section.InsertedAt

			key := makeSectionKey(section.Id)
			value := storage.MarshalSection(section)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return sections, err
}

// UpdateSections updates existing sections.
func (r *SectionRepository) UpdateSections(ctx context.Context, sections ...*core.Section) ([]*core.Section, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, section := range sections {
			key := makeSectionKey(section.Id)

			old, err := readSection(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			section.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

			value := storage.MarshalSection(section)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return sections, err
}

// DeleteSections removes sections by their IDs.
func (r *SectionRepository) DeleteSections(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeSectionKey(id)

			section, err := readSection(tx, key)
			if err != nil {
				return err
			}
			if section == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetSection retrieves a single section by ID.
func (r *SectionRepository) GetSection(ctx context.Context, id core.ID) (*core.Section, error) {
	var result *core.Section
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSectionKey(id)
		var err error
		result, err = readSection(tx, key)
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

// GetSections retrieves multiple sections by their IDs.
func (r *SectionRepository) GetSections(ctx context.Context, ids ...core.ID) ([]*core.Section, error) {
	var result []*core.Section
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeSectionKey(id)
			section, err := readSection(tx, key)
			if err != nil {
				return err
			}
			if section != nil {
				result = append(result, section)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetAllSections retrieves all sections from storage.
func (r *SectionRepository) GetAllSections(ctx context.Context) ([]*core.Section, error) {
	var results []*core.Section
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(sectionRecordPrefix + ":")
		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			item := iter.Item()
			key := item.Key()

			if !hasPrefix(key, prefix) {
				break
			}

			var section *core.Section
			err := item.Value(func(val []byte) error {
				var err error
				section, err = storage.UnmarshalSection(val)
				return err
			})
			if err != nil {
				return err
			}

			if section != nil {
				results = append(results, section)
			}
		}
		return nil
	}, false)

	return results, err
}

// readSection reads a section from the transaction.
func readSection(tx *badger.Txn, key []byte) (*core.Section, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var section *core.Section
	err = item.Value(func(val []byte) error {
		var err error
		section, err = storage.UnmarshalSection(val)
		return err
	})
	return section, err
}

// hasPrefix checks if a byte slice has a given prefix
func hasPrefix(s, prefix []byte) bool {
	return len(s) >= len(prefix) && string(s[:len(prefix)]) == string(prefix)
}
