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


package ontolink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/casewise/ontolink/ai"
	"github.com/casewise/ontolink/ai/openai"
	"github.com/casewise/ontolink/core"
	"github.com/casewise/ontolink/embed"
	"github.com/casewise/ontolink/hierarchy"
	"github.com/casewise/ontolink/match"
	"github.com/casewise/ontolink/storage"
	"github.com/casewise/ontolink/storage/badger"
)

// ErrConceptHasChildren is returned when deleting a concept that other
// concepts still name as parent. Delete leaves first; the hierarchy loader
// rejects orphans.
var ErrConceptHasChildren = errors.New("concept has child concepts")

// Database is the external interface: it wires the storage backend, the
// repositories, the AI provider, and the association engine together.
type Database struct {
	backend     *badger.Backend
	sectionRepo storage.SectionRepository
	conceptRepo storage.ConceptRepository
	assocRepo   storage.AssociationRepository
	provider    ai.Provider
	engine      *match.Engine
	logger      *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig   *ai.Config
	provider   ai.Provider
	inMemory   bool
	engineOpts match.Options
	logger     *slog.Logger
}

// WithAIConfig sets the AI endpoint configuration used to build the default
// openai-compatible provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider injects a pre-built AI provider, bypassing the default
// openai-compatible one. Intended for tests and offline runs.
func WithProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemory opens the storage backend in memory, without disk persistence.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithEngineOptions overrides the association engine tunables.
func WithEngineOptions(options match.Options) DatabaseOption {
	return func(o *databaseOptions) {
		o.engineOpts = options
	}
}

// WithDatabaseLogger sets a custom logger.
// Default is slog.Default().
func WithDatabaseLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewDatabase opens the database at filePath and wires all components.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig:   ai.DefaultConfig(),
		engineOpts: match.DefaultOptions(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	sectionRepo, err := badger.NewSectionRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	conceptRepo, err := badger.NewConceptRepository(backend)
	if err != nil {
		sectionRepo.Close()
		backend.Close()
		return nil, err
	}

	assocRepo, err := badger.NewAssociationRepository(backend)
	if err != nil {
		conceptRepo.Close()
		sectionRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			assocRepo.Close()
			conceptRepo.Close()
			sectionRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	engine, err := match.NewEngine(sectionRepo, conceptRepo, assocRepo, provider,
		match.WithOptions(options.engineOpts),
		match.WithLogger(options.logger),
	)
	if err != nil {
		provider.Close()
		assocRepo.Close()
		conceptRepo.Close()
		sectionRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:     backend,
		sectionRepo: sectionRepo,
		conceptRepo: conceptRepo,
		assocRepo:   assocRepo,
		provider:    provider,
		engine:      engine,
		logger:      options.logger,
	}, nil
}

// Close releases the engine, the AI provider, the repositories, and the
// storage backend.
func (db *Database) Close() error {
	db.engine.Release()

	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.assocRepo.Close(); err != nil {
		db.logger.Error("error closing association repository", "err", err)
		return err
	}
	if err := db.conceptRepo.Close(); err != nil {
		db.logger.Error("error closing concept repository", "err", err)
		return err
	}
	if err := db.sectionRepo.Close(); err != nil {
		db.logger.Error("error closing section repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// IngestSection validates and stores a section, returning its content-derived
// ID. Re-ingesting identical text of the same type returns the same ID
// without duplicating the record. Embedding runs synchronously but a
// failure is soft: the vector stays empty and the engine embeds lazily on
// first compute.
func (db *Database) IngestSection(ctx context.Context, text string, sectionType core.SectionType) (core.ID, error) {
	section := &core.Section{
		Text: text,
		Type: sectionType,
	}
	if err := core.ValidateSection(section); err != nil {
		return 0, err
	}

	added, err := db.sectionRepo.AddSections(ctx, section)
	if err != nil {
		return 0, err
	}
	section = added[0]

	if len(section.Vector) == 0 {
		vector, err := db.provider.Embedder().EmbedText(ctx, section.Text)
		if err != nil {
			db.logger.Warn("section embedding deferred", "section", section.Id, "err", err)
			return section.Id, nil
		}
		section.Vector = embed.NormalizeVector(vector)
		if _, err := db.sectionRepo.UpdateSections(ctx, section); err != nil {
			return 0, err
		}
	}

	return section.Id, nil
}

// IngestConcept validates and stores a concept, returning its URI-derived
// ID. The stored parent chain is walked first so an insert can never close a
// cycle; a parent URI that is not stored yet is accepted, since ontology
// exports load in arbitrary order, and the strict hierarchy loader enforces
// resolution at association time.
func (db *Database) IngestConcept(ctx context.Context, concept *core.Concept) (core.ID, error) {
	if err := core.ValidateConcept(concept); err != nil {
		return 0, err
	}

	visited := map[string]bool{concept.URI: true}
	parentURI := concept.ParentURI
	for parentURI != "" {
		if visited[parentURI] {
			return 0, fmt.Errorf("%w: via %s", hierarchy.ErrCycleDetected, parentURI)
		}
		visited[parentURI] = true

		parent, err := db.conceptRepo.GetConceptByURI(ctx, parentURI)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				break
			}
			return 0, err
		}
		parentURI = parent.ParentURI
	}

	added, err := db.conceptRepo.AddConcepts(ctx, concept)
	if err != nil {
		return 0, err
	}
	return added[0].Id, nil
}

// ComputeAssociations recomputes and returns the associations for one
// section.
func (db *Database) ComputeAssociations(ctx context.Context, sectionID core.ID) ([]*core.Association, error) {
	return db.engine.ComputeAssociations(ctx, sectionID)
}

// ProcessSections recomputes associations for a batch of sections, isolating
// per-section failures in the returned report.
func (db *Database) ProcessSections(ctx context.Context, ids ...core.ID) (*match.Report, error) {
	return db.engine.ProcessSections(ctx, ids...)
}

// GetAssociationsForSection returns a section's stored associations at or
// above minConfidence, strongest first.
func (db *Database) GetAssociationsForSection(ctx context.Context, sectionID core.ID, minConfidence float64) ([]*core.Association, error) {
	return db.assocRepo.GetForSection(ctx, sectionID, minConfidence)
}

// GetAssociationsForCategory returns associations against the named concept
// or any of its descendants, at or above minConfidence, strongest first.
func (db *Database) GetAssociationsForCategory(ctx context.Context, categoryURI string, minConfidence float64) ([]*core.Association, error) {
	concepts, err := db.conceptRepo.GetAllConcepts(ctx)
	if err != nil {
		return nil, err
	}

	graph, err := hierarchy.Load(concepts, hierarchy.WithLogger(db.logger))
	if err != nil {
		return nil, err
	}

	uris, err := graph.CategoryOf(categoryURI)
	if err != nil {
		return nil, err
	}

	var results []*core.Association
	for _, uri := range uris {
		concept := graph.Get(uri)
		assocs, err := db.assocRepo.GetForConcept(ctx, concept.Id, minConfidence)
		if err != nil {
			return nil, err
		}
		results = append(results, assocs...)
	}

	slices.SortFunc(results, func(a, b *core.Association) int {
		if a.OverallConfidence > b.OverallConfidence {
			return -1
		}
		if a.OverallConfidence < b.OverallConfidence {
			return 1
		}
		return strings.Compare(a.ConceptURI, b.ConceptURI)
	})
	return results, nil
}

// DeleteSection removes a section and every association referencing it.
func (db *Database) DeleteSection(ctx context.Context, sectionID core.ID) error {
	if err := db.assocRepo.DeleteForSection(ctx, sectionID); err != nil {
		return err
	}
	return db.sectionRepo.DeleteSections(ctx, sectionID)
}

// DeleteConcept removes a concept and every association referencing it.
// Returns ErrConceptHasChildren if other concepts still name it as parent.
func (db *Database) DeleteConcept(ctx context.Context, conceptID core.ID) error {
	concept, err := db.conceptRepo.GetConcept(ctx, conceptID)
	if err != nil {
		return err
	}

	all, err := db.conceptRepo.GetAllConcepts(ctx)
	if err != nil {
		return err
	}
	for _, c := range all {
		if c.ParentURI == concept.URI {
			return fmt.Errorf("%w: %s <- %s", ErrConceptHasChildren, concept.URI, c.URI)
		}
	}

	if err := db.assocRepo.DeleteForConcept(ctx, conceptID); err != nil {
		return err
	}
	return db.conceptRepo.DeleteConcepts(ctx, conceptID)
}

// SectionRepository exposes the underlying section repository.
func (db *Database) SectionRepository() storage.SectionRepository {
	return db.sectionRepo
}

// ConceptRepository exposes the underlying concept repository.
func (db *Database) ConceptRepository() storage.ConceptRepository {
	return db.conceptRepo
}

// AssociationRepository exposes the underlying association repository.
func (db *Database) AssociationRepository() storage.AssociationRepository {
	return db.assocRepo
}

// NewEmbedRunner creates a concept embedding runner over this database.
func (db *Database) NewEmbedRunner(opts ...embed.RunnerOption) (*embed.Runner, error) {
	return embed.NewRunner(db.conceptRepo, db.provider.Embedder(), opts...)
}
