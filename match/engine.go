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
	"context"
	"errors"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/casewise/ontolink/ai"
	"github.com/casewise/ontolink/core"
	"github.com/casewise/ontolink/embed"
	"github.com/casewise/ontolink/hierarchy"
	"github.com/casewise/ontolink/storage"
	"github.com/panjf2000/ants/v2"
)

// Engine computes section-concept associations. A batch run loads the
// concept forest once, then fans per-section jobs out on a worker pool.
// Concept data is read-only during a run, so jobs share it without locking.
type Engine struct {
	sectionRepository     storage.SectionRepository
	conceptRepository     storage.ConceptRepository
	associationRepository storage.AssociationRepository
	embedder              ai.Embedder
	analyzer              ai.PatternAnalyzer
	pool                  *ants.Pool
	options               Options
	logger                *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithPoolSize sets the worker pool size for concurrent section processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			size = 1
		}
		if e.pool != nil {
			e.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		e.pool = pool
		return nil
	}
}

// WithOptions overrides the engine tunables.
func WithOptions(options Options) Option {
	return func(e *Engine) error {
		if err := options.Validate(); err != nil {
			return err
		}
		e.options = options
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a new association engine.
func NewEngine(
	sectionRepository storage.SectionRepository,
	conceptRepository storage.ConceptRepository,
	associationRepository storage.AssociationRepository,
	provider ai.Provider,
	opts ...Option,
) (*Engine, error) {
	if sectionRepository == nil {
		return nil, ErrSectionRepositoryRequired
	}
	if conceptRepository == nil {
		return nil, ErrConceptRepositoryRequired
	}
	if associationRepository == nil {
		return nil, ErrAssociationRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		sectionRepository:     sectionRepository,
		conceptRepository:     conceptRepository,
		associationRepository: associationRepository,
		embedder:              provider.Embedder(),
		analyzer:              provider.PatternAnalyzer(),
		pool:                  pool,
		options:               DefaultOptions(),
		logger:                slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(e); optErr != nil {
			e.Release()
			return nil, optErr
		}
	}
	e.logger = e.logger.With("component", "match")

	return e, nil
}

// Release releases the worker pool.
// The engine should not be used after calling Release.
func (e *Engine) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// ProcessSections recomputes associations for the given sections.
// Failures are per section: one bad section is recorded in the report and the
// rest of the batch continues. The returned error covers run-level problems
// only (empty concept store, inconsistent hierarchy).
func (e *Engine) ProcessSections(ctx context.Context, ids ...core.ID) (*Report, error) {
	concepts, graph, err := e.loadConcepts(ctx)
	if err != nil {
		return nil, err
	}

	report := newReport()
	e.logger.Info("association run starting",
		"run", report.RunId, "sections", len(ids), "concepts", graph.Len())

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		sectionID := id
		submitErr := e.pool.Submit(func() {
			defer wg.Done()
			if _, err := e.processSection(ctx, sectionID, concepts); err != nil {
				e.logger.Warn("section failed",
					"run", report.RunId, "section", sectionID, "err", err)
				report.addFailure(sectionID, err)
				return
			}
			report.addSuccess(sectionID)
		})
		if submitErr != nil {
			wg.Done()
			report.addFailure(sectionID, submitErr)
		}
	}
	wg.Wait()

	e.logger.Info("association run finished",
		"run", report.RunId, "succeeded", len(report.Succeeded), "failed", len(report.Failed))
	return report, nil
}

// ComputeAssociations recomputes and returns the associations for a single
// section. Recomputation is idempotent: unchanged inputs produce identical
// metric values, and the storage upsert preserves CreatedAt.
func (e *Engine) ComputeAssociations(ctx context.Context, sectionID core.ID) ([]*core.Association, error) {
	concepts, _, err := e.loadConcepts(ctx)
	if err != nil {
		return nil, err
	}
	return e.processSection(ctx, sectionID, concepts)
}

// loadConcepts reads the full concept store and validates it as a forest.
// Scoring against an inconsistent hierarchy would poison every result, so a
// cycle or orphan fails the whole run.
func (e *Engine) loadConcepts(ctx context.Context) ([]*core.Concept, *hierarchy.Graph, error) {
	concepts, err := e.conceptRepository.GetAllConcepts(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(concepts) == 0 {
		return nil, nil, ErrNoConcepts
	}

	graph, err := hierarchy.Load(concepts, hierarchy.WithLogger(e.logger))
	if err != nil {
		return nil, nil, err
	}
	return concepts, graph, nil
}

func (e *Engine) processSection(ctx context.Context, sectionID core.ID, concepts []*core.Concept) ([]*core.Association, error) {
	section, err := e.sectionRepository.GetSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	e.ensureVector(ctx, section)

	candidates := SelectCandidates(section, concepts, e.options.TopK, e.options.CandidateFloor)
	if len(candidates) == 0 {
		return nil, nil
	}

	agreements := e.judge(ctx, section, candidates)

	assocs := make([]*core.Association, 0, len(candidates))
	for _, cand := range candidates {
		concept := cand.Concept

		keyword, keywordOK := KeywordOverlap(section.Text, concept)
		signals := Signals{
			Semantic:           cand.Similarity,
			SemanticOK:         cand.Ranked,
			Structural:         StructuralRelevance(concept, section.Type),
			StructuralDeclared: len(concept.Affinities) > 0,
			Keyword:            keyword,
			KeywordOK:          keywordOK,
			Agreement:          agreements[concept.URI],
		}

		confidence, reasoning, method := Combine(signals, e.options.Weights)

		assoc := &core.Association{
			SectionId:           section.Id,
			ConceptId:           concept.Id,
			ConceptURI:          concept.URI,
			SemanticSimilarity:  clamp01(cand.Similarity),
			KeywordOverlap:      keyword,
			StructuralRelevance: signals.Structural,
			LLMAgreement:        signals.Agreement,
			OverallConfidence:   confidence,
			Reasoning:           reasoning,
			Method:              method,
		}
		if err := core.ValidateAssociation(assoc); err != nil {
			return nil, err
		}
		assocs = append(assocs, assoc)
	}

	if err := e.upsert(ctx, assocs); err != nil {
		return nil, err
	}
	return assocs, nil
}

// ensureVector embeds the section lazily if no vector is stored yet.
// Embedding failure is soft: the coarse selector falls back to its unranked
// path and quantitative scoring still runs.
func (e *Engine) ensureVector(ctx context.Context, section *core.Section) {
	if len(section.Vector) > 0 {
		return
	}

	vector, err := e.embedder.EmbedText(ctx, section.Text)
	if err != nil {
		e.logger.Warn("section embedding failed, scoring without vector",
			"section", section.Id, "err", err)
		return
	}
	section.Vector = embed.NormalizeVector(vector)

	if _, err := e.sectionRepository.UpdateSections(ctx, section); err != nil {
		e.logger.Warn("failed to persist section vector", "section", section.Id, "err", err)
	}
}

// judge runs the best-effort qualitative stage over the top of the candidate
// list. Any failure, including timeout, yields no judgments; the section is
// then scored from the quantitative metrics alone.
func (e *Engine) judge(ctx context.Context, section *core.Section, candidates []core.Candidate) map[string]*float64 {
	if !e.options.UseAnalyzer || e.analyzer == nil {
		return nil
	}

	shortlist := candidates
	if len(shortlist) > e.options.AnalyzerShortlist {
		shortlist = shortlist[:e.options.AnalyzerShortlist]
	}

	presented := make([]ai.CandidateConcept, len(shortlist))
	for i, cand := range shortlist {
		presented[i] = ai.CandidateConcept{
			URI:        cand.Concept.URI,
			Label:      cand.Concept.Label,
			Definition: strings.Join(cand.Concept.MatchingTerms, ", "),
		}
	}

	analyzeCtx, cancel := context.WithTimeout(ctx, e.options.AnalyzerTimeout)
	defer cancel()

	judgments, err := e.analyzer.Analyze(analyzeCtx, section.Text, presented)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrAnalyzerTimeout
		}
		e.logger.Warn("qualitative analysis unavailable, scoring without it",
			"section", section.Id, "err", err)
		return nil
	}

	agreements := make(map[string]*float64, len(judgments))
	for _, j := range judgments {
		agreement := clamp01(j.Agreement)
		agreements[j.URI] = &agreement
	}
	return agreements
}

// upsert writes the associations, retrying on transaction conflicts.
func (e *Engine) upsert(ctx context.Context, assocs []*core.Association) error {
	if len(assocs) == 0 {
		return nil
	}

	var err error
	for attempt := 1; attempt <= DefaultUpsertRetries; attempt++ {
		_, err = e.associationRepository.UpsertAssociations(ctx, assocs...)
		if err == nil || !errors.Is(err, storage.ErrConflict) {
			return err
		}
		e.logger.Debug("association upsert conflicted, retrying", "attempt", attempt)
	}
	return err
}
