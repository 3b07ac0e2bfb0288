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


package embed

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/casewise/ontolink/ai"
	"github.com/casewise/ontolink/core"
	"github.com/casewise/ontolink/storage"
)

const (
	// DefaultBatchSize is the default number of concepts to embed per API call.
	DefaultBatchSize = 100

	// DefaultMaxRetries is the default retry budget per batch.
	DefaultMaxRetries = 3

	// DefaultRetryBaseDelay is the default base delay for exponential backoff.
	DefaultRetryBaseDelay = time.Second
)

// Runner backfills embedding vectors for stored concepts. Ontology seeds
// arrive without vectors; the runner embeds them in batches with retry and
// reports progress. Concepts that already carry a vector are skipped unless
// the runner is forced.
type Runner struct {
	repo      storage.ConceptRepository
	processor *BatchProcessor
	batchSize int
	force     bool
	progress  io.Writer
	logger    *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner) error

// WithBatchSize sets the number of concepts embedded per API call.
// Default is DefaultBatchSize.
func WithBatchSize(size int) RunnerOption {
	return func(r *Runner) error {
		if size > 0 {
			r.batchSize = size
		}
		return nil
	}
}

// WithForce re-embeds concepts even when a vector is already stored.
func WithForce() RunnerOption {
	return func(r *Runner) error {
		r.force = true
		return nil
	}
}

// WithRetryPolicy sets the per-batch retry budget and backoff base delay.
// Defaults are DefaultMaxRetries and DefaultRetryBaseDelay.
func WithRetryPolicy(maxRetries int, baseDelay time.Duration) RunnerOption {
	return func(r *Runner) error {
		if maxRetries <= 0 {
			return ErrInvalidMaxAttempts
		}
		r.processor.maxRetries = maxRetries
		r.processor.retryBaseDelay = baseDelay
		return nil
	}
}

// WithProgress writes progress output to w (typically os.Stderr).
// Default is no progress output.
func WithProgress(w io.Writer) RunnerOption {
	return func(r *Runner) error {
		r.progress = w
		return nil
	}
}

// WithRunnerLogger sets a custom logger.
// Default is slog.Default().
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRunner creates a concept embedding runner.
func NewRunner(repo storage.ConceptRepository, embedder ai.Embedder, opts ...RunnerOption) (*Runner, error) {
	if repo == nil {
		return nil, ErrConceptRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Runner{
		repo:      repo,
		processor: NewBatchProcessor(repo, embedder, DefaultMaxRetries, DefaultRetryBaseDelay),
		batchSize: DefaultBatchSize,
		progress:  io.Discard,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "embed")

	return r, nil
}

// Run embeds all pending concepts. Returns the number embedded and the
// number skipped. Iteration stops on the first batch failure; completed
// batches stay persisted, so a rerun picks up where this one stopped.
func (r *Runner) Run(ctx context.Context) (embedded, skipped int, err error) {
	concepts, err := r.repo.GetAllConcepts(ctx)
	if err != nil {
		return 0, 0, err
	}

	pending := make([]*core.Concept, 0, len(concepts))
	for _, concept := range concepts {
		if !r.force && len(concept.Vector) > 0 {
			skipped++
			continue
		}
		pending = append(pending, concept)
	}

	if len(pending) == 0 {
		r.logger.Info("no concepts to embed", "skipped", skipped)
		return 0, skipped, nil
	}

	tracker := NewProgressTracker(r.progress, len(pending), r.batchSize)
	tracker.Start()

	for i := 0; i < len(pending); i += r.batchSize {
		select {
		case <-ctx.Done():
			return embedded, skipped, ctx.Err()
		default:
		}

		end := i + r.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[i:end]

		if err := r.processor.Process(ctx, batch); err != nil {
			return embedded, skipped, err
		}
		embedded += len(batch)
		tracker.Increment(len(batch))
	}

	tracker.Finish()
	r.logger.Info("concept embedding complete",
		"embedded", embedded, "skipped", skipped, "elapsed", tracker.Elapsed())
	return embedded, skipped, nil
}
