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
	"fmt"
	"time"
)

// Defaults for engine tunables. None of them is load-bearing; callers
// override per run through Options.
const (
	// DefaultTopK is the coarse-stage candidate count.
	DefaultTopK = 25

	// DefaultCandidateFloor is the minimum cosine similarity a concept needs
	// to survive the coarse stage.
	DefaultCandidateFloor = 0.3

	// DefaultAnalyzerShortlist is how many top candidates are sent for
	// qualitative judgment when the analyzer is enabled.
	DefaultAnalyzerShortlist = 10

	// DefaultAnalyzerTimeout bounds one analyzer call per section.
	DefaultAnalyzerTimeout = 30 * time.Second

	// DefaultUpsertRetries bounds retries on storage write conflicts.
	DefaultUpsertRetries = 3
)

// Weights holds the relative weight of each quantitative metric.
// They are renormalized over the metrics actually present for a pair, so
// they need not sum to one.
type Weights struct {
	Semantic   float64
	Structural float64
	Keyword    float64
}

// DefaultWeights returns the standard metric weighting.
func DefaultWeights() Weights {
	return Weights{
		Semantic:   0.5,
		Structural: 0.3,
		Keyword:    0.2,
	}
}

// Options holds the per-run tunables of the engine.
type Options struct {
	// TopK bounds the coarse-stage candidate list.
	TopK int

	// CandidateFloor is the minimum similarity for a candidate to be scored.
	CandidateFloor float64

	// Weights controls the quantitative metric fusion.
	Weights Weights

	// UseAnalyzer enables the qualitative judgment stage.
	UseAnalyzer bool

	// AnalyzerShortlist bounds how many candidates are judged per section.
	AnalyzerShortlist int

	// AnalyzerTimeout bounds one analyzer call. On expiry the section is
	// scored from the quantitative metrics alone.
	AnalyzerTimeout time.Duration
}

// DefaultOptions returns the standard engine configuration. The analyzer is
// off by default; it needs a reachable model endpoint.
func DefaultOptions() Options {
	return Options{
		TopK:              DefaultTopK,
		CandidateFloor:    DefaultCandidateFloor,
		Weights:           DefaultWeights(),
		UseAnalyzer:       false,
		AnalyzerShortlist: DefaultAnalyzerShortlist,
		AnalyzerTimeout:   DefaultAnalyzerTimeout,
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.TopK < 1 {
		return fmt.Errorf("%w: TopK must be positive, got %d", ErrInvalidOptions, o.TopK)
	}
	if o.CandidateFloor < 0 || o.CandidateFloor > 1 {
		return fmt.Errorf("%w: CandidateFloor must be in [0,1], got %f", ErrInvalidOptions, o.CandidateFloor)
	}
	if o.Weights.Semantic < 0 || o.Weights.Structural < 0 || o.Weights.Keyword < 0 {
		return fmt.Errorf("%w: weights must be non-negative", ErrInvalidOptions)
	}
	if o.Weights.Semantic+o.Weights.Structural+o.Weights.Keyword == 0 {
		return fmt.Errorf("%w: at least one weight must be positive", ErrInvalidOptions)
	}
	if o.UseAnalyzer {
		if o.AnalyzerShortlist < 1 {
			return fmt.Errorf("%w: AnalyzerShortlist must be positive, got %d", ErrInvalidOptions, o.AnalyzerShortlist)
		}
		if o.AnalyzerTimeout <= 0 {
			return fmt.Errorf("%w: AnalyzerTimeout must be positive", ErrInvalidOptions)
		}
	}
	return nil
}
