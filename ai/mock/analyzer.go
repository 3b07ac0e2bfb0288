package mock

import (
	"context"
	"strings"

	"github.com/casewise/ontolink/ai"
)

// MockPatternAnalyzer is a test double for ai.PatternAnalyzer.
// It allows custom behavior injection via function fields.
type MockPatternAnalyzer struct {
	// AnalyzeFunc is called by Analyze if set.
	// If nil, uses default word-match behavior.
	AnalyzeFunc func(ctx context.Context, sectionText string, candidates []ai.CandidateConcept) ([]ai.Judgment, error)

	callCount int
}

// NewMockPatternAnalyzer creates a mock analyzer with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockAnalyzer().
func NewMockPatternAnalyzer() *MockPatternAnalyzer {
	return &MockPatternAnalyzer{}
}

// Analyze produces deterministic judgments for each candidate.
// Default behavior: agreement is the fraction of the candidate label's words
// that appear in the section text, so tests get stable, explainable values.
func (m *MockPatternAnalyzer) Analyze(ctx context.Context, sectionText string, candidates []ai.CandidateConcept) ([]ai.Judgment, error) {
	m.callCount++

	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, sectionText, candidates)
	}

	textWords := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(sectionText)) {
		textWords[strings.Trim(w, ".,!?;:\"'()[]{}")] = true
	}

	judgments := make([]ai.Judgment, 0, len(candidates))
	for _, c := range candidates {
		labelWords := strings.Fields(strings.ToLower(c.Label))
		matched := 0
		for _, w := range labelWords {
			if textWords[w] {
				matched++
			}
		}
		agreement := 0.0
		if len(labelWords) > 0 {
			agreement = float64(matched) / float64(len(labelWords))
		}
		judgments = append(judgments, ai.Judgment{
			URI:         c.URI,
			Agreement:   agreement,
			Explanation: "mock judgment from label word overlap",
		})
	}

	return judgments, nil
}

// CallCount returns the number of times Analyze was called.
func (m *MockPatternAnalyzer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockPatternAnalyzer) Reset() {
	m.callCount = 0
	m.AnalyzeFunc = nil
}
