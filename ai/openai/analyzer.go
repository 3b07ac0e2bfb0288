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


package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/casewise/ontolink/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// PatternAnalyzer implements ai.PatternAnalyzer using OpenAI-compatible chat APIs.
type PatternAnalyzer struct {
	client llms.Model
	logger *slog.Logger
}

// judgment is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type judgment struct {
	URI         string  `json:"uri"`
	Agreement   float64 `json:"agreement"`
	Explanation string  `json:"explanation"`
}

// analysis is the wrapper structure for the LLM's JSON response.
type analysis struct {
	Judgments []judgment `json:"judgments"`
}

// newPatternAnalyzer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newPatternAnalyzer(config *ai.Config) (*PatternAnalyzer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat/analysis
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.AnalyzerHost),
		openai.WithToken("none"),
		openai.WithModel(config.AnalyzerModel),
	)
	if err != nil {
		return nil, err
	}

	return &PatternAnalyzer{
		client: client,
		logger: slog.Default().With("component", "openai-analyzer"),
	}, nil
}

// NewPatternAnalyzer creates a new pattern analyzer using the provided configuration.
//
// Returns ai.PatternAnalyzer interface to enforce abstraction.
func NewPatternAnalyzer(config *ai.Config) (ai.PatternAnalyzer, error) {
	return newPatternAnalyzer(config)
}

// Analyze judges each candidate concept against the section text using an LLM.
// Judgments outside [0,1] are clamped; judgments for unknown URIs are dropped.
func (a *PatternAnalyzer) Analyze(ctx context.Context, sectionText string, candidates []ai.CandidateConcept) ([]ai.Judgment, error) {
	if len(candidates) == 0 {
		return []ai.Judgment{}, nil
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildAnalysisPrompt(candidates)),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(sectionText),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result analysis
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := a.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			a.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, fmt.Errorf("%w: %w", ai.ErrAnalysisFailed, err)
		}

		if len(response.Choices) < 1 {
			a.logger.Debug("no choices returned from model")
			return []ai.Judgment{}, nil
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			a.logger.Warn("error parsing analyzer response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		a.logger.Error("failed to parse analyzer response after retries", "err", lastErr)
		return nil, fmt.Errorf("%w: %w", ai.ErrAnalysisFailed, lastErr)
	}

	known := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		known[c.URI] = true
	}

	judgments := make([]ai.Judgment, 0, len(result.Judgments))
	for _, j := range result.Judgments {
		if !known[j.URI] {
			a.logger.Debug("dropping judgment for unknown concept", "uri", j.URI)
			continue
		}
		agreement := j.Agreement
		if agreement < 0 {
			agreement = 0
		}
		if agreement > 1 {
			agreement = 1
		}
		judgments = append(judgments, ai.Judgment{
			URI:         j.URI,
			Agreement:   agreement,
			Explanation: j.Explanation,
		})
	}

	a.logger.Debug("analyzed candidates",
		"candidates", len(candidates),
		"judgments", len(judgments))

	return judgments, nil
}
