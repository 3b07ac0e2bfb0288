package openai

import (
	"fmt"
	"strings"

	"github.com/casewise/ontolink/ai"
)

const analysisResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "judgments": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "uri": {
            "type": "string"
          },
          "agreement": {
            "type": "number",
            "minimum": 0,
            "maximum": 1
          },
          "explanation": {
            "type": "string"
          }
        },
        "required": ["uri", "agreement", "explanation"],
        "additionalProperties": false
      }
    }
  },
  "required": ["judgments"],
  "additionalProperties": false
}`

const analysisPromptTemplate = `You judge how strongly a passage from an engineering-ethics case supports
an association with each listed concept. Return your judgments as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Produce exactly one judgment per candidate concept, using the candidate's uri verbatim.
- Agreement is a number from 0.0 (the passage has nothing to do with the concept) to 1.0 (the passage
  is centrally about the concept). Judge the passage on its own merits; do not assume unstated context.
- Explanation is one or two sentences citing the specific wording that supports or undermines the association.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Candidate concepts:
%s`

// buildAnalysisPrompt creates the system prompt with the candidate list embedded.
func buildAnalysisPrompt(candidates []ai.CandidateConcept) string {
	var sb strings.Builder
	for _, c := range candidates {
		sb.WriteString("- uri: ")
		sb.WriteString(c.URI)
		sb.WriteString("\n  label: ")
		sb.WriteString(c.Label)
		if c.Definition != "" {
			sb.WriteString("\n  definition: ")
			sb.WriteString(c.Definition)
		}
		sb.WriteString("\n")
	}
	return fmt.Sprintf(analysisPromptTemplate, analysisResponseSchema, sb.String())
}
