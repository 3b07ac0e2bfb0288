package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing so that identical content
// always maps to the same identifier.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SectionType identifies the structural role of a document section.
type SectionType int

const (
	// SectionTypeFacts covers factual background sections.
	SectionTypeFacts SectionType = iota + 1
	// SectionTypeDiscussion covers deliberative discussion sections.
	SectionTypeDiscussion
	// SectionTypeAnalysis covers analytical sections.
	SectionTypeAnalysis
	// SectionTypeConclusion covers conclusion sections.
	SectionTypeConclusion
	// SectionTypeQuestion covers posed-question sections.
	SectionTypeQuestion
)

// String returns the canonical lowercase name of the section type.
func (t SectionType) String() string {
	switch t {
	case SectionTypeFacts:
		return "facts"
	case SectionTypeDiscussion:
		return "discussion"
	case SectionTypeAnalysis:
		return "analysis"
	case SectionTypeConclusion:
		return "conclusion"
	case SectionTypeQuestion:
		return "question"
	default:
		return "unknown"
	}
}

// ParseSectionType maps a canonical name back to a SectionType.
// Returns 0 for unrecognized names.
func ParseSectionType(name string) SectionType {
	switch name {
	case "facts":
		return SectionTypeFacts
	case "discussion":
		return SectionTypeDiscussion
	case "analysis":
		return SectionTypeAnalysis
	case "conclusion":
		return SectionTypeConclusion
	case "question":
		return SectionTypeQuestion
	default:
		return 0
	}
}

// MaxSectionTextLen bounds the length of section text accepted at ingestion.
const MaxSectionTextLen = 8000

// Section represents a bounded text unit of a source document.
// Text and type are immutable once set; re-ingesting changed text produces a
// new Section with a new content-derived ID. The embedding vector is
// populated lazily by the embedding stage.
type Section struct {
	Id         ID
	Text       string
	Type       SectionType
	Vector     []float32 // Embedding vector (populated by the embedder)
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// ContentKey returns the string hashed to derive the section's ID.
// Including the type keeps otherwise identical text in different roles distinct.
func (s *Section) ContentKey() string {
	return "(" + s.Type.String() + "," + s.Text + ")"
}

// ConceptKind distinguishes ontology classes from individuals.
type ConceptKind int

const (
	// ConceptKindClass represents an ontology class.
	ConceptKindClass ConceptKind = iota + 1
	// ConceptKindIndividual represents a named individual.
	ConceptKindIndividual
)

// Concept represents a node in the typed concept hierarchy.
// Concepts form a forest: every non-root concept names exactly one parent by
// URI. MatchingTerms and Affinities drive the fine-grained scoring metrics.
type Concept struct {
	Id            ID
	URI           string
	Label         string
	Kind          ConceptKind
	ParentURI     string // empty for roots
	MatchingTerms []string
	Affinities    []SectionType // section types this concept declares relevance for
	Vector        []float32     // Embedding vector (populated by the embedder)
	InsertedAt    time.Time
	UpdatedAt     time.Time
}

// IsRoot reports whether the concept has no parent.
func (c *Concept) IsRoot() bool {
	return c.ParentURI == ""
}

// HasAffinity reports whether the concept declares affinity for the given
// section type. A concept with no declared affinities returns false for all
// types; the matcher treats that case as neutral rather than negative.
func (c *Concept) HasAffinity(t SectionType) bool {
	for _, a := range c.Affinities {
		if a == t {
			return true
		}
	}
	return false
}

// Association method tags.
const (
	// MethodEmbedding marks associations backed only by vector similarity.
	MethodEmbedding = "embedding"
	// MethodHybrid marks associations fusing all quantitative metrics.
	MethodHybrid = "hybrid"
	// MethodLLMAssisted marks associations that folded in a qualitative judgment.
	MethodLLMAssisted = "llm-assisted"
)

// Reasoning is the structured explanation attached to an association.
// Contributions records each metric's weighted share of the confidence so
// consumers can see which signal dominated.
type Reasoning struct {
	DominantMetric string
	Contributions  map[string]float64
	Summary        string
}

// Association is a confidence-scored link between one Section and one Concept.
// The (SectionId, ConceptId) pair is unique; recomputation overwrites in place.
// All metric values lie in [0,1]. LLMAgreement is nil when no qualitative
// judgment was available, which is distinct from an agreement of zero.
type Association struct {
	SectionId           ID
	ConceptId           ID
	ConceptURI          string
	SemanticSimilarity  float64
	KeywordOverlap      float64
	StructuralRelevance float64
	LLMAgreement        *float64
	OverallConfidence   float64
	Reasoning           Reasoning
	Method              string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Candidate pairs a concept with its coarse-stage similarity score.
type Candidate struct {
	Concept    *Concept
	Similarity float64
	// Ranked is false when the coarse selector could not compute vector
	// similarity and fell back to passing candidates through unranked.
	Ranked bool
}
