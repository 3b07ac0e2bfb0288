// Package match computes confidence-scored associations between document
// sections and concepts.
//
// Matching runs in two stages. A coarse selector ranks concepts by vector
// similarity and keeps a bounded candidate list. Fine-grained metrics then
// score each surviving pair (semantic similarity, keyword overlap,
// structural relevance, and an optional qualitative judgment from a language
// model), and a combiner fuses them into one confidence value with a
// structured explanation.
//
// The Engine orchestrates batch runs over a worker pool with per-section
// failure isolation.
package match
