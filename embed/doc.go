// Package embed backfills embedding vectors for stored concepts.
//
// It batches concepts through the embedder with exponential-backoff retry,
// normalizes the resulting vectors for cosine similarity, and persists them
// through the concept repository. Vector math helpers shared with the
// matching stage also live here.
package embed
