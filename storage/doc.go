// Package storage defines the repository interfaces and serialization
// helpers for persisted domain records.
//
// Backends live in subpackages; the badger subpackage is the default. All
// repositories are safe for concurrent use, and the association repository's
// upsert is the serialization point for concurrent writers of the same
// (section, concept) pair.
package storage
