// Package hierarchy builds and queries the typed concept forest.
//
// Load validates the parent-link structure up front (duplicate URIs, orphan
// parents, cycles) so that every later closure query can assume a consistent
// acyclic graph. Closures are computed by iterative traversal over explicit
// parent and child links rather than by a storage engine's recursive query
// feature, keeping the logic engine-independent.
package hierarchy
