package hierarchy

import "errors"

var (
	// ErrCycleDetected indicates a concept's ancestor chain revisits itself.
	// The load fails as a whole; a cyclic graph cannot support closure queries.
	ErrCycleDetected = errors.New("cycle detected in concept hierarchy")

	// ErrOrphanParent indicates a parent URI that does not resolve to a
	// loaded concept under the strict policy.
	ErrOrphanParent = errors.New("parent concept not found")

	// ErrDuplicateURI indicates two loaded concepts share a URI.
	ErrDuplicateURI = errors.New("duplicate concept URI")

	// ErrUnknownConcept indicates a closure query for a URI that is not loaded.
	ErrUnknownConcept = errors.New("unknown concept")

	// ErrInvalidGraph indicates structurally invalid input to Load.
	ErrInvalidGraph = errors.New("invalid concept graph")
)
