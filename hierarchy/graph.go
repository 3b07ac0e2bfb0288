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


package hierarchy

import (
	"fmt"
	"log/slog"

	"github.com/casewise/ontolink/core"
)

// Graph is an immutable in-memory concept forest built from parent links.
// It is loaded once per batch run and safe for concurrent reads; closure
// queries are plain graph traversals with visited sets, so they terminate
// even if the underlying data were malformed.
type Graph struct {
	byURI    map[string]*core.Concept
	children map[string][]string
	roots    []string
	logger   *slog.Logger
}

// Option configures hierarchy loading.
type Option func(*loadOptions)

type loadOptions struct {
	orphansAsRoots bool
	logger         *slog.Logger
}

// WithOrphansAsRoots makes Load treat concepts whose parent URI does not
// resolve as roots, logging a warning, instead of failing with
// ErrOrphanParent. The default is the strict policy: an unresolved parent
// fails the whole load, since every downstream score depends on a consistent
// graph.
func WithOrphansAsRoots() Option {
	return func(o *loadOptions) {
		o.orphansAsRoots = true
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *loadOptions) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
	}
}

// Load builds the concept forest.
//
// It fails with ErrDuplicateURI if two concepts share a URI, with
// ErrOrphanParent if a parent URI does not resolve (unless
// WithOrphansAsRoots), and with ErrCycleDetected if any concept's parent
// chain revisits itself. Cycle detection walks each chain with a visited set,
// so it terminates on arbitrary input.
func Load(concepts []*core.Concept, opts ...Option) (*Graph, error) {
	options := &loadOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger.With("component", "hierarchy")

	byURI := make(map[string]*core.Concept, len(concepts))
	for _, c := range concepts {
		if c.URI == "" {
			return nil, fmt.Errorf("%w: concept with empty URI", ErrInvalidGraph)
		}
		if _, exists := byURI[c.URI]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateURI, c.URI)
		}
		byURI[c.URI] = c
	}

	g := &Graph{
		byURI:    byURI,
		children: make(map[string][]string, len(concepts)),
		logger:   logger,
	}

	// Resolve parents and build the child adjacency.
	for _, c := range concepts {
		if c.ParentURI == "" {
			g.roots = append(g.roots, c.URI)
			continue
		}
		if _, ok := byURI[c.ParentURI]; !ok {
			if !options.orphansAsRoots {
				return nil, fmt.Errorf("%w: %s -> %s", ErrOrphanParent, c.URI, c.ParentURI)
			}
			logger.Warn("treating concept with unresolved parent as root",
				"uri", c.URI, "parent", c.ParentURI)
			g.roots = append(g.roots, c.URI)
			continue
		}
		g.children[c.ParentURI] = append(g.children[c.ParentURI], c.URI)
	}

	// Walk every parent chain with a visited set. A chain that revisits a
	// URI is a cycle; a chain that leaves the loaded set was handled above.
	for _, c := range concepts {
		visited := map[string]bool{c.URI: true}
		parent := c.ParentURI
		for parent != "" {
			if visited[parent] {
				return nil, fmt.Errorf("%w: via %s", ErrCycleDetected, parent)
			}
			visited[parent] = true
			node, ok := byURI[parent]
			if !ok {
				break // orphan policy already applied
			}
			parent = node.ParentURI
		}
	}

	logger.Debug("hierarchy loaded", "concepts", len(concepts), "roots", len(g.roots))
	return g, nil
}

// Get returns the concept for a URI, or nil if unknown.
func (g *Graph) Get(uri string) *core.Concept {
	return g.byURI[uri]
}

// Contains reports whether the URI names a loaded concept.
func (g *Graph) Contains(uri string) bool {
	_, ok := g.byURI[uri]
	return ok
}

// Len returns the number of loaded concepts.
func (g *Graph) Len() int {
	return len(g.byURI)
}

// Concepts returns all loaded concepts. The slice is freshly allocated but
// the pointed-to concepts are shared; callers must not mutate them.
func (g *Graph) Concepts() []*core.Concept {
	out := make([]*core.Concept, 0, len(g.byURI))
	for _, c := range g.byURI {
		out = append(out, c)
	}
	return out
}

// Roots returns the URIs of all root concepts.
func (g *Graph) Roots() []string {
	out := make([]string, len(g.roots))
	copy(out, g.roots)
	return out
}

// DescendantsOf returns the set of URIs of every concept whose ancestor chain
// reaches the target, at any depth. The target itself is not included.
// Returns ErrUnknownConcept if the URI is not loaded.
func (g *Graph) DescendantsOf(uri string) (map[string]struct{}, error) {
	if _, ok := g.byURI[uri]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownConcept, uri)
	}

	result := make(map[string]struct{})
	queue := append([]string(nil), g.children[uri]...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if _, seen := result[next]; seen {
			continue
		}
		result[next] = struct{}{}
		queue = append(queue, g.children[next]...)
	}
	return result, nil
}

// AncestorsOf returns the set of URIs on the concept's parent chain, at any
// depth. The concept itself is not included.
// Returns ErrUnknownConcept if the URI is not loaded.
func (g *Graph) AncestorsOf(uri string) (map[string]struct{}, error) {
	node, ok := g.byURI[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownConcept, uri)
	}

	result := make(map[string]struct{})
	parent := node.ParentURI
	for parent != "" {
		if _, seen := result[parent]; seen {
			break // revisit means a malformed chain; stop rather than loop
		}
		ancestor, ok := g.byURI[parent]
		if !ok {
			break // unresolved parent under the lenient policy
		}
		result[parent] = struct{}{}
		parent = ancestor.ParentURI
	}
	return result, nil
}

// CategoryOf returns the URIs covered by a category query: the category
// concept itself plus all of its descendants.
func (g *Graph) CategoryOf(uri string) ([]string, error) {
	descendants, err := g.DescendantsOf(uri)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(descendants)+1)
	out = append(out, uri)
	for d := range descendants {
		out = append(out, d)
	}
	return out, nil
}
