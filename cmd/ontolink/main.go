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


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/casewise/ontolink"
	"github.com/casewise/ontolink/ai"
	"github.com/casewise/ontolink/ai/openai"
	"github.com/casewise/ontolink/core"
	"github.com/casewise/ontolink/embed"
	"github.com/casewise/ontolink/hierarchy"
	"github.com/casewise/ontolink/match"
	"github.com/casewise/ontolink/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "ontolink",
		Usage: "Associate document sections with a typed concept hierarchy",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "seed",
				Usage:  "Load concepts from a JSON ontology export",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the JSON ontology file",
						Required: true,
					},
				},
			},
			{
				Name:   "ingest",
				Usage:  "Load document sections from a JSON file",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the JSON sections file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
				},
			},
			{
				Name:   "embed-concepts",
				Usage:  "Backfill embedding vectors for stored concepts",
				Action: embedConceptsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of concepts to process in each batch",
						Value: 100,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Re-embed concepts that already have vectors",
					},
				},
			},
			{
				Name:   "associate",
				Usage:  "Compute associations for all stored sections",
				Action: associateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "analyzer-host",
						Usage: "Analyzer service host URL (defaults to embedding-host)",
					},
					&cli.StringFlag{
						Name:  "analyzer-model",
						Usage: "Analyzer model name; enables the qualitative judgment stage",
					},
					&cli.DurationFlag{
						Name:  "analyzer-timeout",
						Usage: "Per-section timeout for qualitative judgments",
						Value: 30 * time.Second,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of candidate concepts per section",
						Value: match.DefaultTopK,
					},
					&cli.Float64Flag{
						Name:  "floor",
						Usage: "Minimum cosine similarity for a candidate",
						Value: match.DefaultCandidateFloor,
					},
				},
			},
			{
				Name:   "query",
				Usage:  "List stored associations for a section or a category",
				Action: queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "section",
						Usage: "Section ID to query",
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Concept URI to query, including all descendants",
					},
					&cli.Float64Flag{
						Name:  "min-confidence",
						Usage: "Confidence floor for returned associations",
						Value: 0,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// seedConcept is the ontology export row format.
type seedConcept struct {
	URI        string   `json:"uri"`
	Label      string   `json:"label"`
	Kind       string   `json:"kind"`
	Parent     string   `json:"parent,omitempty"`
	Terms      []string `json:"terms,omitempty"`
	Affinities []string `json:"affinities,omitempty"`
}

// seedSection is the sections file row format.
type seedSection struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

func seedCommand(c *cli.Context) error {
	ctx := context.Background()

	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read ontology file: %w", err)
	}

	var rows []seedConcept
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to parse ontology file: %w", err)
	}

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewConceptRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	concepts := make([]*core.Concept, 0, len(rows))
	for _, row := range rows {
		kind := core.ConceptKindClass
		if strings.EqualFold(row.Kind, "individual") {
			kind = core.ConceptKindIndividual
		}

		affinities := make([]core.SectionType, 0, len(row.Affinities))
		for _, name := range row.Affinities {
			t := core.ParseSectionType(name)
			if t == 0 {
				return fmt.Errorf("unknown section type %q for concept %s", name, row.URI)
			}
			affinities = append(affinities, t)
		}

		concept := &core.Concept{
			URI:           row.URI,
			Label:         row.Label,
			Kind:          kind,
			ParentURI:     row.Parent,
			MatchingTerms: row.Terms,
			Affinities:    affinities,
		}
		if err := core.ValidateConcept(concept); err != nil {
			return fmt.Errorf("invalid concept %s: %w", row.URI, err)
		}
		concepts = append(concepts, concept)
	}

	if _, err := repo.AddConcepts(ctx, concepts...); err != nil {
		return fmt.Errorf("failed to store concepts: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Seeded %d concepts\n", len(concepts))
	return nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read sections file: %w", err)
	}

	var rows []seedSection
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to parse sections file: %w", err)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	for i, row := range rows {
		sectionType := core.ParseSectionType(row.Type)
		if sectionType == 0 {
			return fmt.Errorf("unknown section type %q at row %d", row.Type, i)
		}
		id, err := db.IngestSection(ctx, row.Text, sectionType)
		if err != nil {
			return fmt.Errorf("failed to ingest row %d: %w", i, err)
		}
		fmt.Printf("%d\t%s\n", uint64(id), sectionType)
	}

	fmt.Fprintf(os.Stderr, "Ingested %d sections\n", len(rows))
	return nil
}

func embedConceptsCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewConceptRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	opts := []embed.RunnerOption{
		embed.WithBatchSize(c.Int("batch-size")),
		embed.WithProgress(os.Stderr),
	}
	if c.Bool("force") {
		opts = append(opts, embed.WithForce())
	}

	runner, err := embed.NewRunner(repo, embedder, opts...)
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	embedded, skipped, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("concept embedding failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Embedded %d concepts (%d skipped)\n", embedded, skipped)
	return nil
}

func associateCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	sections, err := db.SectionRepository().GetAllSections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sections: %w", err)
	}
	if len(sections) == 0 {
		fmt.Fprintln(os.Stderr, "No sections stored")
		return nil
	}

	ids := make([]core.ID, len(sections))
	for i, section := range sections {
		ids[i] = section.Id
	}

	report, err := db.ProcessSections(ctx, ids...)
	if err != nil {
		return fmt.Errorf("association run failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Run %s: %d succeeded, %d failed\n",
		report.RunId, len(report.Succeeded), len(report.Failed))
	for _, failure := range report.Failed {
		fmt.Fprintf(os.Stderr, "  section %d: %s\n", uint64(failure.SectionId), failure.Reason)
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	sectionFlag := c.String("section")
	categoryFlag := c.String("category")
	if (sectionFlag == "") == (categoryFlag == "") {
		return fmt.Errorf("exactly one of --section or --category is required")
	}

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	sectionRepo, err := badger.NewSectionRepository(backend)
	if err != nil {
		return err
	}
	defer sectionRepo.Close()

	conceptRepo, err := badger.NewConceptRepository(backend)
	if err != nil {
		return err
	}
	defer conceptRepo.Close()

	assocRepo, err := badger.NewAssociationRepository(backend)
	if err != nil {
		return err
	}
	defer assocRepo.Close()

	minConfidence := c.Float64("min-confidence")

	var assocs []*core.Association
	if sectionFlag != "" {
		raw, err := strconv.ParseUint(sectionFlag, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid section ID %q: %w", sectionFlag, err)
		}
		assocs, err = assocRepo.GetForSection(ctx, core.ID(raw), minConfidence)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
	} else {
		concepts, err := conceptRepo.GetAllConcepts(ctx)
		if err != nil {
			return err
		}
		assocs, err = categoryAssociations(ctx, assocRepo, concepts, categoryFlag, minConfidence)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
	}

	for _, assoc := range assocs {
		fmt.Printf("%.3f\t%s\t%s\tsection=%d\t%s\n",
			assoc.OverallConfidence, assoc.Method, assoc.ConceptURI,
			uint64(assoc.SectionId), assoc.Reasoning.Summary)
	}
	fmt.Fprintf(os.Stderr, "%d associations\n", len(assocs))
	return nil
}

func openDatabase(c *cli.Context) (*ontolink.Database, error) {
	embeddingHost := c.String("embedding-host")
	analyzerHost := c.String("analyzer-host")
	if analyzerHost == "" {
		analyzerHost = embeddingHost
	}

	configOpts := []ai.ConfigOption{
		ai.WithEmbeddingHost(embeddingHost),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAnalyzerHost(analyzerHost),
	}

	engineOpts := match.DefaultOptions()
	if c.IsSet("top-k") {
		engineOpts.TopK = c.Int("top-k")
	}
	if c.IsSet("floor") {
		engineOpts.CandidateFloor = c.Float64("floor")
	}
	if model := c.String("analyzer-model"); model != "" {
		configOpts = append(configOpts, ai.WithAnalyzerModel(model))
		engineOpts.UseAnalyzer = true
		engineOpts.AnalyzerTimeout = c.Duration("analyzer-timeout")
	}

	aiConfig := ai.NewConfig(configOpts...)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := ontolink.NewDatabase(c.String("db"),
		ontolink.WithAIConfig(aiConfig),
		ontolink.WithEngineOptions(engineOpts),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// categoryAssociations resolves the category closure and gathers associations
// for every concept in it, strongest first.
func categoryAssociations(ctx context.Context, repo *badger.AssociationRepository, concepts []*core.Concept, categoryURI string, minConfidence float64) ([]*core.Association, error) {
	graph, err := hierarchy.Load(concepts)
	if err != nil {
		return nil, err
	}

	uris, err := graph.CategoryOf(categoryURI)
	if err != nil {
		return nil, err
	}

	var results []*core.Association
	for _, uri := range uris {
		assocs, err := repo.GetForConcept(ctx, graph.Get(uri).Id, minConfidence)
		if err != nil {
			return nil, err
		}
		results = append(results, assocs...)
	}

	slices.SortFunc(results, func(a, b *core.Association) int {
		if a.OverallConfidence > b.OverallConfidence {
			return -1
		}
		if a.OverallConfidence < b.OverallConfidence {
			return 1
		}
		return strings.Compare(a.ConceptURI, b.ConceptURI)
	})
	return results, nil
}
