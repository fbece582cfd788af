package research

import (
	"context"
	"fmt"
	"log/slog"
)

// Searcher runs one web search query and returns candidate documents.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Document, error)
}

// Engine executes the research workflow for a single risk query. After each
// step it re-evaluates the state's collection counts to pick the next step,
// so a run is a strictly sequential pipeline:
//
//	generate queries → web search → grade documents → extract scenarios → done
//
// Steps never swallow errors: a failing external call or unparseable model
// response aborts the run and the error names the step that failed.
type Engine struct {
	Queries   QueryGenerator
	Search    Searcher
	Grader    Grader
	Extractor Extractor
	Logger    *slog.Logger
}

// maxSteps bounds the supervisor loop. A healthy run takes exactly one
// execution per phase; anything past this is a stuck state machine.
const maxSteps = 8

// Run drives the workflow for one risk query to completion and returns the
// final state. A run that finds no relevant documents still completes: it
// terminates with an empty ScenarioDocuments list rather than an error.
func (e *Engine) Run(ctx context.Context, q RiskQuery) (*ResearchState, error) {
	log := e.logger().With("risk", q.Risk, "organization", q.Organization)
	state := NewResearchState(q)

	for i := 0; i < maxSteps; i++ {
		step, err := state.Next()
		if err != nil {
			return nil, err
		}
		log.Info("supervisor step", "step", step.String())

		switch step {
		case StepGenerateQueries:
			if err := e.runGenerateQueries(ctx, state); err != nil {
				return nil, err
			}
		case StepSearch:
			if err := e.runSearch(ctx, state); err != nil {
				return nil, err
			}
		case StepGrade:
			if err := e.runGrade(ctx, state); err != nil {
				return nil, err
			}
			if len(state.GradedDocuments) == 0 {
				// Nothing relevant to extract from. An empty scenario list is
				// a valid terminal result, not a failure.
				log.Info("no relevant documents, finishing run")
				return state, nil
			}
		case StepExtract:
			if err := e.runExtract(ctx, state); err != nil {
				return nil, err
			}
		case StepDone:
			log.Info("run complete",
				"documents", len(state.Documents),
				"graded", len(state.GradedDocuments),
				"scenario_documents", len(state.ScenarioDocuments))
			return state, nil
		}
	}

	return nil, fmt.Errorf("%w: run did not terminate after %d steps", ErrInvariant, maxSteps)
}

func (e *Engine) runGenerateQueries(ctx context.Context, state *ResearchState) error {
	queries, err := e.Queries.GenerateQueries(ctx, state.Query())
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		return fmt.Errorf("query generator returned no queries")
	}
	state.Queries = append(state.Queries, queries...)
	e.logger().Info("generated search queries", "count", len(queries))
	return nil
}

// runSearch executes every accumulated query and merges the results into
// Documents, dropping any URL already present in the accumulated set. The
// first-seen copy of a URL wins.
func (e *Engine) runSearch(ctx context.Context, state *ResearchState) error {
	seen := make(map[string]bool, len(state.Documents))
	for _, d := range state.Documents {
		seen[d.URL] = true
	}

	for _, q := range state.Queries {
		docs, err := e.Search.Search(ctx, q)
		if err != nil {
			return fmt.Errorf("web search for %q: %w", q, err)
		}
		for _, d := range docs {
			if seen[d.URL] {
				continue
			}
			seen[d.URL] = true
			d.SearchQuery = q
			state.Documents = append(state.Documents, d)
		}
	}

	e.logger().Info("web search done", "unique_documents", len(state.Documents))
	return nil
}

// runGrade re-grades the entire current Documents set and replaces
// GradedDocuments with the relevant subset. It never merges with a previous
// grading pass.
func (e *Engine) runGrade(ctx context.Context, state *ResearchState) error {
	graded := []Document{}
	for _, doc := range state.Documents {
		relevant, err := e.Grader.Grade(ctx, state.Query(), doc.Content)
		if err != nil {
			return fmt.Errorf("grading %s: %w", doc.URL, err)
		}
		if relevant {
			graded = append(graded, doc)
		}
	}
	state.GradedDocuments = graded
	e.logger().Info("graded documents", "total", len(state.Documents), "relevant", len(graded))
	return nil
}

// runExtract runs the extractor once per graded document and appends each
// document, augmented with its scenarios, to ScenarioDocuments. A document
// that yields no scenarios is still appended so the run terminates.
func (e *Engine) runExtract(ctx context.Context, state *ResearchState) error {
	for _, doc := range state.GradedDocuments {
		scenarios, err := e.Extractor.Extract(ctx, state.Query(), doc)
		if err != nil {
			return err
		}
		doc.Scenarios = scenarios
		state.ScenarioDocuments = append(state.ScenarioDocuments, doc)
	}
	e.logger().Info("extracted scenarios", "scenario_documents", len(state.ScenarioDocuments))
	return nil
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
