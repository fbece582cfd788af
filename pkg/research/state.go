package research

import (
	"errors"
	"fmt"
)

// Step names the next action of a workflow run, not the data it has produced.
type Step int

const (
	// StepGenerateQueries runs the query generator and appends to Queries.
	StepGenerateQueries Step = iota
	// StepSearch runs the web search once per query and merges into Documents.
	StepSearch
	// StepGrade re-grades every current document and replaces GradedDocuments.
	StepGrade
	// StepExtract runs the scenario extractor once per graded document.
	StepExtract
	// StepDone terminates the run; the ResearchState is the result value.
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepGenerateQueries:
		return "generate_queries"
	case StepSearch:
		return "web_search"
	case StepGrade:
		return "grade_documents"
	case StepExtract:
		return "extract_scenarios"
	case StepDone:
		return "done"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// ErrInvariant reports a ResearchState whose collection counts match none of
// the transition rules. It is fatal for the owning run: the engine surfaces
// it instead of looping or terminating as done.
var ErrInvariant = errors.New("research state violates step invariant")

// NextStep selects the next action from the four collection counts alone,
// evaluated top to bottom, first match wins:
//
//  1. no queries                        → generate queries
//  2. queries but no documents          → web search
//  3. documents but nothing graded      → grade documents
//  4. graded but no scenario documents → extract scenarios
//  5. scenario documents exist          → done
//
// GradedDocuments is a filtered subset of Documents, so graded > documents
// means the state has been corrupted; that returns ErrInvariant rather than
// picking an arbitrary step.
//
// Rule 2 fires on any non-empty query list: gating search on more than one
// query would stall a legitimate single-query run with no matching rule.
func NextStep(queries, documents, graded, scenarios int) (Step, error) {
	if graded > documents {
		return StepDone, fmt.Errorf("%w: queries=%d documents=%d graded=%d scenarios=%d",
			ErrInvariant, queries, documents, graded, scenarios)
	}
	switch {
	case queries == 0:
		return StepGenerateQueries, nil
	case documents == 0:
		return StepSearch, nil
	case graded == 0:
		return StepGrade, nil
	case scenarios == 0:
		return StepExtract, nil
	}
	return StepDone, nil
}

// Next applies NextStep to the state's current counts.
func (s *ResearchState) Next() (Step, error) {
	return NextStep(len(s.Queries), len(s.Documents), len(s.GradedDocuments), len(s.ScenarioDocuments))
}
