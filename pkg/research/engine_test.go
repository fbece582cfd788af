package research

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueryGen struct {
	queries []string
	err     error
	calls   int
}

func (f *fakeQueryGen) GenerateQueries(ctx context.Context, q RiskQuery) ([]string, error) {
	f.calls++
	return f.queries, f.err
}

type fakeSearcher struct {
	results map[string][]Document
	err     error
	calls   int
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]Document, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

type fakeGrader struct {
	relevant map[string]bool
	err      error
	calls    int
}

func (f *fakeGrader) Grade(ctx context.Context, q RiskQuery, content string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.relevant[content], nil
}

type fakeExtractor struct {
	scenarios map[string][]Scenario
	err       error
	calls     int
}

func (f *fakeExtractor) Extract(ctx context.Context, q RiskQuery, doc Document) ([]Scenario, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.scenarios[doc.URL], nil
}

var testQuery = RiskQuery{Sector: "higher education", Organization: "Northwestern University", Risk: "cybersecurity"}

func TestEngineRunFullPipeline(t *testing.T) {
	queries := []string{"q1", "q2", "q3", "q4", "q5"}
	gen := &fakeQueryGen{queries: queries}
	searcher := &fakeSearcher{results: map[string][]Document{
		"q1": {{Title: "Breach report", URL: "https://a.example/1", Content: "a ransomware incident"}},
		"q2": {{Title: "Irrelevant blog", URL: "https://a.example/2", Content: "marketing copy"}},
		"q3": {{Title: "Fine notice", URL: "https://a.example/3", Content: "a regulatory fine"}},
	}}
	grader := &fakeGrader{relevant: map[string]bool{
		"a ransomware incident": true,
		"a regulatory fine":     true,
	}}
	extractor := &fakeExtractor{scenarios: map[string][]Scenario{
		"https://a.example/1": {{Reasoning: "incident described", Scenario: "ransomware encrypts records"}},
		"https://a.example/3": {},
	}}

	engine := &Engine{Queries: gen, Search: searcher, Grader: grader, Extractor: extractor}
	state, err := engine.Run(context.Background(), testQuery)
	require.NoError(t, err)

	// One execution per phase, never more.
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, len(queries), searcher.calls)
	assert.Equal(t, 3, grader.calls)
	assert.Equal(t, 2, extractor.calls)

	assert.Equal(t, queries, state.Queries)
	assert.Len(t, state.Documents, 3)
	assert.Len(t, state.GradedDocuments, 2)

	// Every graded document is carried into the result, including the one
	// that yielded no scenarios.
	require.Len(t, state.ScenarioDocuments, 2)
	assert.Equal(t, "https://a.example/1", state.ScenarioDocuments[0].URL)
	assert.Len(t, state.ScenarioDocuments[0].Scenarios, 1)
	assert.Empty(t, state.ScenarioDocuments[1].Scenarios)
}

func TestEngineDedupesDocumentsByURL(t *testing.T) {
	dup := "https://a.example/shared"
	searcher := &fakeSearcher{results: map[string][]Document{
		"q1": {{Title: "first copy", URL: dup, Content: "first seen content"}},
		"q2": {
			{Title: "second copy", URL: dup, Content: "later duplicate"},
			{Title: "unique", URL: "https://a.example/unique", Content: "other"},
		},
	}}
	engine := &Engine{
		Queries:   &fakeQueryGen{queries: []string{"q1", "q2"}},
		Search:    searcher,
		Grader:    &fakeGrader{},
		Extractor: &fakeExtractor{},
	}

	state, err := engine.Run(context.Background(), testQuery)
	require.NoError(t, err)

	require.Len(t, state.Documents, 2)
	// First-seen copy wins.
	assert.Equal(t, "first seen content", state.Documents[0].Content)
	assert.Equal(t, "q1", state.Documents[0].SearchQuery)
}

func TestEngineSingleQueryStillRuns(t *testing.T) {
	// A single query is enough to reach search; the run must complete.
	engine := &Engine{
		Queries: &fakeQueryGen{queries: []string{"only query"}},
		Search: &fakeSearcher{results: map[string][]Document{
			"only query": {{URL: "https://a.example/1", Content: "incident"}},
		}},
		Grader:    &fakeGrader{relevant: map[string]bool{"incident": true}},
		Extractor: &fakeExtractor{},
	}

	state, err := engine.Run(context.Background(), testQuery)
	require.NoError(t, err)
	assert.Len(t, state.ScenarioDocuments, 1)
}

func TestEngineNoRelevantDocumentsIsValidTerminal(t *testing.T) {
	extractor := &fakeExtractor{}
	engine := &Engine{
		Queries: &fakeQueryGen{queries: []string{"q1"}},
		Search: &fakeSearcher{results: map[string][]Document{
			"q1": {{URL: "https://a.example/1", Content: "nothing useful"}},
		}},
		Grader:    &fakeGrader{}, // grades everything false
		Extractor: extractor,
	}

	state, err := engine.Run(context.Background(), testQuery)
	require.NoError(t, err)
	assert.Empty(t, state.GradedDocuments)
	assert.Empty(t, state.ScenarioDocuments)
	assert.Zero(t, extractor.calls)
}

func TestEngineRegradeReplacesPriorGrading(t *testing.T) {
	state := NewResearchState(testQuery)
	state.Queries = []string{"q1"}
	state.Documents = []Document{
		{URL: "https://a.example/1", Content: "old relevant"},
	}

	grader := &fakeGrader{relevant: map[string]bool{"old relevant": true}}
	engine := &Engine{Grader: grader}
	require.NoError(t, engine.runGrade(context.Background(), state))
	require.Len(t, state.GradedDocuments, 1)

	// The documents set grows and grading opinions change: a second pass
	// reflects only the latest evaluation, never a union.
	state.Documents = append(state.Documents, Document{URL: "https://a.example/2", Content: "new relevant"})
	grader.relevant = map[string]bool{"new relevant": true}

	require.NoError(t, engine.runGrade(context.Background(), state))
	require.Len(t, state.GradedDocuments, 1)
	assert.Equal(t, "https://a.example/2", state.GradedDocuments[0].URL)
}

func TestEngineStepErrorsAbortRun(t *testing.T) {
	boom := errors.New("external call failed")
	base := func() *Engine {
		return &Engine{
			Queries: &fakeQueryGen{queries: []string{"q1"}},
			Search: &fakeSearcher{results: map[string][]Document{
				"q1": {{URL: "https://a.example/1", Content: "incident"}},
			}},
			Grader:    &fakeGrader{relevant: map[string]bool{"incident": true}},
			Extractor: &fakeExtractor{},
		}
	}

	tests := []struct {
		name  string
		build func() *Engine
	}{
		{"query generation fails", func() *Engine {
			e := base()
			e.Queries = &fakeQueryGen{err: boom}
			return e
		}},
		{"search fails", func() *Engine {
			e := base()
			e.Search = &fakeSearcher{err: boom}
			return e
		}},
		{"grading fails", func() *Engine {
			e := base()
			e.Grader = &fakeGrader{err: boom}
			return e
		}},
		{"extraction fails", func() *Engine {
			e := base()
			e.Extractor = &fakeExtractor{err: boom}
			return e
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build().Run(context.Background(), testQuery)
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestEngineEmptyQueryListIsAnError(t *testing.T) {
	engine := &Engine{
		Queries:   &fakeQueryGen{queries: []string{}},
		Search:    &fakeSearcher{},
		Grader:    &fakeGrader{},
		Extractor: &fakeExtractor{},
	}
	_, err := engine.Run(context.Background(), testQuery)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no queries")
}

func TestEngineSearchErrorNamesQuery(t *testing.T) {
	engine := &Engine{
		Queries:   &fakeQueryGen{queries: []string{"failing query"}},
		Search:    &fakeSearcher{err: fmt.Errorf("provider unavailable")},
		Grader:    &fakeGrader{},
		Extractor: &fakeExtractor{},
	}
	_, err := engine.Run(context.Background(), testQuery)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing query")
}
