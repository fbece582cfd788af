package research

// RiskQuery identifies one research job: the organization, its sector, and
// the named risk we are collecting scenarios for. Immutable once created.
type RiskQuery struct {
	Sector       string `json:"sector"`
	Organization string `json:"organization"`
	Risk         string `json:"risk"`
}

// Scenario is one concrete, quantifiable risk scenario extracted from a
// document, with the reasoning that ties it back to the source text.
type Scenario struct {
	Reasoning string `json:"reasoning"`
	Scenario  string `json:"scenario"`
}

// Document is a single web search result. Scenarios is populated only for
// entries in ResearchState.ScenarioDocuments.
type Document struct {
	SearchQuery string     `json:"search_query"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Content     string     `json:"content"`
	Scenarios   []Scenario `json:"scenarios,omitempty"`
}

// ResearchState is the accumulating state of one workflow run. It is owned
// exclusively by the engine executing that run; steps receive it by pointer
// and mutate it in a strict sequence, never concurrently.
//
// Queries, Documents and ScenarioDocuments are append-only. GradedDocuments
// is replaced wholesale each time the grading step runs, reflecting a full
// re-evaluation of the current Documents set.
type ResearchState struct {
	Sector       string `json:"sector"`
	Organization string `json:"organization"`
	Risk         string `json:"risk"`

	Queries           []string   `json:"web_search_queries"`
	Documents         []Document `json:"documents"`
	GradedDocuments   []Document `json:"graded_documents"`
	ScenarioDocuments []Document `json:"scenario_documents"`
}

// NewResearchState returns a fresh state for one risk query, all collections
// empty.
func NewResearchState(q RiskQuery) *ResearchState {
	return &ResearchState{
		Sector:            q.Sector,
		Organization:      q.Organization,
		Risk:              q.Risk,
		Queries:           []string{},
		Documents:         []Document{},
		GradedDocuments:   []Document{},
		ScenarioDocuments: []Document{},
	}
}

// Query reconstructs the RiskQuery this state belongs to.
func (s *ResearchState) Query() RiskQuery {
	return RiskQuery{Sector: s.Sector, Organization: s.Organization, Risk: s.Risk}
}
