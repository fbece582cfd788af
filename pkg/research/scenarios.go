package research

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// Extractor pulls the quantifiable risk scenarios out of one relevant
// document. The returned list preserves the document's narrative order and
// may be empty.
type Extractor interface {
	Extract(ctx context.Context, q RiskQuery, doc Document) ([]Scenario, error)
}

const extractorPromptTemplate = `You are a risk quantification expert.

Given the following information:
Sector: %s
Organization: %s
Risk of interest: %s
Document: %s
Current Date: %s

Task:
Carefully read the document.
Identify and extract all distinct, quantifiable risk scenarios described or implied in the document that relate to the specified risk.
For each scenario:
- First, provide the reasoning for why this scenario was identified, referencing specific information or implications from the document.
- Then, clearly state the risk scenario itself.
Each scenario should be specific, actionable, and relevant to the risk and organization (e.g., "A ransomware attack encrypts company records, requiring payment for access").
Focus on scenarios that could plausibly impact the organization, referencing incidents in the sector or specific to the organization if available.
Output your answer as a JSON array of objects, each with two keys:
    - "reasoning": A brief explanation of why this scenario was identified, based on the document.
    - "scenario": The scenario description (as a string).

Output format:
[
  {"reasoning": "<reasoning for scenario 1>", "scenario": "<scenario 1>"},
  {"reasoning": "<reasoning for scenario 2>", "scenario": "<scenario 2>"}
]

Only output the JSON array, with no extra commentary and no code block formatting.`

// LLMExtractor extracts scenarios with one LLM call per document and parses
// the response against the strict scenario schema.
type LLMExtractor struct {
	LLM llms.Model
}

func (e *LLMExtractor) Extract(ctx context.Context, q RiskQuery, doc Document) ([]Scenario, error) {
	prompt := fmt.Sprintf(extractorPromptTemplate,
		q.Sector, q.Organization, q.Risk, doc.Content, time.Now().Format("2006-01-02"))

	resp, err := llms.GenerateFromSinglePrompt(ctx, e.LLM, prompt)
	if err != nil {
		return nil, fmt.Errorf("scenario extraction failed for %s: %w", doc.URL, err)
	}

	scenarios, err := ParseScenarioList(resp)
	if err != nil {
		return nil, fmt.Errorf("scenario extraction for %s: %w", doc.URL, err)
	}
	return scenarios, nil
}
