package research

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// QueryGenerator produces the search queries for one risk query.
type QueryGenerator interface {
	GenerateQueries(ctx context.Context, q RiskQuery) ([]string, error)
}

const queryPromptTemplate = `You are a senior enterprise risk management researcher. Your specialty is identifying and generating highly targeted search queries that uncover the top-known risk scenarios for organizations, with a focus on risk exposure based on sector, organization name, and a specified risk type.

Given the sector, the organization name, the risk of interest, and the current date, generate exactly five detailed search queries designed to surface real-world scenarios in which the specified risk has impacted similar organizations or could impact the given organization now.

- Your queries should help uncover current or recent incidents, publications, or analysis related to the risk exposure.
- The first three queries should focus broadly on the sector, uncovering notable scenarios or case studies related to this type of risk within similar organizations.
- The final two queries should be tailored to the specific organization, uncovering incidents, events, or published analyses (including news, regulatory filings, or university bulletins, if applicable) relevant to the given risk, as recent as possible.
- All search queries should aim to surface practical, scenario-based information (not just statistics or general summaries).
- Use the current date to guide your focus towards recent and relevant sources.
- Output a JSON array of five strings, with no explanations and no markdown or code block formatting.

Sector: %s
Organization: %s
Risk: %s
Current Date: %s

Generate exactly five search queries as described. Your queries should help identify real scenarios for risk exposure for the organization and sector in question.`

// LLMQueryGenerator generates search queries with a single LLM call and
// parses the response as a JSON list of strings.
type LLMQueryGenerator struct {
	LLM llms.Model
}

func (g *LLMQueryGenerator) GenerateQueries(ctx context.Context, q RiskQuery) ([]string, error) {
	prompt := fmt.Sprintf(queryPromptTemplate,
		q.Sector, q.Organization, q.Risk, time.Now().Format("2006-01-02"))

	resp, err := llms.GenerateFromSinglePrompt(ctx, g.LLM, prompt)
	if err != nil {
		return nil, fmt.Errorf("query generation failed: %w", err)
	}

	queries, err := ParseQueryList(resp)
	if err != nil {
		return nil, fmt.Errorf("query generation: %w", err)
	}
	return queries, nil
}
