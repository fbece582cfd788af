package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// Grader decides whether a document holds enough concrete incident
// information to derive risk scenarios from.
type Grader interface {
	Grade(ctx context.Context, q RiskQuery, content string) (bool, error)
}

const graderPromptTemplate = `Given the following information:
- Risk: %s
- Sector: %s
- Organization: %s
- Document: %s

Your task is to determine if the provided document contains enough information to generate a list of plausible risk scenarios that could impact the organization. These scenarios should be based on incidents of the specified risk that have occurred in the sector or are specific to the organization.

A document contains "enough information" if it describes actual incidents, events, or situations related to the risk, either in the sector or at the organization, that could be used to construct detailed risk scenarios (e.g., ransomware attacks, data breaches, regulatory fines, etc.).

Respond with only a single word: "True" if the document contains enough information, or "False" if it does not.`

// LLMGrader grades relevance with one LLM call per document. Empty or
// whitespace-only content is graded false without calling the model.
type LLMGrader struct {
	LLM llms.Model
}

func (g *LLMGrader) Grade(ctx context.Context, q RiskQuery, content string) (bool, error) {
	if strings.TrimSpace(content) == "" {
		return false, nil
	}

	resp, err := g.LLM.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, "You are an expert risk quantification analyst."),
		llms.TextParts(llms.ChatMessageTypeHuman,
			fmt.Sprintf(graderPromptTemplate, q.Risk, q.Sector, q.Organization, content)),
	})
	if err != nil {
		return false, fmt.Errorf("document grading failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return false, nil
	}
	return ParseBool(resp.Choices[0].Content), nil
}
