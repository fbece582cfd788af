package clients

import (
	"fmt"

	"github.com/tmc/langchaingo/llms/openai"
)

// AzureOpenAI builds the Azure-hosted OpenAI chat model used by the research
// workflow's three LLM steps.
func AzureOpenAI(apiKey, endpoint, apiVersion, model string) (*openai.LLM, error) {
	if apiKey == "" || endpoint == "" {
		return nil, fmt.Errorf("azure openai requires AZUREOPENAI_API_KEY and AZUREOPENAI_ENDPOINT")
	}

	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(model),
		openai.WithBaseURL(endpoint),
		openai.WithAPIType(openai.APITypeAzure),
		openai.WithAPIVersion(apiVersion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init azure openai client: %w", err)
	}
	return llm, nil
}
