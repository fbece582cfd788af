package clients

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/quantrisk/riskscan/pkg/config"
)

// ModelType is an enum for the available Google AI models.
type ModelType string

const (
	DefaultGoogleModel ModelType = "gemini-2.5-flash"
)

// GoogleAi builds a Gemini chat model. Used as the fallback provider when no
// Azure OpenAI endpoint is configured.
func GoogleAi(ctx context.Context, apiKey string, model ModelType) (*googleai.GoogleAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google ai requires GOOGLE_API_KEY")
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(string(model)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init google ai client: %w", err)
	}
	return llm, nil
}

// FromConfig picks the configured provider: Azure OpenAI when an endpoint is
// set, Gemini otherwise.
func FromConfig(ctx context.Context, cfg *config.Config) (llms.Model, error) {
	if cfg.AzureOpenAIEndpoint != "" {
		return AzureOpenAI(cfg.AzureOpenAIKey, cfg.AzureOpenAIEndpoint, cfg.AzureAPIVersion, cfg.Model)
	}
	return GoogleAi(ctx, cfg.GoogleApiKey, DefaultGoogleModel)
}
