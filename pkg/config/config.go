package config

import (
	"os"
	"strconv"
)

type Config struct {
	AzureOpenAIKey      string
	AzureOpenAIEndpoint string
	AzureAPIVersion     string
	GoogleApiKey        string
	TavilyApiKey        string
	DatabaseURL         string
	Port                string
	Model               string
	WorkerConcurrency   int
	SearchMaxResults    int
}

func Load() *Config {
	return &Config{
		AzureOpenAIKey:      getEnv("AZUREOPENAI_API_KEY", ""),
		AzureOpenAIEndpoint: getEnv("AZUREOPENAI_ENDPOINT", ""),
		AzureAPIVersion:     getEnv("AZUREOPENAI_API_VERSION", "2024-10-01-preview"),
		GoogleApiKey:        getEnv("GOOGLE_API_KEY", ""),
		TavilyApiKey:        getEnv("TAVILY_API_KEY", ""),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		Port:                getEnv("PORT", "8081"),
		Model:               getEnv("MODEL", "gpt-4o"),
		WorkerConcurrency:   getEnvAsInt("WORKER_CONCURRENCY", 8),
		SearchMaxResults:    getEnvAsInt("SEARCH_MAX_RESULTS", 2),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
