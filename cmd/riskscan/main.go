package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/quantrisk/riskscan/pkg/batch"
	"github.com/quantrisk/riskscan/pkg/clients"
	"github.com/quantrisk/riskscan/pkg/config"
	"github.com/quantrisk/riskscan/pkg/report"
	"github.com/quantrisk/riskscan/pkg/research"
	"github.com/quantrisk/riskscan/pkg/research/tools"
)

var (
	sector       string
	organization string
	risk         string
	csvPath      string
	outPath      string
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	// Load .env file
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist, as long as env vars are set
	}

	rootCmd := &cobra.Command{
		Use:   "riskscan",
		Short: "Research and quantify organizational risk scenarios",
		Long:  `riskscan researches a named risk for an organization by generating search queries, searching the web, grading the results for relevance, and extracting quantifiable risk scenarios.`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.Load()

			engine, err := buildEngine(cfg)
			if err != nil {
				slog.Error("Failed to initialize engine", "error", err)
				os.Exit(1)
			}

			jobs, err := loadJobs()
			if err != nil {
				slog.Error("Failed to load risks", "error", err)
				os.Exit(1)
			}

			slog.Info("Starting research", "risks", len(jobs))
			coordinator := batch.NewCoordinator(engine, cfg.WorkerConcurrency, slog.Default())
			results := coordinator.Run(context.Background(), jobs)

			if err := writeResults(results); err != nil {
				slog.Error("Failed to write results", "error", err)
				os.Exit(1)
			}
		},
	}

	rootCmd.Flags().StringVarP(&sector, "sector", "s", "", "The organization's sector")
	rootCmd.Flags().StringVarP(&organization, "organization", "o", "", "The organization name")
	rootCmd.Flags().StringVarP(&risk, "risk", "r", "", "The risk to research")
	rootCmd.Flags().StringVarP(&csvPath, "csv", "f", "", "CSV file with risk_name, risk_definition, sector, organization columns")
	rootCmd.Flags().StringVar(&outPath, "out", "", "Write results to this file (.csv for flat scenarios, anything else for JSON)")

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}

func buildEngine(cfg *config.Config) (*research.Engine, error) {
	llm, err := clients.FromConfig(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	searcher := tools.NewTavilySearch(cfg.TavilyApiKey)
	searcher.MaxResults = cfg.SearchMaxResults

	return &research.Engine{
		Queries:   &research.LLMQueryGenerator{LLM: llm},
		Search:    searcher,
		Grader:    &research.LLMGrader{LLM: llm},
		Extractor: &research.LLMExtractor{LLM: llm},
	}, nil
}

func loadJobs() ([]batch.RiskJob, error) {
	if csvPath != "" {
		f, err := os.Open(csvPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return batch.ParseRiskCSV(f)
	}

	job := batch.RiskJob{RiskName: risk, Sector: sector, Organization: organization}
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("provide --csv or all of --sector, --organization and --risk: %w", err)
	}
	return []batch.RiskJob{job}, nil
}

func writeResults(results []batch.RiskResult) error {
	if outPath == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if len(outPath) > 4 && outPath[len(outPath)-4:] == ".csv" {
		return report.WriteCSV(f, results)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
