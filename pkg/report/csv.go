// Package report renders aggregated research results to the downloadable
// formats the frontend offers: a flat CSV of scenarios and a PDF summary.
package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/quantrisk/riskscan/pkg/batch"
)

var csvHeader = []string{
	"risk_name", "risk_definition", "search_query", "title", "url", "scenario", "reasoning",
}

// WriteCSV flattens the aggregate to one row per extracted scenario. Slots
// holding a failure marker contribute no rows.
func WriteCSV(w io.Writer, results []batch.RiskResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range results {
		if r.Results == nil {
			continue
		}
		for _, doc := range r.Results.ScenarioDocuments {
			for _, s := range doc.Scenarios {
				row := []string{
					r.RiskName,
					r.RiskDefinition,
					doc.SearchQuery,
					doc.Title,
					doc.URL,
					s.Scenario,
					s.Reasoning,
				}
				if err := writer.Write(row); err != nil {
					return fmt.Errorf("failed to write CSV row: %w", err)
				}
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
