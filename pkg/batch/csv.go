package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ParseRiskCSV reads a batch submission from tabular input. Expected columns
// (case-insensitive): risk_name, sector, organization, and optionally
// risk_definition. Rows missing a required field are submission errors, not
// jobs that fail later.
func ParseRiskCSV(r io.Reader) ([]RiskJob, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"risk_name", "sector", "organization"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("CSV is missing required column %q", required)
		}
	}

	var jobs []RiskJob
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		line++

		field := func(name string) string {
			idx, ok := col[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		job := RiskJob{
			RiskName:       field("risk_name"),
			RiskDefinition: field("risk_definition"),
			Sector:         field("sector"),
			Organization:   field("organization"),
		}
		if err := job.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		jobs = append(jobs, job)
	}

	if len(jobs) == 0 {
		return nil, fmt.Errorf("CSV contains no risk rows")
	}
	return jobs, nil
}

// Validate reports the first missing required field.
func (j RiskJob) Validate() error {
	switch {
	case j.RiskName == "":
		return fmt.Errorf("missing risk_name")
	case j.Sector == "":
		return fmt.Errorf("missing sector")
	case j.Organization == "":
		return fmt.Errorf("missing organization")
	}
	return nil
}
