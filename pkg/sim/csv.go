package sim

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ScenarioSim is one simulation parsed from tabular input: a scenario's
// formula plus the variable rows that belong to it.
type ScenarioSim struct {
	Risk          string     `json:"risk"`
	Scenario      string     `json:"scenario"`
	Formula       string     `json:"formula"`
	FormulaEquals string     `json:"formula_equals"`
	Variables     []Variable `json:"variables"`
}

// ScenarioResult pairs a parsed scenario with its simulation output.
type ScenarioResult struct {
	ScenarioSim
	Summary Summary   `json:"summary"`
	Samples []float64 `json:"samples"`
}

// ParseScenarioCSV reads scenario variable rows from a CSV table. Expected
// columns (case-insensitive): risk, scenario, formula, formula_equals,
// variable, distribution, and the distribution's parameter columns (mean,
// std_dev, min, mode, max). Rows sharing (risk, scenario, formula,
// formula_equals) form one scenario; row order is preserved.
func ParseScenarioCSV(r io.Reader) ([]ScenarioSim, error) {
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
	for _, required := range []string{"risk", "scenario", "formula", "variable", "distribution"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("CSV is missing required column %q", required)
		}
	}

	var order []string
	groups := make(map[string]*ScenarioSim)

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

		variable, err := parseVariableRow(field)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		key := field("risk") + "\x00" + field("scenario") + "\x00" + field("formula") + "\x00" + field("formula_equals")
		group, ok := groups[key]
		if !ok {
			group = &ScenarioSim{
				Risk:          field("risk"),
				Scenario:      field("scenario"),
				Formula:       field("formula"),
				FormulaEquals: field("formula_equals"),
			}
			groups[key] = group
			order = append(order, key)
		}
		group.Variables = append(group.Variables, variable)
	}

	scenarios := make([]ScenarioSim, 0, len(order))
	for _, key := range order {
		scenarios = append(scenarios, *groups[key])
	}
	return scenarios, nil
}

func parseVariableRow(field func(string) string) (Variable, error) {
	name := field("variable")
	dist := strings.ToLower(field("distribution"))
	if name == "" {
		return Variable{}, fmt.Errorf("empty variable name")
	}

	params := map[string]float64{}
	addParam := func(key string, columns ...string) error {
		for _, c := range columns {
			raw := field(c)
			if raw == "" {
				continue
			}
			val, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("column %q of variable %q is not a number: %q", c, name, raw)
			}
			params[key] = val
			return nil
		}
		return fmt.Errorf("variable %q is missing %s", name, key)
	}

	switch dist {
	case "normal", "lognormal":
		if err := addParam("mean", "mean"); err != nil {
			return Variable{}, err
		}
		if err := addParam("stddev", "std_dev", "stddev"); err != nil {
			return Variable{}, err
		}
	case "triangular":
		for _, key := range []string{"min", "mode", "max"} {
			if err := addParam(key, key); err != nil {
				return Variable{}, err
			}
		}
	case "uniform":
		for _, key := range []string{"min", "max"} {
			if err := addParam(key, key); err != nil {
				return Variable{}, err
			}
		}
	default:
		return Variable{}, fmt.Errorf("unsupported distribution %q for variable %q", dist, name)
	}

	return Variable{Name: name, Distribution: dist, Parameters: params}, nil
}

// RunScenarios simulates every parsed scenario with the given trial count.
func RunScenarios(scenarios []ScenarioSim, trials int) ([]ScenarioResult, error) {
	results := make([]ScenarioResult, 0, len(scenarios))
	for _, sc := range scenarios {
		out, err := Run(Request{Variables: sc.Variables, Formula: sc.Formula, NumTrials: trials})
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", sc.Scenario, err)
		}
		results = append(results, ScenarioResult{
			ScenarioSim: sc,
			Summary:     out.Summary,
			Samples:     out.Samples,
		})
	}
	return results, nil
}
