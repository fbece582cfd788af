package report

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantrisk/riskscan/pkg/batch"
	"github.com/quantrisk/riskscan/pkg/research"
)

func sampleResults() []batch.RiskResult {
	state := research.NewResearchState(research.RiskQuery{
		Sector: "higher education", Organization: "Northwestern University", Risk: "cybersecurity",
	})
	state.ScenarioDocuments = []research.Document{
		{
			SearchQuery: "university ransomware incidents",
			Title:       "Breach at peer university",
			URL:         "https://news.example/breach",
			Content:     "incident writeup",
			Scenarios: []research.Scenario{
				{Reasoning: "ransom was paid", Scenario: "Ransomware encrypts student records"},
				{Reasoning: "downtime reported", Scenario: "Extended outage of enrollment systems"},
			},
		},
		{
			SearchQuery: "university ransomware incidents",
			Title:       "No scenarios here",
			URL:         "https://news.example/empty",
		},
	}

	return []batch.RiskResult{
		{RiskName: "cybersecurity", RiskDefinition: "Loss from compromised systems", Results: state},
		{RiskName: "flood", Error: "search provider unavailable"},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResults()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	// Header plus one row per scenario. The failed slot and the document
	// without scenarios contribute nothing.
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{
		"cybersecurity",
		"Loss from compromised systems",
		"university ransomware incidents",
		"Breach at peer university",
		"https://news.example/breach",
		"Ransomware encrypts student records",
		"ransom was paid",
	}, rows[1])
	assert.Equal(t, "Extended outage of enrollment systems", rows[2][5])
}

func TestWriteCSVEmptyAggregate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, csvHeader, rows[0])
}

func TestWritePDFProducesDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, sampleResults()))

	// A valid PDF starts with the version marker.
	require.Greater(t, buf.Len(), 1000)
	assert.Equal(t, "%PDF", buf.String()[:4])
}

func TestWritePDFEmptyAggregate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, nil))
	assert.Equal(t, "%PDF", buf.String()[:4])
}
