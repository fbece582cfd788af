package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/quantrisk/riskscan/pkg/batch"
)

// WritePDF renders the aggregate as a PDF: one section per risk with each
// source's link, query, and scenario bullets (reasoning as a sub-bullet),
// followed by a footnote section listing the source content referenced by
// superscript markers.
func WritePDF(w io.Writer, results []batch.RiskResult) error {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	var footnotes []string
	footnoteIndex := map[string]int{}

	for _, r := range results {
		pdf.AddPage()

		pdf.SetFont("Helvetica", "B", 16)
		pdf.MultiCell(0, 8, tr(r.RiskName), "", "L", false)

		pdf.SetFont("Helvetica", "", 11)
		if r.RiskDefinition != "" {
			pdf.MultiCell(0, 5, tr(r.RiskDefinition), "", "L", false)
		}
		pdf.Ln(4)

		if r.Failed() {
			pdf.SetFont("Helvetica", "I", 11)
			pdf.MultiCell(0, 5, tr("Research failed: "+r.Error), "", "L", false)
			continue
		}

		for _, doc := range r.Results.ScenarioDocuments {
			pdf.SetFont("Helvetica", "B", 12)
			pdf.SetTextColor(37, 99, 235)
			pdf.WriteLinkString(6, tr("LINK: "+doc.Title), doc.URL)
			pdf.Ln(7)
			pdf.SetTextColor(0, 0, 0)

			query := "Query: " + doc.SearchQuery
			if doc.Content != "" {
				n, ok := footnoteIndex[doc.Content]
				if !ok {
					footnotes = append(footnotes, doc.Content)
					n = len(footnotes)
					footnoteIndex[doc.Content] = n
				}
				query = fmt.Sprintf("%s [%d]", query, n)
			}
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 5, tr(query), "", "L", false)

			for _, s := range doc.Scenarios {
				pdf.SetFont("Helvetica", "B", 11)
				pdf.MultiCell(0, 5, tr("  • "+s.Scenario), "", "L", false)
				if s.Reasoning != "" {
					pdf.SetFont("Helvetica", "", 11)
					pdf.MultiCell(0, 5, tr("      - "+s.Reasoning), "", "L", false)
				}
			}
			pdf.Ln(4)
		}
	}

	if len(footnotes) > 0 {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 16)
		pdf.MultiCell(0, 8, "Source Content", "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		for i, content := range footnotes {
			pdf.MultiCell(0, 5, tr(fmt.Sprintf("%d. %s", i+1, content)), "", "L", false)
			pdf.Ln(2)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return nil
}
