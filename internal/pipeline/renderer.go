package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/revstat/internal/model"
)

// Renderer writes reports as JSON, Markdown or a console summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := marshalReport(report)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteJSON writes the report as indented JSON to w
func (r *Renderer) WriteJSON(w io.Writer, report *model.Report) error {
	data, err := marshalReport(report)
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func marshalReport(report *model.Report) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// RenderMarkdown writes the report as a Markdown document
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	if err := os.WriteFile(path, []byte(r.Markdown(report)), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Markdown renders the report as Markdown
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Review Analysis: %s\n\n", mdEscape(report.Subject))
	fmt.Fprintf(&b, "- Source: `%s`\n", report.Source)
	fmt.Fprintf(&b, "- Run: `%s`\n", report.RunID)
	fmt.Fprintf(&b, "- Analyzed: %s\n", report.AnalyzedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- Rows: %d read, %d cleaned, %d rejected\n\n",
		report.Input.Rows, report.Input.Cleaned, report.Input.Rejected)

	s := report.Summary
	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|---|---|\n")
	fmt.Fprintf(&b, "| Most reviewed app | %s |\n", mdEscape(s.MostReviewedApp))
	fmt.Fprintf(&b, "| Reviews | %d |\n", s.MostReviews)
	fmt.Fprintf(&b, "| Most used device | %s |\n", mdEscape(s.MostUsedDevice))
	fmt.Fprintf(&b, "| Device reviews | %d |\n", s.MostDevices)
	fmt.Fprintf(&b, "| Average rating | %.3f |\n\n", s.AvgRating)

	b.WriteString("## Sentiment by App\n\n")
	writeCountsHeader(&b, "App")
	for _, a := range report.ByApp {
		writeCountsRow(&b, a.AppName, a.SentimentCounts)
	}
	b.WriteString("\n")

	b.WriteString("## Sentiment by Language\n\n")
	writeCountsHeader(&b, "Language")
	for _, l := range report.ByLanguage {
		writeCountsRow(&b, l.LangName, l.SentimentCounts)
	}
	b.WriteString("\n")

	if len(report.Input.RejectReasons) > 0 {
		b.WriteString("## Rejected Rows\n\n")
		b.WriteString("| Reason | Count |\n")
		b.WriteString("|---|---:|\n")

		reasons := make([]string, 0, len(report.Input.RejectReasons))
		for reason := range report.Input.RejectReasons {
			reasons = append(reasons, string(reason))
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Fprintf(&b, "| %s | %d |\n", reason, report.Input.RejectReasons[model.RejectReason(reason)])
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("_Generated by revstat. Sentiment is derived from star ratings only._\n")
	}

	return b.String()
}

// RenderSummary prints a short human-readable summary
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	s := report.Summary

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  %s\n", report.Subject)
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Rows:              %d read, %d cleaned, %d rejected\n",
		report.Input.Rows, report.Input.Cleaned, report.Input.Rejected)
	fmt.Fprintf(w, "  Apps:              %d\n", len(report.ByApp))
	fmt.Fprintf(w, "  Languages:         %d\n", len(report.ByLanguage))
	fmt.Fprintf(w, "  Most reviewed app: %s (%d reviews)\n", s.MostReviewedApp, s.MostReviews)
	fmt.Fprintf(w, "  Most used device:  %s (%d reviews)\n", s.MostUsedDevice, s.MostDevices)
	fmt.Fprintf(w, "  Average rating:    %.3f\n", s.AvgRating)
	fmt.Fprintf(w, "\n")
}

func writeCountsHeader(b *strings.Builder, label string) {
	fmt.Fprintf(b, "| %s | Positive | Neutral | Negative | Total |\n", label)
	b.WriteString("|---|---:|---:|---:|---:|\n")
}

func writeCountsRow(b *strings.Builder, key string, c model.SentimentCounts) {
	fmt.Fprintf(b, "| %s | %d | %d | %d | %d |\n", mdEscape(key), c.Positive, c.Neutral, c.Negative, c.Total())
}

// mdEscape keeps values from breaking table cells
func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
