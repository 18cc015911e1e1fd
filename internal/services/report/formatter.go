package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/tidwall/pretty"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/bobmcallan/valuescope/internal/models"
)

// Output formats
const (
	FormatNameText     = "text"
	FormatNameMarkdown = "markdown"
	FormatNameHTML     = "html"
	FormatNameJSON     = "json"
)

// capitalColumns are the columns of the capital structure table.
var capitalColumns = []string{
	models.ColTicker, models.ColDebtToEquity, models.ColLtDebtToEquity,
	models.ColCurrentRatio, models.ColQuickRatio,
}

// ValidFormat reports whether format names a supported output format.
func ValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case "", FormatNameText, FormatNameMarkdown, "md", FormatNameHTML, FormatNameJSON:
		return true
	}
	return false
}

// Render formats the table in the named format and returns the bytes and
// content type.
func Render(table *models.Table, format string) ([]byte, string, error) {
	switch strings.ToLower(format) {
	case "", FormatNameText:
		return []byte(FormatText(table)), "text/plain; charset=utf-8", nil
	case FormatNameMarkdown, "md":
		return []byte(FormatMarkdown(table)), "text/markdown; charset=utf-8", nil
	case FormatNameHTML:
		out, err := FormatHTML(table)
		if err != nil {
			return nil, "", err
		}
		return []byte(out), "text/html; charset=utf-8", nil
	case FormatNameJSON:
		out, err := FormatJSON(table)
		if err != nil {
			return nil, "", err
		}
		return out, "application/json", nil
	default:
		return nil, "", fmt.Errorf("unknown format %q (want text, markdown, html or json)", format)
	}
}

// FormatMarkdown renders the summary, capital structure, per-company detail
// and skipped-ticker sections.
func FormatMarkdown(table *models.Table) string {
	var sb strings.Builder

	sb.WriteString("# Valuation Report\n\n")
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n", table.GeneratedAt.Format("2006-01-02 15:04")))
	if table.RunID != "" {
		sb.WriteString(fmt.Sprintf("**Run:** %s\n", table.RunID))
	}
	sb.WriteString(fmt.Sprintf("**Companies:** %d analysed, %d skipped\n\n", len(table.Rows), len(table.Skipped)))

	sb.WriteString("## Summary\n\n")
	writeMarkdownTable(&sb, table.Columns, table.Rows)

	sb.WriteString("## Capital Structure\n\n")
	writeMarkdownTable(&sb, capitalColumns, table.Rows)

	sb.WriteString("## Company Detail\n\n")
	for _, row := range table.Rows {
		writeCompanyDetail(&sb, row)
	}

	if len(table.Skipped) > 0 {
		sb.WriteString("## Skipped\n\n")
		for _, s := range table.Skipped {
			sb.WriteString(fmt.Sprintf("- **%s**: %s\n", s.Ticker, s.Reason))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeMarkdownTable(sb *strings.Builder, columns []string, rows []models.Row) {
	sb.WriteString("| " + strings.Join(columns, " | ") + " |\n")
	seps := make([]string, len(columns))
	for i, c := range columns {
		seps[i] = strings.Repeat("-", max(3, len(c)))
	}
	sb.WriteString("|" + strings.Join(seps, "|") + "|\n")

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = escapeCell(row.Display[c])
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	sb.WriteString("\n")
}

func writeCompanyDetail(sb *strings.Builder, row models.Row) {
	d := row.Display
	sb.WriteString(fmt.Sprintf("### %s (%s)\n\n", row.Profile.Name, row.Ticker))
	sb.WriteString(fmt.Sprintf("%s | %s | %s\n\n", row.Profile.Sector, row.Profile.Industry, row.Profile.Country))
	sb.WriteString("| Metric | Value | Metric | Value | Metric | Value |\n")
	sb.WriteString("|--------|-------|--------|-------|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Price | %s | ROE | %s | Debt/Eq | %s |\n", d[models.ColPrice], d[models.ColROE], d[models.ColDebtToEquity]))
	sb.WriteString(fmt.Sprintf("| P/E | %s | ROIC | %s | Profit Margin | %s |\n", d[models.ColPE], d[models.ColROIC], d[models.ColProfitMargin]))
	sb.WriteString(fmt.Sprintf("| P/B | %s | WACC | %s | Dividend Yield | %s |\n\n", d[models.ColPB], d[models.ColWACC], d[models.ColDividendYield]))

	switch {
	case row.CreatesValue == nil:
		sb.WriteString("**Value creation:** insufficient data for ROIC/WACC analysis\n\n")
	case *row.CreatesValue:
		sb.WriteString(fmt.Sprintf("**Value creation:** creating value, ROIC exceeds WACC (%s)\n\n", d[models.ColSpread]))
	default:
		sb.WriteString(fmt.Sprintf("**Value creation:** destroying value, ROIC below WACC (%s)\n\n", d[models.ColSpread]))
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// FormatHTML converts the markdown report to an HTML document.
func FormatHTML(table *models.Table) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var body bytes.Buffer
	if err := md.Convert([]byte(FormatMarkdown(table)), &body); err != nil {
		return "", fmt.Errorf("failed to render HTML report: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Valuation Report</title>\n")
	sb.WriteString("<style>body{font-family:sans-serif;margin:2em}table{border-collapse:collapse;margin-bottom:1.5em}")
	sb.WriteString("th,td{border:1px solid #d1d5db;padding:4px 8px;text-align:right}th{background:#f3f4f6}</style>\n")
	sb.WriteString("</head>\n<body>\n")
	sb.Write(body.Bytes())
	sb.WriteString("</body>\n</html>\n")
	return sb.String(), nil
}

// FormatText renders the summary table aligned for a terminal.
func FormatText(table *models.Table) string {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(table.Columns, "\t"))
	for _, row := range table.Rows {
		cells := make([]string, len(table.Columns))
		for i, c := range table.Columns {
			cells[i] = row.Display[c]
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()

	if len(table.Skipped) > 0 {
		buf.WriteString("\nSkipped:\n")
		for _, s := range table.Skipped {
			fmt.Fprintf(&buf, "  %s: %s\n", s.Ticker, s.Reason)
		}
	}
	return buf.String()
}

// FormatJSON returns the table as indented JSON.
func FormatJSON(table *models.Table) ([]byte, error) {
	data, err := json.Marshal(table)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal table: %w", err)
	}
	return pretty.Pretty(data), nil
}
