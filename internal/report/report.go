package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"espiwatch/internal/finance"
)

// Header describes the disclosure a financial report was extracted from.
type Header struct {
	Title   string `json:"title"`
	Company string `json:"company"`
	Kind    string `json:"kind"`
	Period  string `json:"period"`
	URL     string `json:"url"`
}

// FinancialReport extraction result with its ratios, implements scraper.Content interface
type FinancialReport struct {
	header     Header
	result     *finance.Result
	ratios     finance.Ratios
	additional string
}

// NewFinancialReport creates a new FinancialReport instance
func NewFinancialReport(header Header, result *finance.Result, ratios finance.Ratios, additional string) *FinancialReport {
	if result == nil {
		result = finance.Extract("")
	}
	return &FinancialReport{
		header:     header,
		result:     result,
		ratios:     ratios,
		additional: additional,
	}
}

// Header returns the disclosure metadata
func (f *FinancialReport) Header() Header { return f.header }

// Result returns the extraction result
func (f *FinancialReport) Result() *finance.Result { return f.result }

// Ratios returns the computed ratios
func (f *FinancialReport) Ratios() finance.Ratios { return f.ratios }

func (f *FinancialReport) headerLines() []string {
	var lines []string
	for _, kv := range [][2]string{
		{"Spółka", f.header.Company},
		{"Typ raportu", f.header.Kind},
		{"Okres", f.header.Period},
		{"Źródło", f.header.URL},
	} {
		if kv[1] != "" {
			lines = append(lines, kv[0]+": "+kv[1])
		}
	}
	return lines
}

// ToText returns the aligned table followed by the highlights and ratios
func (f *FinancialReport) ToText() (string, error) {
	var sb strings.Builder
	if f.header.Title != "" {
		sb.WriteString(fmt.Sprintf("=== %s ===\n", f.header.Title))
	}
	for _, l := range f.headerLines() {
		sb.WriteString(l + "\n")
	}

	sb.WriteString("\n=== DANE FINANSOWE ===\n")
	sb.WriteString(Table(f.result))
	sb.WriteString("\n")

	if h := Highlights(f.result); h != "" {
		sb.WriteString("\n=== ANALIZA KLUCZOWYCH WSKAŹNIKÓW ===\n")
		sb.WriteString(h + "\n")
	}
	if r := RatioLines(f.ratios); r != "" {
		sb.WriteString("\n=== WSKAŹNIKI FINANSOWE ===\n")
		sb.WriteString(r + "\n")
	}
	if f.additional != "" {
		sb.WriteString("\n=== DODATKOWE INFORMACJE ===\n")
		sb.WriteString(f.additional + "\n")
	}
	return sb.String(), nil
}

// ToMarkdown returns Markdown format content
func (f *FinancialReport) ToMarkdown() (string, error) {
	var sb strings.Builder
	title := f.header.Title
	if title == "" {
		title = "Raport finansowy"
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	for _, l := range f.headerLines() {
		sb.WriteString(fmt.Sprintf("- %s\n", l))
	}

	sb.WriteString("\n## Dane finansowe\n\n")
	if f.result.Empty() {
		sb.WriteString(NoData + "\n")
	} else {
		sb.WriteString("| Pozycja | Bieżący | Poprzedni | Zmiana | % | Trend |\n")
		sb.WriteString("|---|---|---|---|---|---|\n")
		for _, key := range f.result.Keys() {
			cur, ok := f.result.Current[key]
			if !ok {
				continue
			}
			prior, delta, pct, trend := "-", "-", "-", "-"
			if v, ok := f.result.Prior[key]; ok {
				prior = FormatNumber(v)
			}
			if c, ok := f.result.Comparisons[key]; ok {
				delta = formatDelta(c.AbsoluteDelta)
				pct = formatPercent(c, "N/A")
				trend = TrendSymbol(c.Trend) + " " + c.Trend.Polish()
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
				finance.Label(key), FormatNumber(cur), prior, delta, pct, trend))
		}
	}

	if h := Highlights(f.result); h != "" {
		sb.WriteString("\n## Kluczowe wskaźniki\n\n")
		sb.WriteString(h + "\n")
	}
	if r := RatioLines(f.ratios); r != "" {
		sb.WriteString("\n## Wskaźniki finansowe\n\n")
		sb.WriteString(r + "\n")
	}
	if f.additional != "" {
		sb.WriteString("\n## Dodatkowe informacje\n\n")
		sb.WriteString(f.additional + "\n")
	}
	return sb.String(), nil
}

// ToHTML returns HTML format content
func (f *FinancialReport) ToHTML() (string, error) {
	text, err := f.ToText()
	if err != nil {
		return "", err
	}
	return "<pre>" + html.EscapeString(text) + "</pre>", nil
}

// ToCSV returns CSV format content: the metric table, then the ratios
func (f *FinancialReport) ToCSV() (string, error) {
	var buf bytes.Buffer
	if err := f.WriteCSV(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteCSV writes the CSV content to out.
func (f *FinancialReport) WriteCSV(out io.Writer) error {
	if _, err := fmt.Fprintf(out, "# Dane finansowe (%s)\n", f.header.Company); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	w := csv.NewWriter(out)
	_ = w.Write([]string{"Klucz", "Pozycja", "Bieżący", "Poprzedni", "Zmiana", "Zmiana %", "Trend"})
	for _, key := range f.result.Keys() {
		cur, ok := f.result.Current[key]
		if !ok {
			continue
		}
		record := []string{string(key), finance.Label(key), formatRaw(cur), "", "", "", ""}
		if v, ok := f.result.Prior[key]; ok {
			record[3] = formatRaw(v)
		}
		if c, ok := f.result.Comparisons[key]; ok {
			record[4] = formatRaw(c.AbsoluteDelta)
			if !c.IsNew() {
				record[5] = formatRaw(c.PercentDelta)
			}
			record[6] = string(c.Trend)
		}
		_ = w.Write(record)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	if len(f.ratios) == 0 {
		return nil
	}
	if _, err := io.WriteString(out, "\n# Wskaźniki\n"); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	_ = w.Write([]string{"Klucz", "Wskaźnik", "Wartość"})
	for _, key := range finance.RatioOrder {
		if v, ok := f.ratios[key]; ok {
			_ = w.Write([]string{string(key), finance.RatioLabel(key), v})
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// ToJSON returns JSON format content
func (f *FinancialReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(struct {
		Header
		Financials     *finance.Result `json:"financials"`
		Ratios         finance.Ratios  `json:"ratios"`
		AdditionalInfo string          `json:"additional_info,omitempty"`
	}{
		Header:         f.header,
		Financials:     f.result,
		Ratios:         f.ratios,
		AdditionalInfo: f.additional,
	}, "", "  ")
}

func formatRaw(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
