package report

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"espiwatch/internal/finance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBlock = `Przychody ze sprzedaży
1 000 000
800 000
100 000
90 000
Zysk netto
150 000
120 000`

func sampleReport() *FinancialReport {
	res := finance.Extract(sampleBlock)
	return NewFinancialReport(Header{
		Title:   "Raport półroczny",
		Company: "ACME S.A.",
		Kind:    "Raport półroczny",
		Period:  "I półrocze 2025",
		URL:     "https://espiebi.pap.pl/node/1",
	}, res, finance.ComputeRatios(res.Current, res.Prior), "")
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1000000, "1 000 000"},
		{921703, "921 703"},
		{-12500, "-12 500"},
		{1000, "1 000"},
		{999.5, "999.50"},
		{12.5, "12.50"},
		{-0.75, "-0.75"},
		{0, "0.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in), tt.in)
	}
}

func TestTrendSymbol(t *testing.T) {
	want := map[finance.Trend]string{
		finance.TrendGrowth:    "📈",
		finance.TrendDecline:   "📉",
		finance.TrendStable:    "➡️",
		finance.TrendUnchanged: "⚫",
		finance.TrendNew:       "🆕",
	}
	for _, tr := range finance.Trends {
		assert.Equal(t, want[tr], TrendSymbol(tr))
	}
	assert.Equal(t, "❓", TrendSymbol("other"))
}

func TestTable(t *testing.T) {
	table := Table(finance.Extract(sampleBlock))
	lines := strings.Split(table, "\n")

	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Pozycja"))
	assert.Equal(t, strings.Repeat("=", 110), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "Przychody ze sprzedaży"))
	assert.Contains(t, lines[2], "1 000 000")
	assert.Contains(t, lines[2], "800 000")
	assert.Contains(t, lines[2], "+200 000")
	assert.Contains(t, lines[2], "+25.0%")
	assert.True(t, strings.HasSuffix(lines[2], "📈 wzrost"))
	assert.Contains(t, lines[3], "Zysk netto")
}

func TestTable_NewMetric(t *testing.T) {
	// Given a metric whose prior value is an explicit zero
	res := finance.Extract("Zysk netto\n5\n0")

	// When
	table := Table(res)

	// Then the percent column cannot be computed
	assert.Contains(t, table, "N/A")
	assert.Contains(t, table, "🆕 nowy")
}

func TestTable_NoData(t *testing.T) {
	assert.Equal(t, NoData, Table(finance.Extract("")))
	assert.Equal(t, NoData, Table(nil))
}

func TestHighlights(t *testing.T) {
	got := Highlights(finance.Extract(sampleBlock))
	assert.Equal(t, "• Przychody ze sprzedaży: +25.0% 📈\n• Zysk netto: +25.0% 📈", got)

	got = Highlights(finance.Extract("Zysk netto\n5\n0\nAktywa razem\n100\n101"))
	assert.Equal(t, "• Zysk netto: nowa pozycja 🆕\n• Aktywa razem: -1.0% ➡️", got)

	assert.Empty(t, Highlights(nil))
}

func TestRatioLines(t *testing.T) {
	got := RatioLines(finance.Ratios{
		finance.RevenueGrowth: "+25.00%",
		finance.NetMargin:     "15.00%",
		finance.RatioError:    "błąd obliczania wskaźników: x",
	})
	assert.Equal(t, "• Rentowność netto: 15.00%\n• Wzrost przychodów (r/r): +25.00%\n• Błąd: błąd obliczania wskaźników: x", got)
}

func TestFinancialReport_ToText(t *testing.T) {
	text, err := sampleReport().ToText()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(text, "=== Raport półroczny ===\nSpółka: ACME S.A.\n"))
	assert.Contains(t, text, "=== DANE FINANSOWE ===")
	assert.Contains(t, text, "=== ANALIZA KLUCZOWYCH WSKAŹNIKÓW ===\n• Przychody ze sprzedaży: +25.0% 📈")
	assert.Contains(t, text, "• Rentowność netto: 15.00%")
	assert.NotContains(t, text, "DODATKOWE INFORMACJE")
}

func TestFinancialReport_Empty(t *testing.T) {
	r := NewFinancialReport(Header{Company: "ACME"}, nil, nil, "Komentarz zarządu: bez zmian")

	text, err := r.ToText()
	require.NoError(t, err)
	assert.Contains(t, text, NoData)
	assert.NotContains(t, text, "WSKAŹNIKI FINANSOWE")
	assert.Contains(t, text, "=== DODATKOWE INFORMACJE ===\nKomentarz zarządu: bez zmian")

	md, err := r.ToMarkdown()
	require.NoError(t, err)
	assert.Contains(t, md, "# Raport finansowy")
	assert.Contains(t, md, NoData)
}

func TestFinancialReport_ToMarkdown(t *testing.T) {
	md, err := sampleReport().ToMarkdown()
	require.NoError(t, err)

	assert.Contains(t, md, "# Raport półroczny\n\n- Spółka: ACME S.A.")
	assert.Contains(t, md, "| Pozycja | Bieżący | Poprzedni | Zmiana | % | Trend |")
	assert.Contains(t, md, "| Zysk netto | 150 000 | 120 000 | +30 000 | +25.0% | 📈 wzrost |")
}

func TestFormatDelta(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{30000, "+30 000"},
		{-1234567, "-1 234 567"},
		{5, "+5"},
		{-12.4, "-12"},
		{0, "+0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDelta(tt.in), tt.in)
	}
}

func TestFinancialReport_ToCSV(t *testing.T) {
	out, err := sampleReport().ToCSV()
	require.NoError(t, err)

	assert.Contains(t, out, "# Dane finansowe (ACME S.A.)\n")
	assert.Contains(t, out, "Klucz,Pozycja,Bieżący,Poprzedni,Zmiana,Zmiana %,Trend\n")
	assert.Contains(t, out, "zysk_netto,Zysk netto,150000,120000,30000,25,growth\n")
	assert.Contains(t, out, "# Wskaźniki\n")
	assert.Contains(t, out, "rentownosc_netto,Rentowność netto,15.00%\n")
}

// failingWriter accepts the first n writes and rejects the rest.
type failingWriter struct {
	n int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n <= 0 {
		return 0, errors.New("disk full")
	}
	w.n--
	return len(p), nil
}

func TestFinancialReport_WriteCSV_MetricTableError(t *testing.T) {
	// Given the heading is written but the metric table is not
	w := &failingWriter{n: 1}

	// When
	err := sampleReport().WriteCSV(w)

	// Then
	assert.ErrorContains(t, err, "disk full")
}

func TestFinancialReport_WriteCSV_RatioTableError(t *testing.T) {
	// Given heading, metric table and ratio heading succeed
	w := &failingWriter{n: 3}

	err := sampleReport().WriteCSV(w)

	assert.ErrorContains(t, err, "disk full")
}

func TestFinancialReport_ToHTML(t *testing.T) {
	r := NewFinancialReport(Header{Title: "Wyniki <Q2>"}, nil, nil, "")

	out, err := r.ToHTML()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<pre>=== Wyniki &lt;Q2&gt; ==="))
	assert.True(t, strings.HasSuffix(out, "</pre>"))
}

func TestFinancialReport_ToJSON(t *testing.T) {
	raw, err := sampleReport().ToJSON()
	require.NoError(t, err)

	var decoded struct {
		Company    string `json:"company"`
		Financials struct {
			Current     map[string]float64 `json:"current"`
			Comparisons map[string]struct {
				PercentDelta *float64 `json:"percent_delta"`
				Trend        string   `json:"trend"`
			} `json:"comparisons"`
		} `json:"financials"`
		Ratios map[string]string `json:"ratios"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "ACME S.A.", decoded.Company)
	assert.Equal(t, 150000.0, decoded.Financials.Current["zysk_netto"])
	require.NotNil(t, decoded.Financials.Comparisons["zysk_netto"].PercentDelta)
	assert.Equal(t, 25.0, *decoded.Financials.Comparisons["zysk_netto"].PercentDelta)
	assert.Equal(t, "growth", decoded.Financials.Comparisons["zysk_netto"].Trend)
	assert.Equal(t, "15.00%", decoded.Ratios["rentownosc_netto"])
}
