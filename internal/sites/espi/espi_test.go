package espi

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"espiwatch/internal/finance"
	"espiwatch/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingHTML = `<html><body><ul>
<li class="news">
  <div class="hour">10:15</div>
  <div class="hour">ESPI 12/2025</div>
  <a class="link" href="/node/123">ACME S.A. Raport okresowy półroczny</a>
</li>
<li class="news">
  <div class="hour">09:00</div>
  <a class="link" href="node/124">Dekpol - zawarcie umowy</a>
</li>
<li class="news"><a class="link" href="https://example.com/x">Inny emitent</a></li>
<li class="news"><span>brak linku</span></li>
<li class="other"><a class="link" href="/node/9">Nie news</a></li>
</ul></body></html>`

const reportHTML = `<html><head><title>ESPI/EBI - PAP</title></head><body>
<h1>Raport okresowy</h1>
<table>
<tr><td>Temat:</td><td>Skonsolidowany raport półroczny ACME za I półrocze 2025</td></tr>
<tr><td>Emitent:</td><td>ACME S.A.</td></tr>
</table>
<p>za okres 6 miesięcy zakończony 30.06.2025</p>
<p>Treść raportu:</p>
<p>Zarząd przekazuje raport.</p>
<p>WYBRANE DANE FINANSOWE</p>
<p>spis</p>
<p>WYBRANE DANE FINANSOWE</p>
<table>
<tr><td>Przychody ze sprzedaży</td><td>1 000 000</td><td>800 000</td></tr>
<tr><td>Zysk netto</td><td>150 000</td><td>120 000</td></tr>
</table>
<p>Komentarz zarządu: Wyniki zgodne z planem.</p>
<p>Podpisy osób odpowiedzialnych</p>
</body></html>`

const communiqueHTML = `<html><body><div class="content">
<h1>Zawarcie umowy</h1>
<p>Temat: Zawarcie znaczącej umowy</p>
<p>Treść raportu:</p>
<p>Spółka zawarła umowę o wartości 10 mln zł.</p>
<p>MESSAGE (ENGLISH VERSION)</p>
<p>The company signed an agreement.</p>
<p>PODPISY</p>
</div></body></html>`

func TestParseListing(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	entries, err := ParseListing(listingHTML, DefaultListURL, DefaultKeywords, now)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, Entry{
		Title:    "ACME S.A. Raport okresowy półroczny",
		Link:     "https://espiebi.pap.pl/node/123",
		Date:     "2025-07-01 10:15",
		TimeRaw:  "10:15",
		DateInfo: "ESPI 12/2025",
		IsReport: true,
	}, entries[0])

	assert.Equal(t, "https://espiebi.pap.pl/node/124", entries[1].Link)
	assert.False(t, entries[1].IsReport)
	assert.Equal(t, "2025-07-01 09:00", entries[1].Date)

	assert.Equal(t, "https://example.com/x", entries[2].Link)
	assert.Equal(t, NoDate, entries[2].Date)
}

func TestParseListing_InvalidBase(t *testing.T) {
	_, err := ParseListing(listingHTML, "://bad", DefaultKeywords, time.Now())
	assert.Error(t, err)
}

func TestIsReport(t *testing.T) {
	assert.True(t, IsReport("Skonsolidowany raport kwartalny", []string{"RAPORT"}))
	assert.True(t, IsReport("wyniki", []string{"", "Wyniki"}))
	assert.False(t, IsReport("Zawarcie umowy", []string{"RAPORT"}))
	assert.False(t, IsReport("Raport", nil))
}

func TestHTMLText(t *testing.T) {
	got, err := HTMLText(`<html><head><style>p{color:red}</style><script>var x = 1;</script></head>
<body><p>  A  </p><div>B<span>C</span></div><!-- hidden --></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "A\nB\nC", got)
}

func TestParseReport(t *testing.T) {
	d, err := ParseReport(reportHTML)
	require.NoError(t, err)

	assert.Equal(t, "Skonsolidowany raport półroczny ACME za I półrocze 2025", d.Title)
	assert.Equal(t, "Skonsolidowany raport półroczny", d.Kind)
	assert.Equal(t, "6 miesięcy zakończony 30.06.2025", d.Period)
	assert.Equal(t, "ACME S.A.", d.Company)
	assert.True(t, strings.HasPrefix(d.Body, "Zarząd przekazuje raport."), d.Body)
	assert.NotContains(t, d.Body, "Podpisy")
	assert.Equal(t, "Komentarz zarządu: Wyniki zgodne z planem.", d.Additional)

	assert.Equal(t, finance.PeriodValues{finance.Revenue: 1000000, finance.NetProfit: 150000}, d.Financials.Current)
	assert.Equal(t, finance.PeriodValues{finance.Revenue: 800000, finance.NetProfit: 120000}, d.Financials.Prior)
	assert.Equal(t, "15.00%", d.Ratios[finance.NetMargin])
}

func TestParseReport_NoFinancialBlock(t *testing.T) {
	// Given a report page without the selected data heading
	page := `<html><body><h1>Raport bieżący nr 5/2025</h1><p>Treść raportu: informacja</p></body></html>`

	// When
	d, err := ParseReport(page)

	// Then metadata falls back to the heading and the financial result is empty
	require.NoError(t, err)
	assert.Equal(t, "Raport bieżący nr 5/2025", d.Title)
	assert.Equal(t, "", d.Kind)
	assert.True(t, d.Financials.Empty())
	assert.Empty(t, d.Ratios)
}

func TestParseReport_TitleSkipsShortAndESPICandidates(t *testing.T) {
	page := `<html><head><title>Raport roczny spółki XYZ za rok 2024</title></head><body><p>Temat: krótki</p></body></html>`

	d, err := ParseReport(page)
	require.NoError(t, err)

	assert.Equal(t, "Raport roczny spółki XYZ za rok 2024", d.Title)
	assert.Equal(t, "Raport roczny", d.Kind)
	assert.Equal(t, "2024", d.Period)
}

func TestReportKind(t *testing.T) {
	assert.Equal(t, "Skonsolidowany raport półroczny", ReportKind("SKONSOLIDOWANY RAPORT PÓŁROCZNY"))
	assert.Equal(t, "Raport półroczny", ReportKind("Raport półroczny"))
	assert.Equal(t, "Raport roczny", ReportKind("Skonsolidowany raport roczny"))
	assert.Equal(t, "Raport kwartalny", ReportKind("raport kwartalny"))
	assert.Equal(t, "", ReportKind("Zawarcie umowy"))
}

func TestAdditionalInfo(t *testing.T) {
	text := "Perspektywy: dalszy wzrost sprzedaży\nWarszawa, dnia 1.07.2025\nIstotne zdarzenia: przejęcie spółki zależnej"

	got := AdditionalInfo(text)

	assert.Equal(t, "Perspektywy: dalszy wzrost sprzedaży\n\nIstotne zdarzenia: przejęcie spółki zależnej", got)
	assert.Empty(t, AdditionalInfo("brak sekcji"))
}

func TestParseCommunique(t *testing.T) {
	c, err := ParseCommunique(communiqueHTML)
	require.NoError(t, err)

	assert.Equal(t, "Zawarcie znaczącej umowy", c.Title)
	assert.Equal(t, "Spółka zawarła umowę o wartości 10 mln zł.", c.Body)
	assert.Contains(t, c.fragment, "<h1>Zawarcie umowy</h1>")
}

func TestParseCommunique_FallbackTitle(t *testing.T) {
	c, err := ParseCommunique(`<html><body><h1>Zmiany w zarządzie</h1></body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "Zmiany w zarządzie", c.Title)
	assert.Empty(t, c.Body)
}

func TestCommuniqueContent(t *testing.T) {
	c, err := ParseCommunique(communiqueHTML)
	require.NoError(t, err)
	content := NewCommuniqueContent(c, "https://espiebi.pap.pl/node/1")

	text, err := content.ToText()
	require.NoError(t, err)
	assert.Equal(t, "Temat: Zawarcie znaczącej umowy\nLink: https://espiebi.pap.pl/node/1\n\nSpółka zawarła umowę o wartości 10 mln zł.", text)

	md, err := content.ToMarkdown()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md, "# Zawarcie znaczącej umowy\n\n<https://espiebi.pap.pl/node/1>"))
	assert.Contains(t, md, "Spółka zawarła umowę")

	raw, err := content.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Zawarcie znaczącej umowy","body":"Spółka zawarła umowę o wartości 10 mln zł.","url":"https://espiebi.pap.pl/node/1"}`, string(raw))
}

func TestListingContent(t *testing.T) {
	entries, err := ParseListing(listingHTML, DefaultListURL, DefaultKeywords, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	content := NewListingContent(DefaultListURL, entries)

	text, err := content.ToText()
	require.NoError(t, err)
	assert.Contains(t, text, "2025-07-01 10:15 R ACME S.A. Raport okresowy półroczny\n")

	csvOut, err := content.ToCSV()
	require.NoError(t, err)
	assert.Contains(t, csvOut, "2025-07-01 09:00,09:00,,false,Dekpol - zawarcie umowy,https://espiebi.pap.pl/node/124\n")

	md, err := content.ToMarkdown()
	require.NoError(t, err)
	assert.Contains(t, md, "| 2025-07-01 10:15 | R | [ACME S.A. Raport okresowy półroczny](https://espiebi.pap.pl/node/123) |")

	raw, err := content.ToJSON()
	require.NoError(t, err)
	var decoded struct {
		Entries []Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, entries, decoded.Entries)

	empty, err := NewListingContent(DefaultListURL, nil).ToText()
	require.NoError(t, err)
	assert.Equal(t, "Nie znaleziono wpisów", empty)
}

func TestDisclosure_Report(t *testing.T) {
	d, err := ParseReport(reportHTML)
	require.NoError(t, err)

	text, err := d.Report("https://espiebi.pap.pl/node/123").ToText()
	require.NoError(t, err)

	assert.Contains(t, text, "Spółka: ACME S.A.")
	assert.Contains(t, text, "Źródło: https://espiebi.pap.pl/node/123")
	assert.Contains(t, text, "• Zysk netto: +25.0% 📈")
}

func TestScrapersRegistered(t *testing.T) {
	for _, name := range []string{"espi", "espi.report", "espi.communique"} {
		s, ok := scraper.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, name, s.Name())
	}
}

func TestListPageURL(t *testing.T) {
	assert.Equal(t, DefaultListURL, ListPageURL(0))
	assert.Equal(t, "https://espiebi.pap.pl/?page=3", ListPageURL(3))
}

func TestListingScraper_InvalidPage(t *testing.T) {
	s := &ListingScraper{}
	_, err := s.Scrape(context.Background(), "", scraper.Options{Extra: map[string]string{"page": "x"}})
	assert.ErrorContains(t, err, "invalid page")
}

func TestWaitStrategyTime_StopsOnCancel(t *testing.T) {
	c := &Client{waitFor: WaitStrategyTime, waitTarget: "60000"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := c.applyWaitStrategy(ctx, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSleep(t *testing.T) {
	require.NoError(t, sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, sleep(ctx, time.Minute), context.DeadlineExceeded)
}
