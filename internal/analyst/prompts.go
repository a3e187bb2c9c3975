package analyst

import (
	"encoding/json"
	"fmt"
	"strings"

	"espiwatch/internal/finance"
	"espiwatch/internal/report"
	"espiwatch/internal/sites/espi"
)

// CommuniqueSystemPrompt instructs the model to score a current report.
const CommuniqueSystemPrompt = `Jesteś analitykiem giełdowym. Twoim zadaniem jest ocenić komunikat giełdowy (ESPI) pod kątem jego krótkoterminowego wpływu na kurs akcji spółki.

Skup się przede wszystkim na informacjach, które realnie mogą wpływać na notowania: nowe kontrakty, znaczący klient, wyniki finansowe, istotne zmiany strategii, wezwania, kryzysy, istotne inwestycje lub partnerstwa.
Traktuj komunikaty formalne, administracyjne i techniczne (np. rejestracja akcji, dopuszczenie do obrotu, zmiany w radzie nadzorczej, zgody KNF) jako neutralne, chyba że niosą dodatkowe znaczenie biznesowe.

Ocenę wyrażasz jako liczbę całkowitą od -5 do 5:
-5 = bardzo negatywny wpływ na kurs (np. duża strata, utrata kontraktu, problemy prawne),
0 = neutralny (np. sprawy formalne, zmiany techniczne bez wpływu na biznes),
+5 = bardzo pozytywny (np. przełomowy kontrakt, znaczący wzrost zysków, strategiczne partnerstwo).

Odpowiadaj wyłącznie w formacie JSON:
{
  "ocena": <liczba od -5 do 5>,
  "uzasadnienie": "<krótkie uzasadnienie oceny>"
}`

// ReportSystemPrompt instructs the model to score the financial data of a
// periodic report.
const ReportSystemPrompt = `Jesteś doświadczonym analitykiem giełdowym specjalizującym się w analizie raportów finansowych spółek publicznych.
Twoim zadaniem jest ocena wpływu przedstawionych danych finansowych na prawdopodobny kierunek kursu akcji spółki.

KRYTERIA OCENY:
- Analizuj kluczowe wskaźniki: przychody, rentowność, przepływy pieniężne, zadłużenie, sytuację bilansową
- Porównuj dane rok do roku (dynamikę zmian)
- Uwzględniaj trendy i stabilność wyników
- Oceniaj w kontekście oczekiwań rynkowych i kondycji sektora

SKALA OCENY:
-5: Bardzo negatywny wpływ na kurs (poważne problemy finansowe, drastyczny spadek wyników)
-4: Silnie negatywny (wyraźne pogorszenie wyników, niepokojące trendy)
-3: Negatywny (spadek kluczowych wskaźników, słabe wyniki)
-2: Lekko negatywny (niewielkie pogorszenie lub mieszane sygnały z przewagą negatywnych)
-1: Słabo negatywny (stabilne wyniki z drobnymi negatywnymi aspektami)
0: Neutralny (brak znaczących zmian, wyniki zgodne z oczekiwaniami)
1: Słabo pozytywny (stabilne wyniki z drobnymi pozytywnymi aspektami)
2: Lekko pozytywny (niewielka poprawa lub mieszane sygnały z przewagą pozytywnych)
3: Pozytywny (wzrost kluczowych wskaźników, dobre wyniki)
4: Silnie pozytywny (wyraźna poprawa wyników, pozytywne trendy)
5: Bardzo pozytywny wpływ na kurs (wybitne wyniki, znaczący wzrost rentowności)

ODPOWIADAJ WYŁĄCZNIE W FORMACIE JSON:
{
    "ocena": <liczba od -5 do 5>,
    "uzasadnienie": "<zwięzłe uzasadnienie oceny w 2-3 zdaniach, skupiające się na najważniejszych czynnikach>"
}`

const (
	// excerptLimit bounds the report body quoted in the long-form prompt.
	excerptLimit = 2000
	notSpecified = "Nie określono"
)

// Request is one question for the reasoning service.
type Request struct {
	System      string
	User        string
	Temperature *float32
	MaxTokens   int32
}

// Tuning holds the sampling settings of report assessments.
type Tuning struct {
	Temperature float32
	MaxTokens   int32
}

// DefaultTuning keeps report assessments short and consistent.
var DefaultTuning = Tuning{Temperature: 0.3, MaxTokens: 500}

// financialPayload is the JSON block embedded in report requests.
type financialPayload struct {
	Current     finance.PeriodValues                     `json:"obecny_okres"`
	Prior       finance.PeriodValues                     `json:"poprzedni_okres"`
	Comparisons map[finance.MetricKey]finance.Comparison `json:"analiza_rok_do_roku,omitempty"`
	Ratios      finance.Ratios                           `json:"wskazniki_finansowe,omitempty"`
}

// ReportRequest builds the assessment request for a periodic report: its topic,
// the extracted figures as JSON, the key changes and the ratios. A zero tuning
// selects DefaultTuning.
func ReportRequest(d *espi.Disclosure, tuning Tuning) Request {
	res := d.Financials
	if res == nil {
		res = finance.Extract("")
	}
	payload, err := json.MarshalIndent(financialPayload{
		Current:     res.Current,
		Prior:       res.Prior,
		Comparisons: res.Comparisons,
		Ratios:      d.Ratios,
	}, "", "  ")
	if err != nil {
		payload = []byte("{}")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("TEMAT RAPORTU: %s\n\n", d.Title))
	sb.WriteString(fmt.Sprintf("DANE FINANSOWE (JSON):\n%s\n\n", payload))
	if highlights := report.Highlights(res); highlights != "" {
		sb.WriteString(fmt.Sprintf("KLUCZOWE ZMIANY:\n%s\n\n", highlights))
	}
	if ratios := report.RatioLines(d.Ratios); ratios != "" {
		sb.WriteString(fmt.Sprintf("WSKAŹNIKI FINANSOWE:\n%s\n\n", ratios))
	}
	sb.WriteString("Przeanalizuj powyższe dane finansowe jak doświadczony analityk giełdowy i oceń prawdopodobny wpływ na kurs akcji spółki.")

	if tuning == (Tuning{}) {
		tuning = DefaultTuning
	}
	temperature := tuning.Temperature
	return Request{
		System:      ReportSystemPrompt,
		User:        sb.String(),
		Temperature: &temperature,
		MaxTokens:   tuning.MaxTokens,
	}
}

// CommuniqueRequest builds the assessment request for a current report.
func CommuniqueRequest(c *espi.Communique) Request {
	return Request{
		System: CommuniqueSystemPrompt,
		User:   fmt.Sprintf("Temat: %s\nTreść: %s", c.Title, c.Body),
	}
}

// promptMetrics are the positions compared in the long-form prompt.
var promptMetrics = []finance.MetricKey{
	finance.Revenue,
	finance.GrossProfitOnSales,
	finance.OperatingProfit,
	finance.NetProfit,
	finance.TotalAssets,
	finance.NonCurrentAssets,
	finance.CurrentAssets,
	finance.Equity,
	finance.TotalLiabilities,
	finance.LongTermLiabilities,
	finance.ShortTermLiabilities,
}

var promptRatios = []finance.RatioKey{
	finance.NetMargin,
	finance.CurrentRatio,
	finance.DebtRatio,
	finance.RevenueGrowth,
	finance.NetProfitGrowth,
}

const analysisTask = `

=== ZADANIE ANALIZY ===
Na podstawie powyższych danych finansowych, wykonaj szczegółową analizę:

1. **ANALIZA WYNIKÓW FINANSOWYCH**
   - Ocena dynamiki przychodów, kosztów i rentowności
   - Analiza głównych pozycji rachunku zysków i strat
   - Identyfikacja kluczowych trendów

2. **ANALIZA BILANSOWA**
   - Struktura aktywów i pasywów
   - Ocena płynności finansowej
   - Analiza zadłużenia i struktury kapitału

3. **PORÓWNANIE ROK DO ROKU**
   - Analiza zmian w kluczowych pozycjach
   - Ocena dynamiki wzrostu/spadku
   - Identyfikacja przyczyn głównych zmian

4. **WSKAŹNIKI FINANSOWE**
   - Oblicz i oceń kluczowe wskaźniki rentowności, płynności i zadłużenia
   - Porównaj z poprzednim okresem
   - Oceń kondycję finansową spółki

5. **PODSUMOWANIE I REKOMENDACJE**
   - Ogólna ocena sytuacji finansowej spółki
   - Główne zagrożenia i możliwości
   - Rekomendacje dla inwestorów (pozytywne/negatywne/neutralne)

Zwróć szczególną uwagę na:
- Zmiany w marżach i rentowności
- Trendy w przepływach pieniężnych
- Zmiany w strukturze kosztów
- Poziom zadłużenia i płynność
- Jakość wzrostu (jeśli występuje)

Przedstaw analizę w sposób jasny i zrozumiały, z konkretnymi liczbami i procentami zmian.`

// FullAnalysisPrompt renders a self-contained prompt asking for a detailed
// written analysis of a periodic report.
func FullAnalysisPrompt(d *espi.Disclosure) string {
	var sb strings.Builder
	sb.WriteString("Proszę przeanalizuj poniższy raport finansowy polskiej spółki:\n\n")
	sb.WriteString("=== PODSTAWOWE INFORMACJE ===\n")
	sb.WriteString(fmt.Sprintf("• Spółka: %s\n", orDefault(d.Company)))
	sb.WriteString(fmt.Sprintf("• Typ raportu: %s\n", orDefault(d.Kind)))
	sb.WriteString(fmt.Sprintf("• Okres sprawozdawczy: %s\n", orDefault(d.Period)))
	sb.WriteString(fmt.Sprintf("• Tytuł raportu: %s\n", orDefault(d.Title)))
	sb.WriteString("\n=== DANE FINANSOWE ===")

	if res := d.Financials; res != nil && (len(res.Current) > 0 || len(res.Prior) > 0) {
		sb.WriteString("\n\nPORÓWNANIE OKRES BIEŻĄCY vs POPRZEDNI (w tys. zł):\n")
		for _, key := range promptMetrics {
			cur, okCur := res.Current[key]
			prev, okPrev := res.Prior[key]
			if !okCur && !okPrev {
				continue
			}
			sb.WriteString(fmt.Sprintf("\n• %-30s | Bieżący: %-15s | Poprzedni: %s",
				finance.Label(key), valueOrDash(cur, okCur), valueOrDash(prev, okPrev)))
		}
	}

	var ratioLines []string
	for _, key := range promptRatios {
		if v, ok := d.Ratios[key]; ok {
			ratioLines = append(ratioLines, fmt.Sprintf("• %s: %s\n", finance.RatioLabel(key), v))
		}
	}
	if len(ratioLines) > 0 {
		sb.WriteString("\n\n=== KLUCZOWE WSKAŹNIKI ===\n")
		sb.WriteString(strings.Join(ratioLines, ""))
	}

	if d.Body != "" {
		sb.WriteString(fmt.Sprintf("\n=== WYBRANE FRAGMENTY RAPORTU ===\n%s...\n", truncateRunes(d.Body, excerptLimit)))
	}
	if d.Additional != "" {
		sb.WriteString(fmt.Sprintf("\n=== DODATKOWE INFORMACJE ===\n%s\n", d.Additional))
	}
	sb.WriteString(analysisTask)
	return sb.String()
}

func orDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return notSpecified
	}
	return s
}

func valueOrDash(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return report.FormatNumber(v)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
