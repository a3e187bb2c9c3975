package espi

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"espiwatch/internal/finance"

	"github.com/PuerkitoBio/goquery"
)

// CommuniqueEndMarkers close the body of a current report.
var CommuniqueEndMarkers = []string{
	"Załączniki",
	"MESSAGE (ENGLISH VERSION)",
	"INFORMACJE O PODMIOCIE",
	"PODPISY OSÓB REPREZENTUJĄCYCH SPÓŁKĘ",
	"PODPISY",
}

// Disclosure is a parsed periodic report
type Disclosure struct {
	Title      string          `json:"title"`
	Kind       string          `json:"kind"`
	Period     string          `json:"period"`
	Company    string          `json:"company"`
	Body       string          `json:"body"`
	Additional string          `json:"additional_info,omitempty"`
	Financials *finance.Result `json:"financials"`
	Ratios     finance.Ratios  `json:"ratios"`
}

// Communique is a parsed current report
type Communique struct {
	Title string `json:"title"`
	Body  string `json:"body"`

	// fragment is the HTML of the page's main content area.
	fragment string
}

var (
	titlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Temat\s*[:\-]?\s*([^\n]+)`),
		regexp.MustCompile(`(?i)Rodzaj\s+raportu\s*[:\-]?\s*([^\n]+)`),
	}
	htmlTitleRe = regexp.MustCompile(`(?i)<title>([^<]+)</title>`)

	periodPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)za\s+okres\s+(\d{1,2}\s+miesięcy\s+zakończony\s+\d{1,2}\.\d{1,2}\.\d{4})`),
		regexp.MustCompile(`(?i)za\s+(\d{1,2}\s+miesięcy\s+\d{4})`),
		regexp.MustCompile(`(?i)okres\s*[:\-]?\s*(\d{1,2}\.\d{1,2}\.\d{4}\s*[\-–]\s*\d{1,2}\.\d{1,2}\.\d{4})`),
		regexp.MustCompile(`(?i)za\s+rok\s+(\d{4})`),
		regexp.MustCompile(`(?i)(\d{4})\s*r\.?`),
	}

	companyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)(?:Emitent|Spółka)\s*[:\-]?\s*([A-ZĄĆĘŁŃÓŚŹŻ\s&.]+(?:S\.A\.|SA))`),
		regexp.MustCompile(`(?im)Nazwa\s+emitenta\s*[:\-]?\s*([A-ZĄĆĘŁŃÓŚŹŻ\s&.]+(?:S\.A\.|SA))`),
		regexp.MustCompile(`(?im)([A-ZĄĆĘŁŃÓŚŹŻ\s&.]+(?:S\.A\.|SA))\s*(?:Skonsolidowany|Raport|za)`),
		regexp.MustCompile(`(?im)^([A-ZĄĆĘŁŃÓŚŹŻ\s&.]{5,})\s*$`),
	}
	companySkipWords = []string{"serwis", "espi", "ebi", "raport"}

	bodyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)Treść raportu:\s*(.+)`),
		regexp.MustCompile(`(?is)RAPORT\s+(?:FINANSOWY|PÓŁROCZNY|ROCZNY|KWARTALNY)\s*(.+)`),
		regexp.MustCompile(`(?is)I\.\s*DANE\s+(?:FINANSOWE|SPRAWOZDAWCZE)\s*(.+)`),
	}
	bodyStartKeywords = []string{"wybrane dane", "wyniki finansowe", "sprawozdanie", "bilans"}

	communiqueTitleRe = regexp.MustCompile(`Temat\s*[:\-]?\s*([^\n]+)`)
	communiqueBodyRe  = regexp.MustCompile(`(?s)Treść raportu:\s*(.+)`)
)

// additionalSections label the context paragraphs collected from a report.
var additionalSections = []struct {
	label string
	re    *regexp.Regexp
}{
	{"Komentarz zarządu", regexp.MustCompile(`(?i)Komentarz\s+zarządu[:\-]?\s*`)},
	{"Perspektywy", regexp.MustCompile(`(?i)(?:Perspektywy|Prognozy|Outlook)[:\-]?\s*`)},
	{"Istotne zdarzenia", regexp.MustCompile(`(?i)(?:Istotne\s+zdarzenia|Wydarzenia)[:\-]?\s*`)},
}

var paragraphEnds = []string{"\n\n", "\nPodpisy", "\nWarszawa"}

// ParseReport extracts metadata, body and financial data from the HTML of a
// periodic report page.
func ParseReport(rawHTML string) (*Disclosure, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse report HTML: %w", err)
	}
	text := documentText(doc)

	d := &Disclosure{
		Title:   reportTitle(text, rawHTML, doc),
		Period:  firstGroup(periodPatterns, text),
		Company: company(text),
		Body:    reportBody(text),
	}
	d.Kind = ReportKind(d.Title)
	d.Additional = AdditionalInfo(text)
	d.Financials = finance.Extract(finance.SelectedDataSection(text))
	d.Ratios = finance.ComputeRatios(d.Financials.Current, d.Financials.Prior)
	return d, nil
}

// ParseCommunique extracts the topic and body of a current report page.
func ParseCommunique(rawHTML string) (*Communique, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse communique HTML: %w", err)
	}
	text := documentText(doc)

	c := &Communique{fragment: mainFragment(doc)}
	if m := communiqueTitleRe.FindStringSubmatch(text); m != nil {
		c.Title = strings.TrimSpace(m[1])
	} else {
		c.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if m := communiqueBodyRe.FindStringSubmatch(text); m != nil {
		c.Body = strings.TrimSpace(finance.CutAtFirstMarker(strings.TrimSpace(m[1]), CommuniqueEndMarkers))
	}
	return c, nil
}

// ReportKind classifies a report from its title.
func ReportKind(title string) string {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "skonsolidowany") && strings.Contains(lower, "półroczny"):
		return "Skonsolidowany raport półroczny"
	case strings.Contains(lower, "półroczny"):
		return "Raport półroczny"
	case strings.Contains(lower, "roczny"):
		return "Raport roczny"
	case strings.Contains(lower, "kwartalny"):
		return "Raport kwartalny"
	default:
		return ""
	}
}

// AdditionalInfo collects management commentary, outlook and material events
// paragraphs, separated by blank lines.
func AdditionalInfo(text string) string {
	var parts []string
	for _, s := range additionalSections {
		loc := s.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		para := strings.TrimSpace(cutParagraph(text[loc[1]:]))
		if para != "" {
			parts = append(parts, s.label+": "+para)
		}
	}
	return strings.Join(parts, "\n\n")
}

// cutParagraph keeps at least one character and stops at the earliest
// paragraph end.
func cutParagraph(rest string) string {
	if rest == "" {
		return ""
	}
	_, first := utf8.DecodeRuneInString(rest)
	end := len(rest)
	for _, marker := range paragraphEnds {
		if idx := strings.Index(rest[first:], marker); idx != -1 && first+idx < end {
			end = first + idx
		}
	}
	return rest[:end]
}

func reportTitle(text, rawHTML string, doc *goquery.Document) string {
	candidates := make([]string, 0, len(titlePatterns)+1)
	for _, re := range titlePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			candidates = append(candidates, m[1])
		}
	}
	if m := htmlTitleRe.FindStringSubmatch(rawHTML); m != nil {
		candidates = append(candidates, m[1])
	}
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if utf8.RuneCountInString(c) > 10 && !strings.Contains(c, "ESPI") {
			return c
		}
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func company(text string) string {
	for _, re := range companyPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(m[1])
			if utf8.RuneCountInString(name) > 3 && !containsAny(strings.ToLower(name), companySkipWords) {
				return name
			}
		}
	}
	return ""
}

func reportBody(text string) string {
	body := firstGroup(bodyPatterns, text)
	if body == "" {
		lines := strings.Split(text, "\n")
		start := 0
		for i, line := range lines {
			if containsAny(strings.ToLower(line), bodyStartKeywords) {
				start = i
				break
			}
		}
		body = strings.Join(lines[start:], "\n")
	}
	return strings.TrimSpace(finance.CutAtFirstMarker(body, finance.FinancialEndMarkers))
}

func firstGroup(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
