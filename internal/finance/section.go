package finance

import "strings"

// SelectedDataHeading opens the selected financial data block of a disclosure.
const SelectedDataHeading = "WYBRANE DANE FINANSOWE"

// CorrectionMarker opens the correction notice that follows the financial data.
const CorrectionMarker = "INFORMACJA O KOREKCIE RAPORTU"

// FinancialEndMarkers close the body of a periodic report.
var FinancialEndMarkers = []string{
	"Podpisy osób odpowiedzialnych",
	"Podpisy członków zarządu",
	"Załączniki",
	"Dodatkowe informacje",
	"Komentarz zarządu",
	"Oświadczenia",
	"Data sporządzenia",
	"Warszawa, dnia",
}

// SectionEndMarkers close the selected financial data block. The first marker
// in this order that occurs in the text wins.
var SectionEndMarkers = append([]string{CorrectionMarker}, FinancialEndMarkers...)

// SelectedDataSection cuts the selected financial data block out of the full
// text of a disclosure. The heading normally appears twice (table of contents
// and the table itself), so the block starts after the second occurrence when
// there is one. An empty string means the block was not found.
func SelectedDataSection(fullText string) string {
	parts := strings.SplitN(fullText, SelectedDataHeading, 3)
	var body string
	switch len(parts) {
	case 3:
		body = parts[2]
	case 2:
		body = parts[1]
	default:
		return ""
	}

	body = CutAtFirstMarker(body, SectionEndMarkers)
	return SelectedDataHeading + "\n" + body
}

// CutAtFirstMarker truncates text at the first marker, in list order, that it
// contains.
func CutAtFirstMarker(text string, markers []string) string {
	for _, m := range markers {
		if idx := strings.Index(text, m); idx != -1 {
			return text[:idx]
		}
	}
	return text
}
