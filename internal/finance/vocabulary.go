package finance

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MetricKey is the canonical identifier of a financial statement line item.
type MetricKey string

const (
	Revenue                 MetricKey = "przychody_sprzedazy"
	OperatingRevenue        MetricKey = "przychody_operacyjne"
	OperatingCosts          MetricKey = "koszty_operacyjne"
	OperatingProfit         MetricKey = "zysk_operacyjny"
	GrossProfit             MetricKey = "zysk_brutto"
	GrossProfitOnSales      MetricKey = "zysk_brutto_sprzedazy"
	ProfitBeforeTax         MetricKey = "zysk_przed_opodatkowaniem"
	NetProfit               MetricKey = "zysk_netto"
	NetProfitToShareholders MetricKey = "zysk_netto_akcjonariusze"
	EarningsPerShare        MetricKey = "zysk_na_akcje"
	WeightedEPS             MetricKey = "zysk_na_akcje_sredniowazona"
	OperatingCashFlow       MetricKey = "przeplyw_operacyjny"
	InvestingCashFlow       MetricKey = "przeplyw_inwestycyjny"
	FinancingCashFlow       MetricKey = "przeplyw_finansowy"
	TotalAssets             MetricKey = "aktywa_razem"
	NonCurrentAssets        MetricKey = "aktywa_trwale"
	CurrentAssets           MetricKey = "aktywa_obrotowe"
	TotalLiabilities        MetricKey = "zobowiazania_razem"
	LongTermLiabilities     MetricKey = "zobowiazania_dlugoterminowe"
	ShortTermLiabilities    MetricKey = "zobowiazania_krotkoterminowe"
	Equity                  MetricKey = "kapital_wlasny"
	ShareCapital            MetricKey = "kapital_podstawowy"
	IssuedCapital           MetricKey = "wyemitowany_kapital"
	SharesOutstanding       MetricKey = "liczba_akcji"
	WeightedShares          MetricKey = "sredniowazona_liczba_akcji"
	BookValuePerShare       MetricKey = "wartosc_ksiegowa_na_akcje"
)

// LineItem binds one label spelling to its metric key.
type LineItem struct {
	Label string
	Key   MetricKey
}

// Vocabulary lists the recognised labels in priority order. Several spellings
// may alias one key.
var Vocabulary = []LineItem{
	// revenue and costs
	{"Przychody ze sprzedaży", Revenue},
	{"Przychody z działalności operacyjnej", OperatingRevenue},
	{"Koszty działalności operacyjnej", OperatingCosts},

	// profit
	{"Zysk na działalności operacyjnej", OperatingProfit},
	{"Zysk (strata) na działalności operacyjnej", OperatingProfit},
	{"Zysk brutto ze sprzedaży", GrossProfitOnSales},
	{"Zysk (strata) brutto ze sprzedaży", GrossProfitOnSales},
	{"Zysk brutto", GrossProfit},
	{"Zysk (strata) brutto", GrossProfit},
	{"Zysk (strata) przed opodatkowaniem", ProfitBeforeTax},
	{"Zysk netto", NetProfit},
	{"Zysk (strata) netto", NetProfit},
	{"Zysk (strata) netto przypadający akcjonariuszom jednostki dominującej", NetProfitToShareholders},

	// per share
	{"Zysk netto na akcję zwykłą", EarningsPerShare},
	{"Zysk (strata) netto na jedną akcję zwykłą", EarningsPerShare},
	{"Zysk (strata) netto na jedną średnioważoną akcję zwykłą", WeightedEPS},

	// cash flow
	{"Przepływy pieniężne netto z działalności operacyjnej", OperatingCashFlow},
	{"Środki pieniężne netto z działalności operacyjnej", OperatingCashFlow},
	{"Przepływy pieniężne netto z działalności inwestycyjnej", InvestingCashFlow},
	{"Środki pieniężne netto z działalności inwestycyjnej", InvestingCashFlow},
	{"Przepływy pieniężne netto z działalności finansowej", FinancingCashFlow},
	{"Środki pieniężne netto wykorzystane w działalności finansowej", FinancingCashFlow},

	// balance sheet
	{"Aktywa razem", TotalAssets},
	{"Suma bilansowa", TotalAssets},
	{"Aktywa trwałe", NonCurrentAssets},
	{"Aktywa obrotowe", CurrentAssets},
	{"Zobowiązania razem", TotalLiabilities},
	{"Zobowiązania długoterminowe", LongTermLiabilities},
	{"Zobowiązania krótkoterminowe", ShortTermLiabilities},
	{"W tym: zobowiązania krótkoterminowe", ShortTermLiabilities},
	{"Kapitał własny", Equity},
	{"Kapitał podstawowy", ShareCapital},
	{"Wyemitowany kapitał akcyjny", IssuedCapital},

	// shares
	{"Liczba akcji w sztukach", SharesOutstanding},
	{"Liczba akcji (szt.)", SharesOutstanding},
	{"Średnioważona liczba akcji (w szt.)", WeightedShares},
	{"Wartość księgowa na akcję", BookValuePerShare},
	{"Wartość księgowa na jedną akcję zwykłą", BookValuePerShare},
}

// displayLabels holds the label used when a key is shown to a reader.
var displayLabels = map[MetricKey]string{
	Revenue:                 "Przychody ze sprzedaży",
	OperatingRevenue:        "Przychody operacyjne",
	OperatingCosts:          "Koszty operacyjne",
	OperatingProfit:         "Zysk operacyjny",
	GrossProfit:             "Zysk brutto",
	GrossProfitOnSales:      "Zysk brutto ze sprzedaży",
	ProfitBeforeTax:         "Zysk przed opodatkowaniem",
	NetProfit:               "Zysk netto",
	NetProfitToShareholders: "Zysk netto akcjonariuszy",
	EarningsPerShare:        "Zysk na akcję",
	WeightedEPS:             "Zysk na akcję średnioważoną",
	OperatingCashFlow:       "Przepływy operacyjne",
	InvestingCashFlow:       "Przepływy inwestycyjne",
	FinancingCashFlow:       "Przepływy finansowe",
	TotalAssets:             "Aktywa razem",
	NonCurrentAssets:        "Aktywa trwałe",
	CurrentAssets:           "Aktywa obrotowe",
	TotalLiabilities:        "Zobowiązania razem",
	LongTermLiabilities:     "Zobowiązania długoterminowe",
	ShortTermLiabilities:    "Zobowiązania krótkoterminowe",
	Equity:                  "Kapitał własny",
	ShareCapital:            "Kapitał podstawowy",
	IssuedCapital:           "Wyemitowany kapitał",
	SharesOutstanding:       "Liczba akcji",
	WeightedShares:          "Średnioważona liczba akcji",
	BookValuePerShare:       "Wartość księgowa na akcję",
}

// noiseTokens mark lines inside a lookahead window that carry units or
// sub-headers instead of values. Matched as lower-case substrings.
var noiseTokens = []string{"pln", "eur", "tys", "półrocze", "okres", "w tym:", "dane"}

// zeroTokens are raw lines accepted as an explicit zero value.
var zeroTokens = []string{"0", "-", "(0)"}

var labelIndex = buildLabelIndex()

func buildLabelIndex() map[string]MetricKey {
	idx := make(map[string]MetricKey, len(Vocabulary))
	for _, item := range Vocabulary {
		label := norm.NFC.String(item.Label)
		if _, dup := idx[label]; dup {
			continue
		}
		idx[label] = item.Key
	}
	return idx
}

// Lookup reports the metric key whose label equals line exactly, after trimming
// surrounding whitespace.
func Lookup(line string) (MetricKey, bool) {
	key, ok := labelIndex[norm.NFC.String(strings.TrimSpace(line))]
	return key, ok
}

// Keys returns every canonical metric key once, in vocabulary order.
func Keys() []MetricKey {
	seen := make(map[MetricKey]bool)
	var keys []MetricKey
	for _, item := range Vocabulary {
		if !seen[item.Key] {
			seen[item.Key] = true
			keys = append(keys, item.Key)
		}
	}
	return keys
}

// Label returns the display label of key, or the key itself when unknown.
func Label(key MetricKey) string {
	if l, ok := displayLabels[key]; ok {
		return l
	}
	return string(key)
}

func isNoise(line string) bool {
	lower := strings.ToLower(line)
	for _, tok := range noiseTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

func isZeroToken(line string) bool {
	for _, tok := range zeroTokens {
		if line == tok {
			return true
		}
	}
	return false
}
