package espi

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// NoDate is used when a list item carries no publication time.
const NoDate = "Nie znaleziono daty"

// DefaultKeywords mark periodic reports in disclosure titles.
var DefaultKeywords = []string{"RAPORT"}

var hourRe = regexp.MustCompile(`^\d{1,2}:\d{2}`)

// Entry is one item of the disclosure list
type Entry struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Date     string `json:"date"`
	TimeRaw  string `json:"time_raw"`
	DateInfo string `json:"date_info_raw"`
	IsReport bool   `json:"is_report"`
}

// ParseListing extracts the li.news items of a disclosure list page. Relative
// links are resolved against baseURL. An item is a report when its upper-cased
// title contains one of keywords. Items without a title or link are skipped.
func ParseListing(rawHTML, baseURL string, keywords []string, now time.Time) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing HTML: %w", err)
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	var entries []Entry
	doc.Find("li.news").Each(func(i int, item *goquery.Selection) {
		link := item.Find("a.link").First()
		if link.Length() == 0 {
			return
		}
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		href = strings.TrimSpace(href)
		if title == "" || href == "" {
			return
		}
		if ref, err := url.Parse(href); err == nil {
			href = base.ResolveReference(ref).String()
		}

		e := Entry{
			Title:    title,
			Link:     href,
			Date:     NoDate,
			IsReport: IsReport(title, keywords),
		}

		hours := item.Find("div.hour")
		if hours.Length() >= 1 {
			e.TimeRaw = strings.TrimSpace(hours.Eq(0).Text())
		}
		if hours.Length() >= 2 {
			e.DateInfo = strings.TrimSpace(hours.Eq(1).Text())
		}
		if hourRe.MatchString(e.TimeRaw) {
			e.Date = now.Format("2006-01-02") + " " + e.TimeRaw
		}

		entries = append(entries, e)
	})
	return entries, nil
}

// IsReport reports whether title contains one of keywords, case-insensitively.
func IsReport(title string, keywords []string) bool {
	upper := strings.ToUpper(title)
	for _, k := range keywords {
		if k != "" && strings.Contains(upper, strings.ToUpper(k)) {
			return true
		}
	}
	return false
}
