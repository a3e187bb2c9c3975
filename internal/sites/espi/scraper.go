package espi

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"espiwatch/internal/browser"
	"espiwatch/internal/report"
	"espiwatch/internal/scraper"
)

func init() {
	scraper.Register(&ListingScraper{})
	scraper.Register(&ReportScraper{})
	scraper.Register(&CommuniqueScraper{})
}

// Report converts a parsed periodic report into presentable content.
func (d *Disclosure) Report(url string) *report.FinancialReport {
	return report.NewFinancialReport(report.Header{
		Title:   d.Title,
		Company: d.Company,
		Kind:    d.Kind,
		Period:  d.Period,
		URL:     url,
	}, d.Financials, d.Ratios, d.Additional)
}

// fetch renders a single page in a short-lived browser
func fetch(ctx context.Context, target string, opts scraper.Options) (string, error) {
	b, err := browser.New(browser.Config{
		ProxyURL: opts.ProxyURL,
		Headless: !opts.ShowUI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create browser: %w", err)
	}
	defer b.Close()

	return NewClient(b, opts).FetchHTML(ctx, target)
}

// ListingScraper disclosure list scraper
type ListingScraper struct{}

// Name returns site name
func (s *ListingScraper) Name() string {
	return "espi"
}

// Scrape fetches a list page and parses its entries. An empty target selects
// the list page given by the "page" extra option, the first one by default.
func (s *ListingScraper) Scrape(ctx context.Context, target string, opts scraper.Options) (scraper.Content, error) {
	if strings.TrimSpace(target) == "" {
		page := 0
		if raw := opts.Extra["page"]; raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid page: %s", raw)
			}
			page = n
		}
		target = ListPageURL(page)
	}
	keywords := opts.Keywords
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}

	page, err := fetch(ctx, target, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	entries, err := ParseListing(page, target, keywords, time.Now())
	if err != nil {
		return nil, err
	}
	return NewListingContent(target, entries), nil
}

// ReportScraper periodic report scraper
type ReportScraper struct{}

// Name returns site name
func (s *ReportScraper) Name() string {
	return "espi.report"
}

// Scrape fetches a periodic report and extracts its financial data
func (s *ReportScraper) Scrape(ctx context.Context, target string, opts scraper.Options) (scraper.Content, error) {
	page, err := fetch(ctx, target, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report: %w", err)
	}
	d, err := ParseReport(page)
	if err != nil {
		return nil, err
	}
	return d.Report(target), nil
}

// CommuniqueScraper current report scraper
type CommuniqueScraper struct{}

// Name returns site name
func (s *CommuniqueScraper) Name() string {
	return "espi.communique"
}

// Scrape fetches a current report and extracts its topic and body
func (s *CommuniqueScraper) Scrape(ctx context.Context, target string, opts scraper.Options) (scraper.Content, error) {
	page, err := fetch(ctx, target, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch communique: %w", err)
	}
	c, err := ParseCommunique(page)
	if err != nil {
		return nil, err
	}
	return NewCommuniqueContent(c, target), nil
}
