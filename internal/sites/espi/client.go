package espi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"espiwatch/internal/browser"
	"espiwatch/internal/scraper"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultListURL is the first page of the ESPI/EBI disclosure list.
const DefaultListURL = "https://espiebi.pap.pl/?page=0"

// ListPageURL returns the URL of the n-th disclosure list page, counting from 0.
func ListPageURL(n int) string {
	return fmt.Sprintf("https://espiebi.pap.pl/?page=%d", n)
}

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// WaitStrategy wait strategy type
type WaitStrategy string

const (
	WaitStrategyLoad    WaitStrategy = "load"    // Wait for page to fully load
	WaitStrategyElement WaitStrategy = "element" // Wait for specific element to appear
	WaitStrategyTime    WaitStrategy = "time"    // Wait for fixed time (milliseconds)
)

// Client renders ESPI pages in a shared browser.
// Each fetch opens its own page, so a Client is safe for concurrent use.
type Client struct {
	browser    *browser.Browser
	timeout    time.Duration
	waitFor    WaitStrategy
	waitTarget string
}

// NewClient creates a new Client instance
func NewClient(b *browser.Browser, opts scraper.Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	waitFor := WaitStrategy(opts.WaitFor)
	if waitFor == "" {
		waitFor = WaitStrategyLoad
	}
	return &Client{
		browser:    b,
		timeout:    timeout,
		waitFor:    waitFor,
		waitTarget: opts.WaitTarget,
	}
}

// FetchHTML navigates to url and returns the rendered document HTML
func (c *Client) FetchHTML(ctx context.Context, url string) (string, error) {
	page, err := c.browser.NewPage(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	_ = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent})

	if err := page.Timeout(c.timeout).Navigate(url); err != nil {
		return "", fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := c.applyWaitStrategy(ctx, page); err != nil {
		return "", fmt.Errorf("wait strategy failed: %w", err)
	}

	html, err := page.Timeout(c.timeout).HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read page HTML: %w", err)
	}
	return html, nil
}

// Fetched is the outcome of fetching one URL
type Fetched struct {
	URL  string
	HTML string
	Err  error
}

// FetchAll fetches urls concurrently, each on its own page. Results keep the
// order of urls; a failed URL carries its error instead of aborting the batch.
func (c *Client) FetchAll(ctx context.Context, urls []string) []Fetched {
	type result struct {
		idx int
		Fetched
	}

	results := make([]Fetched, len(urls))
	var wg sync.WaitGroup
	ch := make(chan result, len(urls))

	for i, u := range urls {
		wg.Add(1)
		go func(idx int, url string) {
			defer wg.Done()
			html, err := c.FetchHTML(ctx, url)
			ch <- result{idx: idx, Fetched: Fetched{URL: url, HTML: html, Err: err}}
		}(i, u)
	}

	// Wait for all goroutines to complete before closing channel
	go func() {
		wg.Wait()
		close(ch)
	}()

	for r := range ch {
		results[r.idx] = r.Fetched
	}
	return results
}

// applyWaitStrategy applies wait strategy
func (c *Client) applyWaitStrategy(ctx context.Context, page *rod.Page) error {
	switch c.waitFor {
	case WaitStrategyElement:
		if c.waitTarget == "" {
			return fmt.Errorf("wait target is required for element strategy")
		}
		if _, err := page.Timeout(c.timeout).Element(c.waitTarget); err != nil {
			return fmt.Errorf("failed to wait for element '%s': %w", c.waitTarget, err)
		}
	case WaitStrategyTime:
		if c.waitTarget == "" {
			return fmt.Errorf("wait target is required for time strategy")
		}
		d, err := time.ParseDuration(c.waitTarget + "ms")
		if err != nil {
			return fmt.Errorf("invalid wait time '%s': %w", c.waitTarget, err)
		}
		if err := sleep(ctx, d); err != nil {
			return err
		}
	default:
		if err := page.Timeout(c.timeout).WaitLoad(); err != nil {
			return fmt.Errorf("failed to wait for page load: %w", err)
		}
	}
	return nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
