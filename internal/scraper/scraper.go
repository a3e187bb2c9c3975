package scraper

import (
	"context"
	"time"
)

type Scraper interface {
	Name() string
	Scrape(ctx context.Context, target string, opts Options) (Content, error)
}

type Content interface {
	ToHTML() (string, error)
	ToText() (string, error)
	ToMarkdown() (string, error)
	ToJSON() ([]byte, error)
	ToCSV() (string, error)
}

type Options struct {
	WaitFor    string // load/element/time
	WaitTarget string
	Timeout    time.Duration
	ShowUI     bool
	ProxyURL   string            // --proxy flag or ESPIWATCH_PROXY env var
	Keywords   []string          // title keywords marking a periodic report (listing mode)
	Extra      map[string]string // Site-specific parameters
}
