package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubScraper struct{ name string }

func (s stubScraper) Name() string { return s.name }

func (s stubScraper) Scrape(ctx context.Context, target string, opts Options) (Content, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	Register(stubScraper{name: "Test.Site"})
	t.Cleanup(func() { delete(registry, "test.site") })

	s, ok := Get("test.SITE")
	assert.True(t, ok)
	assert.Equal(t, "Test.Site", s.Name())
	assert.Contains(t, Names(), "test.site")

	_, ok = Get("missing")
	assert.False(t, ok)
}
