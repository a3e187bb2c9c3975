package espi

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
)

// contentSelectors are tried in order to find the main content of a page.
var contentSelectors = []string{"article", "main", "#content", ".content", ".article", ".post"}

// mainFragment returns the HTML of the main content area, falling back to the
// body.
func mainFragment(doc *goquery.Document) string {
	for _, sel := range contentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			if h, err := s.Html(); err == nil && strings.TrimSpace(h) != "" {
				return h
			}
		}
	}
	h, _ := doc.Find("body").Html()
	return h
}

// toMarkdown converts an HTML fragment to Markdown. Disclosure forms are laid
// out with tables, so tables are kept as pipe tables.
func toMarkdown(fragment string) (string, error) {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	out, err := converter.ConvertString(fragment)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}
	return out, nil
}
