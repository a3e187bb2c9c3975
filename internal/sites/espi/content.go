package espi

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// CommuniqueContent current report content, implements scraper.Content interface
type CommuniqueContent struct {
	communique *Communique
	url        string
}

// NewCommuniqueContent creates a new CommuniqueContent instance
func NewCommuniqueContent(c *Communique, url string) *CommuniqueContent {
	return &CommuniqueContent{communique: c, url: url}
}

// ToText returns the topic and the report body
func (c *CommuniqueContent) ToText() (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Temat: %s\n", c.communique.Title))
	if c.url != "" {
		sb.WriteString(fmt.Sprintf("Link: %s\n", c.url))
	}
	sb.WriteString("\n")
	sb.WriteString(c.communique.Body)
	return sb.String(), nil
}

// ToMarkdown returns the main content area converted to Markdown
func (c *CommuniqueContent) ToMarkdown() (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", c.communique.Title))
	if c.url != "" {
		sb.WriteString(fmt.Sprintf("<%s>\n\n", c.url))
	}
	if c.communique.fragment == "" {
		sb.WriteString(c.communique.Body)
		return sb.String(), nil
	}
	body, err := toMarkdown(c.communique.fragment)
	if err != nil {
		return "", err
	}
	sb.WriteString(body)
	return sb.String(), nil
}

// ToHTML returns the HTML of the main content area
func (c *CommuniqueContent) ToHTML() (string, error) {
	if c.communique.fragment != "" {
		return c.communique.fragment, nil
	}
	return "<pre>" + html.EscapeString(c.communique.Body) + "</pre>", nil
}

// ToCSV returns a single record with topic, link and body
func (c *CommuniqueContent) ToCSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Temat", "Link", "Treść"})
	_ = w.Write([]string{c.communique.Title, c.url, c.communique.Body})
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.String(), nil
}

// ToJSON returns JSON format content
func (c *CommuniqueContent) ToJSON() ([]byte, error) {
	return json.MarshalIndent(struct {
		*Communique
		URL string `json:"url"`
	}{c.communique, c.url}, "", "  ")
}

// ListingContent disclosure list content, implements scraper.Content interface
type ListingContent struct {
	source  string
	entries []Entry
}

// NewListingContent creates a new ListingContent instance
func NewListingContent(source string, entries []Entry) *ListingContent {
	return &ListingContent{source: source, entries: entries}
}

func reportMark(e Entry) string {
	if e.IsReport {
		return "R"
	}
	return "-"
}

// ToText returns one line per entry followed by its link
func (l *ListingContent) ToText() (string, error) {
	if len(l.entries) == 0 {
		return "Nie znaleziono wpisów", nil
	}
	var sb strings.Builder
	for _, e := range l.entries {
		sb.WriteString(fmt.Sprintf("%-16s %s %s\n", e.Date, reportMark(e), e.Title))
		sb.WriteString(fmt.Sprintf("%-16s   %s\n", "", e.Link))
	}
	return sb.String(), nil
}

// ToMarkdown returns Markdown format content
func (l *ListingContent) ToMarkdown() (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## ESPI/EBI (%s)\n\n", l.source))
	sb.WriteString("| Data | Raport | Tytuł |\n")
	sb.WriteString("|---|---|---|\n")
	for _, e := range l.entries {
		title := strings.ReplaceAll(e.Title, "|", "\\|")
		sb.WriteString(fmt.Sprintf("| %s | %s | [%s](%s) |\n", e.Date, reportMark(e), title, e.Link))
	}
	return sb.String(), nil
}

// ToHTML returns the entries as an HTML list
func (l *ListingContent) ToHTML() (string, error) {
	var sb strings.Builder
	sb.WriteString("<ul>\n")
	for _, e := range l.entries {
		sb.WriteString(fmt.Sprintf("<li><span>%s</span> <a href=\"%s\">%s</a></li>\n",
			html.EscapeString(e.Date), html.EscapeString(e.Link), html.EscapeString(e.Title)))
	}
	sb.WriteString("</ul>")
	return sb.String(), nil
}

// ToCSV returns CSV format content
func (l *ListingContent) ToCSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Data", "Godzina", "Info", "Raport", "Tytuł", "Link"})
	for _, e := range l.entries {
		_ = w.Write([]string{e.Date, e.TimeRaw, e.DateInfo, fmt.Sprint(e.IsReport), e.Title, e.Link})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.String(), nil
}

// ToJSON returns JSON format content
func (l *ListingContent) ToJSON() ([]byte, error) {
	return json.MarshalIndent(struct {
		Source  string  `json:"source"`
		Entries []Entry `json:"entries"`
	}{l.source, l.entries}, "", "  ")
}
