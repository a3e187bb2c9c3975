package monitor

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"espiwatch/internal/analyst"
	"espiwatch/internal/notify"
	"espiwatch/internal/sites/espi"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultInterval is the polling period of the disclosure list.
const DefaultInterval = 60 * time.Second

// NoVerdict replaces the assessment when the reasoning service is unavailable.
const NoVerdict = "Brak oceny AI"

// Source renders ESPI pages.
type Source interface {
	FetchHTML(ctx context.Context, url string) (string, error)
	FetchAll(ctx context.Context, urls []string) []espi.Fetched
}

// Analyst assesses the likely price impact of a disclosure.
type Analyst interface {
	Assess(ctx context.Context, req analyst.Request) (analyst.Verdict, error)
}

// Notifier delivers alert messages.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Config holds the monitor settings
type Config struct {
	ListURL   string
	Companies []string
	Keywords  []string
	Interval  time.Duration
	Tuning    analyst.Tuning
}

// Match is a new list entry that concerns a watched company.
type Match struct {
	espi.Entry
	Company string `json:"company"`
}

// Monitor polls the ESPI list and alerts about new disclosures of watched
// companies. The seen set only remembers the most recent page.
type Monitor struct {
	source   Source
	analyst  Analyst
	notifier Notifier

	listURL   string
	companies []string
	keywords  []string
	interval  time.Duration
	tuning    analyst.Tuning
	now       func() time.Time

	mu   sync.Mutex
	seen map[string]struct{}
}

// New creates a Monitor. A nil analyst disables assessments.
func New(cfg Config, source Source, a Analyst, notifier Notifier) *Monitor {
	m := &Monitor{
		source:    source,
		analyst:   a,
		notifier:  notifier,
		listURL:   cfg.ListURL,
		companies: upperAll(cfg.Companies),
		keywords:  upperAll(cfg.Keywords),
		interval:  cfg.Interval,
		tuning:    cfg.Tuning,
		now:       time.Now,
		seen:      make(map[string]struct{}),
	}
	if m.listURL == "" {
		m.listURL = espi.DefaultListURL
	}
	if len(m.keywords) == 0 {
		m.keywords = espi.DefaultKeywords
	}
	if m.interval <= 0 {
		m.interval = DefaultInterval
	}
	return m
}

// EntryHash identifies a list entry by its title and link.
func EntryHash(e espi.Entry) string {
	sum := md5.Sum([]byte(e.Title + e.Link))
	return hex.EncodeToString(sum[:])
}

// Match reports whether a title concerns the watcher. A report keyword matches
// any company and the title itself stands for the company name; otherwise the
// first watched company contained in the title is returned.
func (m *Monitor) Match(title string) (string, bool) {
	upper := strings.ToUpper(title)
	for _, kw := range m.keywords {
		if kw != "" && strings.Contains(upper, kw) {
			return title, true
		}
	}
	for _, company := range m.companies {
		if company != "" && strings.Contains(upper, company) {
			return company, true
		}
	}
	return "", false
}

// Process returns the matching entries not present on the previous page and
// replaces the seen set with the hashes of entries.
func (m *Monitor) Process(entries []espi.Entry) []Match {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := make(map[string]struct{}, len(entries))
	var matches []Match
	for _, e := range entries {
		h := EntryHash(e)
		current[h] = struct{}{}
		if _, ok := m.seen[h]; ok {
			continue
		}
		if company, ok := m.Match(e.Title); ok {
			matches = append(matches, Match{Entry: e, Company: company})
		}
	}
	m.seen = current
	return matches
}

// Seen reports whether the entry was on the last processed page.
func (m *Monitor) Seen(e espi.Entry) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.seen[EntryHash(e)]
	return ok
}

// RunOnce performs one polling cycle and returns the number of alerts sent.
func (m *Monitor) RunOnce(ctx context.Context) (int, error) {
	logger := zerolog.Ctx(ctx).With().Str("run_id", uuid.NewString()).Logger()
	ctx = logger.WithContext(ctx)

	logger.Info().Str("url", m.listURL).Msg("checking ESPI list")
	page, err := m.source.FetchHTML(ctx, m.listURL)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch list: %w", err)
	}
	entries, err := espi.ParseListing(page, m.listURL, m.keywords, m.now())
	if err != nil {
		return 0, fmt.Errorf("failed to parse list: %w", err)
	}
	if len(entries) == 0 {
		logger.Warn().Msg("no entries found")
		return 0, nil
	}

	matches := m.Process(entries)
	logger.Info().Int("entries", len(entries)).Int("matches", len(matches)).Msg("list processed")
	if len(matches) == 0 {
		return 0, nil
	}
	return m.dispatch(ctx, matches), nil
}

// Prime runs the first cycle. Matches already on the page are reported and
// every entry is remembered.
func (m *Monitor) Prime(ctx context.Context) error {
	sent, err := m.RunOnce(ctx)
	if err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Int("sent", sent).Msg("existing entries loaded")
	return nil
}

// Run primes the monitor and then polls every interval until ctx is done.
// A cycle is skipped while the previous one is still running.
func (m *Monitor) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	if err := m.Prime(ctx); err != nil {
		logger.Error().Err(err).Msg("first cycle failed")
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc("@every "+m.interval.String(), func() {
		if _, err := m.RunOnce(ctx); err != nil {
			logger.Error().Err(err).Msg("cycle failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule monitor: %w", err)
	}

	logger.Info().Dur("interval", m.interval).Msg("monitor started")
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info().Msg("monitor stopped")

	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}

// dispatch loads the details of every match, asks for an assessment and sends
// the alert. Failing entries are logged and skipped.
func (m *Monitor) dispatch(ctx context.Context, matches []Match) int {
	logger := zerolog.Ctx(ctx)

	urls := make([]string, len(matches))
	for i, match := range matches {
		urls[i] = match.Link
	}
	details := m.source.FetchAll(ctx, urls)

	sent := 0
	for i, match := range matches {
		entryLog := logger.With().Str("company", match.Company).Str("link", match.Link).Logger()
		if details[i].Err != nil {
			entryLog.Error().Err(details[i].Err).Msg("failed to fetch disclosure")
			continue
		}

		topic, req, err := m.request(match, details[i].HTML)
		if err != nil {
			entryLog.Error().Err(err).Msg("failed to parse disclosure")
			continue
		}

		alert := notify.Alert{
			Company:  match.Company,
			Title:    match.Title,
			Link:     match.Link,
			Date:     match.Date,
			Topic:    topic,
			Verdict:  m.assess(ctx, req),
			Detected: m.now(),
		}
		if err := m.notifier.Send(ctx, notify.FormatAlert(alert)); err != nil {
			entryLog.Error().Err(err).Msg("failed to send alert")
			continue
		}
		entryLog.Info().Str("title", match.Title).Msg("alert sent")
		sent++
	}
	return sent
}

// request parses a disclosure page and builds its assessment request.
func (m *Monitor) request(match Match, page string) (string, analyst.Request, error) {
	if match.IsReport {
		d, err := espi.ParseReport(page)
		if err != nil {
			return "", analyst.Request{}, err
		}
		return d.Title, analyst.ReportRequest(d, m.tuning), nil
	}
	c, err := espi.ParseCommunique(page)
	if err != nil {
		return "", analyst.Request{}, err
	}
	return c.Title, analyst.CommuniqueRequest(c), nil
}

func (m *Monitor) assess(ctx context.Context, req analyst.Request) string {
	if m.analyst == nil {
		return NoVerdict
	}
	v, err := m.analyst.Assess(ctx, req)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("assessment failed")
		return NoVerdict
	}
	return v.String()
}

func upperAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.ToUpper(strings.TrimSpace(item)); item != "" {
			out = append(out, item)
		}
	}
	return out
}
