package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL of the Telegram Bot API.
	DefaultBaseURL = "https://api.telegram.org"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 20 * time.Second

	// DefaultRateLimit is the default number of messages per second. Telegram
	// allows about one message per second to a single chat.
	DefaultRateLimit = 1
)

var (
	// ErrSend is returned when the Bot API rejects a message.
	ErrSend = errors.New("telegram send failed")

	// ErrNotConfigured is returned when the token or chat id is missing.
	ErrNotConfigured = errors.New("telegram token or chat id missing")
)

// Telegram sends HTML messages to one chat through the Bot API.
type Telegram struct {
	baseURL    string
	token      string
	chatID     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures the Telegram client.
type Option func(*Telegram)

// WithBaseURL sets a custom API base URL.
func WithBaseURL(baseURL string) Option {
	return func(t *Telegram) {
		t.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(t *Telegram) {
		t.httpClient = httpClient
	}
}

// WithRateLimit sets a custom rate limit in messages per second.
func WithRateLimit(perSecond int) Option {
	return func(t *Telegram) {
		t.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
	}
}

// NewTelegram creates a Telegram client for the bot token and chat.
func NewTelegram(token, chatID string, opts ...Option) *Telegram {
	t := &Telegram{
		baseURL: DefaultBaseURL,
		token:   token,
		chatID:  chatID,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// Send posts an HTML formatted message to the chat.
func (t *Telegram) Send(ctx context.Context, text string) error {
	if t.token == "" || t.chatID == "" {
		return ErrNotConfigured
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	payload, err := json.Marshal(sendMessageRequest{
		ChatID:                t.chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		// the token is part of the URL, keep it out of the error
		return fmt.Errorf("%w: request error", ErrSend)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d: %s", ErrSend, resp.StatusCode, bytes.TrimSpace(body))
	}

	zerolog.Ctx(ctx).Debug().Str("chat_id", t.chatID).Msg("telegram message sent")
	return nil
}
