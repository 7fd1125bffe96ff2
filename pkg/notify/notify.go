// Package notify delivers outbound messages (OTP texts, status pings)
// through an Upstash QStash-compatible publish endpoint.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	retryx "github.com/vahanlabs/loanflow/pkg/retry"
)

type Config struct {
	URL     string        `split_words:"true" required:"true"`
	Token   string        `split_words:"true" required:"true"`
	Timeout time.Duration `split_words:"true" default:"10s"`
}

// Publisher posts JSON payloads to topics on the publish endpoint.
type Publisher struct {
	baseURL    string
	token      string
	httpClient *http.Client
	retry      retryx.Policy
}

type Option func(*Publisher)

func WithHTTPClient(c *http.Client) Option {
	return func(p *Publisher) { p.httpClient = c }
}

func WithRetry(policy retryx.Policy) Option {
	return func(p *Publisher) { p.retry = policy }
}

func NewPublisher(cfg Config, opts ...Option) (*Publisher, error) {
	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		return nil, errors.New("notify url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	p := &Publisher{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      strings.TrimSpace(cfg.Token),
		httpClient: &http.Client{Timeout: timeout},
		retry:      retryx.DefaultPolicy,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func MustNewPublisher(cfg Config, opts ...Option) *Publisher {
	p, err := NewPublisher(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Publish posts payload as JSON to /v2/publish/<topic>. Transport errors and
// 5xx responses retry; 4xx responses fail immediately.
func (p *Publisher) Publish(ctx context.Context, topic string, payload any) error {
	if strings.TrimSpace(topic) == "" {
		return errors.New("notify topic is required")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: marshal payload: %w", err)
	}

	endpoint := p.baseURL + "/v2/publish/" + url.PathEscape(topic)
	return p.retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return retryx.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if p.token != "" {
			req.Header.Set("Authorization", "Bearer "+p.token)
		}

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("notify: publish %s: %w", topic, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode < 300:
			return nil
		case resp.StatusCode >= 500:
			return fmt.Errorf("notify: publish %s: status %d", topic, resp.StatusCode)
		default:
			return retryx.Permanent(fmt.Errorf("notify: publish %s: status %d", topic, resp.StatusCode))
		}
	})
}
