// Package relay forwards called numbers to a chat gateway
// (Evolution API sendText endpoint).
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"net/http"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 500 * time.Millisecond
	DefaultMaxDelay    = 5 * time.Second
	DefaultTimeout     = 15 * time.Second
	jitterFactor       = 0.2
)

var (
	ErrNotConfigured = errors.New("relay not configured")
	// ErrRejected marks a non-retryable gateway response (4xx).
	ErrRejected = errors.New("relay rejected message")
)

type Config struct {
	URL    string
	APIKey string
	// Number is the recipient (international format, digits only).
	Number string
	// Delay asks the gateway to show "typing" for this long before sending.
	Delay       time.Duration
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

type Notifier struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) (*Notifier, error) {
	if cfg.URL == "" || cfg.Number == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultMaxDelay
	}
	return &Notifier{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

type options struct {
	Delay       int64  `json:"delay"`
	Presence    string `json:"presence"`
	LinkPreview bool   `json:"linkPreview"`
}

type textMessage struct {
	Text string `json:"text"`
}

type payload struct {
	Number      string      `json:"number"`
	Options     options     `json:"options"`
	TextMessage textMessage `json:"textMessage"`
}

// retryable wraps errors worth another attempt.
type retryable struct{ err error }

func (r retryable) Error() string { return r.err.Error() }
func (r retryable) Unwrap() error { return r.err }

// Notify sends text, retrying transport errors and 5xx responses with
// exponential backoff.
func (n *Notifier) Notify(ctx context.Context, text string) error {
	body, err := json.Marshal(payload{
		Number: n.cfg.Number,
		Options: options{
			Delay:    n.cfg.Delay.Milliseconds(),
			Presence: "composing",
		},
		TextMessage: textMessage{Text: text},
	})
	if err != nil {
		return fmt.Errorf("encode relay payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < n.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = n.send(ctx, body)
		if lastErr == nil {
			return nil
		}
		var r retryable
		if !errors.As(lastErr, &r) || attempt == n.cfg.MaxAttempts-1 {
			break
		}
		delay := n.backoff(attempt)
		log.Printf("RELAY retry %d/%d in %v: %v", attempt+1, n.cfg.MaxAttempts-1, delay, lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}

func (n *Notifier) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.cfg.APIKey != "" {
		req.Header.Set("apikey", n.cfg.APIKey)
	}
	resp, err := n.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return retryable{fmt.Errorf("relay request: %w", err)}
	}
	defer resp.Body.Close()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	switch {
	case resp.StatusCode >= 500:
		return retryable{fmt.Errorf("relay status %d: %s", resp.StatusCode, snippet)}
	case resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, snippet)
	}
	return nil
}

func (n *Notifier) backoff(attempt int) time.Duration {
	delay := n.cfg.BaseDelay << min(attempt, 6)
	if delay > n.cfg.MaxDelay {
		delay = n.cfg.MaxDelay
	}
	jitter := float64(delay) * jitterFactor * (rand.Float64() - 0.5)
	return time.Duration(float64(delay) + jitter)
}
