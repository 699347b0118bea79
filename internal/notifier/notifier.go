// Package notifier posts a short message to a webhook after journal runs
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/journal"
	"github.com/julianstephens/leverage-journal/internal/logger"
)

type WebhookPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
	Trigger    string `json:"trigger,omitempty"`
	Pages      int    `json:"pages"`
	Failures   int    `json:"failures"`
	Succeeded  bool   `json:"succeeded"`
}

type Notifier struct {
	url    string
	secret string
	client *http.Client
}

// New creates a notifier for the webhook at rawURL. secret, when set, is
// sent in the X-Leverage-Secret header.
func New(rawURL, secret string) (*Notifier, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid notify URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("notify URL must use http or https")
	}
	if u.Host == "" {
		return nil, errors.New("notify URL has no host")
	}
	return &Notifier{
		url:    rawURL,
		secret: secret,
		client: &http.Client{Timeout: constants.NotifyTimeout},
	}, nil
}

// Notify sends payload to the webhook
func (n *Notifier) Notify(ctx context.Context, payload WebhookPayload) error {
	if payload.DurationMs == 0 {
		payload.DurationMs = constants.NotificationDurationMs
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if n.secret != "" {
		req.Header.Set(constants.NotifySecretHeader, n.secret)
	}

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, string(body))
}

// Observer returns a run observer that reports every finished run. Delivery
// failures are logged and never affect the run.
func (n *Notifier) Observer() journal.Observer {
	return func(trigger string, res journal.Result, elapsed time.Duration, err error) {
		ctx, cancel := context.WithTimeout(context.Background(), constants.NotifyTimeout)
		defer cancel()
		if nerr := n.Notify(ctx, Payload(trigger, res, elapsed, err)); nerr != nil {
			logger.Warn("run notification failed", "url", n.url, "err", nerr)
		}
	}
}

// Payload describes one finished run
func Payload(trigger string, res journal.Result, elapsed time.Duration, err error) WebhookPayload {
	p := WebhookPayload{
		Trigger:   trigger,
		Pages:     len(res.Pages),
		Failures:  len(res.Failures),
		Succeeded: err == nil,
	}
	switch {
	case err != nil:
		p.Text = fmt.Sprintf("Journal run (%s) failed: %v", trigger, err)
	case len(res.Failures) > 0:
		p.Text = fmt.Sprintf("Journal regenerated (%s): %d pages, %d failed, %s",
			trigger, p.Pages, p.Failures, elapsed.Round(time.Millisecond))
	default:
		p.Text = fmt.Sprintf("Journal regenerated (%s): %d pages in %s",
			trigger, p.Pages, elapsed.Round(time.Millisecond))
	}
	return p
}
