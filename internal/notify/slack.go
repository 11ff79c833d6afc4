// Package notify announces published changes to a Slack channel
// through an incoming webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Config configures the Slack notifier.
type Config struct {
	// WebhookURL is the incoming webhook endpoint. Required.
	WebhookURL string
	// Repository is the human-readable repository name; it replaces the
	// {repository} placeholder in messages.
	Repository string
	// Channel overrides the webhook's default channel when set.
	Channel string
	// Owner is the author name shown on the notification attachment.
	Owner string
	// Timeout bounds the webhook request. Defaults to 10s.
	Timeout time.Duration
}

// SlackNotifier implements engine.Notifier against a Slack incoming
// webhook. The message may contain the {repository} and {changes_link}
// placeholders.
type SlackNotifier struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger
}

// NewSlackNotifier creates a notifier posting to cfg.WebhookURL.
func NewSlackNotifier(cfg Config, log *zap.Logger) (*SlackNotifier, error) {
	if cfg.WebhookURL == "" {
		return nil, fmt.Errorf("slack webhook URL must not be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SlackNotifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}, nil
}

type payload struct {
	Text        string       `json:"text"`
	Channel     string       `json:"channel,omitempty"`
	Attachments []attachment `json:"attachments,omitempty"`
}

type attachment struct {
	Fallback   string `json:"fallback,omitempty"`
	AuthorName string `json:"author_name,omitempty"`
	Title      string `json:"title"`
	TitleLink  string `json:"title_link"`
	Text       string `json:"text,omitempty"`
	Color      string `json:"color,omitempty"`
}

// Notify posts the expanded message. A non-2xx response is an error.
func (n *SlackNotifier) Notify(ctx context.Context, message, changesLink string) error {
	expanded := strings.NewReplacer(
		"{repository}", n.cfg.Repository,
		"{changes_link}", changesLink,
	).Replace(message)

	body := payload{Text: expanded, Channel: n.cfg.Channel}
	if changesLink != "" {
		body.Attachments = []attachment{{
			Fallback:   expanded,
			AuthorName: n.cfg.Owner,
			Title:      "Proposed changes",
			TitleLink:  changesLink,
			Text:       expanded,
			Color:      "good",
		}}
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post slack notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned %s", resp.Status)
	}
	n.log.Debug("slack notification sent", zap.String("repository", n.cfg.Repository))
	return nil
}
