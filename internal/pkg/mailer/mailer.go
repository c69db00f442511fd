// Package mailer sends transactional email through the Resend HTTP API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	resendEndpoint = "https://api.resend.com/emails"
	sendTimeout    = 15 * time.Second
)

// Mailer delivers one HTML email. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// ResendMailer sends email via the Resend API.
type ResendMailer struct {
	apiKey string
	from   string
	client *http.Client
	logger *slog.Logger
}

// NewResendMailer creates a mailer using the given API key and From address.
func NewResendMailer(apiKey, from string, logger *slog.Logger) *ResendMailer {
	return &ResendMailer{
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: sendTimeout},
		logger: logger,
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Send posts one email to the Resend API.
func (m *ResendMailer) Send(ctx context.Context, to, subject, html string) error {
	payload, err := json.Marshal(resendRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to encode email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("email provider returned status %d: %s", resp.StatusCode, string(body))
	}

	m.logger.Info("Email sent",
		slog.String("to", to),
		slog.String("subject", subject))
	return nil
}

// NoopMailer discards email; used when no API key is configured and in tests.
type NoopMailer struct {
	logger *slog.Logger
}

// NewNoopMailer creates a mailer that logs and drops every message.
func NewNoopMailer(logger *slog.Logger) *NoopMailer {
	return &NoopMailer{logger: logger}
}

// Send logs the message and discards it.
func (m *NoopMailer) Send(_ context.Context, to, subject, _ string) error {
	if m.logger != nil {
		m.logger.Debug("Email delivery disabled, dropping message",
			slog.String("to", to),
			slog.String("subject", subject))
	}
	return nil
}
