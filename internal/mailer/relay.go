package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/northfiber/fiberops-backend/pkg/config"
)

const relayTimeout = 15 * time.Second

// ErrRelayNotConfigured is returned when no relay endpoint is set.
var ErrRelayNotConfigured = errors.New("mail relay endpoint not configured")

// OutboundMail is the relay request body.
type OutboundMail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// RelayClient posts rendered mail to the HTTP relay the office already uses.
type RelayClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	from       string
}

// RelayOption customizes the relay client.
type RelayOption func(*RelayClient)

// WithRelayHTTPClient swaps the underlying HTTP client, mainly for tests.
func WithRelayHTTPClient(client *http.Client) RelayOption {
	return func(r *RelayClient) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// NewRelayClient builds a relay client from the mail config.
func NewRelayClient(cfg config.MailRelayConfig, opts ...RelayOption) *RelayClient {
	client := &RelayClient{
		httpClient: &http.Client{Timeout: relayTimeout},
		endpoint:   strings.TrimSpace(cfg.Endpoint),
		apiKey:     cfg.APIKey,
		from:       cfg.From,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Send posts the mail and treats any non-2xx response as a failure.
func (r *RelayClient) Send(ctx context.Context, mail OutboundMail) error {
	if r.endpoint == "" {
		return ErrRelayNotConfigured
	}
	if mail.From == "" {
		mail.From = r.from
	}

	body, err := json.Marshal(mail)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting to mail relay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail relay returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
