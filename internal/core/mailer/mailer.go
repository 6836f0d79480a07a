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

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

const (
	mailRetryMax = 2
	mailTimeout  = 10 * time.Second
)

// Mailer sends transactional mail through an HTTP mail API. Welcome
// mail is fire-and-forget: delivery failures are logged, never
// surfaced to the subscriber.
type Mailer struct {
	APIURL string
	APIKey string
	From   string
	Client *retryablehttp.Client
	Logger *zap.Logger
}

// NewMailer builds a mailer with a quiet retrying client.
func NewMailer(apiURL, apiKey, from string, logger *zap.Logger) *Mailer {
	client := retryablehttp.NewClient()
	client.RetryMax = mailRetryMax
	client.HTTPClient.Timeout = mailTimeout
	client.Logger = nil

	return &Mailer{
		APIURL: strings.TrimRight(apiURL, "/"),
		APIKey: apiKey,
		From:   from,
		Client: client,
		Logger: logger,
	}
}

type mailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// SendWelcome delivers the subscription welcome mail synchronously.
func (m *Mailer) SendWelcome(ctx context.Context, email string) error {
	if m == nil || m.APIURL == "" {
		return errors.New("mailer is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	body, err := json.Marshal(mailRequest{
		From:    m.From,
		To:      email,
		Subject: "Bienvenido al boletín",
		Text:    "Gracias por suscribirte. Recibirás nuestras noticias destacadas cada semana.",
	})
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, m.APIURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if m.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.APIKey)
	}

	client := m.Client
	if client == nil {
		client = retryablehttp.NewClient()
		client.RetryMax = mailRetryMax
		client.Logger = nil
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send welcome mail: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if resp.StatusCode >= http.StatusMultipleChoices {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) // nolint:errcheck
		return fmt.Errorf("send welcome mail: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// SendWelcomeAsync dispatches the welcome mail in the background. The
// subscription response never waits on the mail API.
func (m *Mailer) SendWelcomeAsync(email string) {
	if m == nil || m.APIURL == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()

		if err := m.SendWelcome(ctx, email); err != nil && m.Logger != nil {
			m.Logger.Warn("welcome mail failed", zap.Error(err))
		}
	}()
}
