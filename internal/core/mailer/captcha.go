package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// CaptchaVerifier checks subscription captcha tokens against the
// verification service. A verifier without a secret accepts everything,
// which keeps local development working without credentials.
type CaptchaVerifier struct {
	VerifyURL string
	Secret    string
	HTTP      *http.Client
	Logger    *zap.Logger
}

// Verify returns whether the token passed verification. Transport and
// decode failures are errors so the caller can apply its fail policy.
func (v *CaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if v == nil || strings.TrimSpace(v.Secret) == "" {
		return true, nil
	}
	if strings.TrimSpace(token) == "" {
		return false, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	form := url.Values{}
	form.Set("secret", v.Secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	verifyURL := v.VerifyURL
	if verifyURL == "" {
		verifyURL = defaultVerifyURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := v.HTTP
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("captcha verify: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("captcha verify: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, fmt.Errorf("captcha verify: %w", err)
	}

	if !payload.Success && v.Logger != nil {
		v.Logger.Debug("captcha rejected", zap.Strings("error_codes", payload.ErrorCodes))
	}
	return payload.Success, nil
}
