package ups

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"
	"github.com/tournevent/upslink/pkg/shipper"
	"github.com/tournevent/upslink/pkg/shipper/ups/builder"
)

// TestToken is the access token used in test mode, where no token
// endpoint is called.
const TestToken = "test_token"

// HTTPTransport is the production implementation of Transport.
type HTTPTransport struct {
	baseURL       string
	testMode      bool
	accountNumber string
	clientID      string
	clientSecret  string
	httpClient    *http.Client
	now           func() time.Time

	mu    sync.Mutex
	token *token
}

// HTTPTransportConfig holds configuration for the HTTP transport.
type HTTPTransportConfig struct {
	BaseURL       string
	TestMode      bool
	AccountNumber string
	ClientID      string
	ClientSecret  string
	Timeout       time.Duration
}

type token struct {
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

// NewHTTPTransport creates a new HTTP transport for production use.
func NewHTTPTransport(cfg HTTPTransportConfig) *HTTPTransport {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPTransport{
		baseURL:       strings.TrimRight(BaseURL(cfg.BaseURL, cfg.TestMode), "/"),
		testMode:      cfg.TestMode,
		accountNumber: cfg.AccountNumber,
		clientID:      cfg.ClientID,
		clientSecret:  cfg.ClientSecret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}
}

// Send posts the request document to UPS.
func (t *HTTPTransport) Send(ctx context.Context, req *APIRequest) (*APIResponse, error) {
	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, t.baseURL+req.Path, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", req.ContentType)
	httpReq.Header.Set("Accept", req.ContentType)
	httpReq.Header.Set("User-Agent", builder.UserAgent)
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(fmt.Sprintf("%s request failed", req.Operation), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(fmt.Sprintf("reading %s response failed", req.Operation), err)
	}
	return &APIResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

// AccessToken returns the cached OAuth token, creating it on first use and
// refreshing it once expired. Test mode always yields TestToken.
func (t *HTTPTransport) AccessToken(ctx context.Context) (string, error) {
	if t.testMode {
		return TestToken, nil
	}
	if t.accountNumber == "" || t.clientID == "" || t.clientSecret == "" {
		return "", shipper.AuthorizationFailed(carrierName, "Missing account_number, client_id, or client_secret", nil)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case t.token == nil:
		tok, err := t.requestToken(ctx, tokenPath, url.Values{"grant_type": {"client_credentials"}}, "Token creation")
		if err != nil {
			return "", err
		}
		t.token = tok
	case !t.now().Before(t.token.expiresAt):
		form := url.Values{"grant_type": {"refresh_token"}, "refresh_token": {t.token.refreshToken}}
		tok, err := t.requestToken(ctx, refreshPath, form, "Token refresh")
		if err != nil {
			return "", err
		}
		t.token = tok
	}
	return t.token.accessToken, nil
}

func (t *HTTPTransport) requestToken(ctx context.Context, path string, form url.Values, action string) (*token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, shipper.AuthorizationFailed(carrierName, action+" request failed", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("x-merchant-id", t.accountNumber)
	req.SetBasicAuth(t.clientID, t.clientSecret)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, shipper.AuthorizationFailed(carrierName, action+" request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, shipper.AuthorizationFailed(carrierName,
			fmt.Sprintf("%s request failed: unexpected response status: %d", action, resp.StatusCode), nil).
			WithStatusCode(resp.StatusCode)
	}

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, shipper.AuthorizationFailed(carrierName, action+" response could not be decoded", err)
	}
	return t.parseToken(data), nil
}

// parseToken reads the loosely typed token payload. UPS sends numbers as
// strings and issued_at in milliseconds.
func (t *HTTPTransport) parseToken(data map[string]any) *token {
	issuedAt := t.now()
	if raw := cast.ToInt64(data["issued_at"]); raw > 0 {
		if raw > 1e12 {
			issuedAt = time.UnixMilli(raw)
		} else {
			issuedAt = time.Unix(raw, 0)
		}
	}
	expiresIn := time.Duration(cast.ToInt64(data["expires_in"])) * time.Second

	return &token{
		accessToken:  cast.ToString(data["access_token"]),
		refreshToken: cast.ToString(data["refresh_token"]),
		expiresAt:    issuedAt.Add(expiresIn),
	}
}

func transportError(message string, cause error) *shipper.ShipperError {
	return shipper.NewShipperError(carrierName, shipper.CodeTransport, message).
		WithCause(cause).
		WithRetryable(true)
}

// Ensure HTTPTransport implements Transport interface
var _ Transport = (*HTTPTransport)(nil)
