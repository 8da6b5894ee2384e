package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/MattThePandah/RA-Tracker/pkg/errors"
	"github.com/MattThePandah/RA-Tracker/pkg/logger"
	"github.com/MattThePandah/RA-Tracker/pkg/metrics"
)

// DefaultTokenURL is the Twitch client-credentials endpoint
const DefaultTokenURL = "https://id.twitch.tv/oauth2/token"

// expiryMargin is how long before expiry a cached token is refreshed
const expiryMargin = 60 * time.Second

// TokenOptions configures a TokenSource
type TokenOptions struct {
	TokenURL   string
	Timeout    time.Duration
	HTTPClient *http.Client
	Metrics    *metrics.Metrics
	Logger     logger.Logger
}

// tokenResponse is the Twitch token endpoint payload
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// TokenSource exchanges client credentials for an app access token and
// caches it until shortly before it expires
type TokenSource struct {
	creds      Credentials
	tokenURL   string
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     logger.Logger

	mu      sync.Mutex
	token   string
	expires time.Time
	now     func() time.Time
}

// NewTokenSource creates a token source. Missing client ID or secret is a
// credentials error.
func NewTokenSource(creds *Credentials, opts TokenOptions) (*TokenSource, error) {
	if creds == nil || creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, errors.New(errors.ErrorTypeCredentials, 0,
			"client ID and client secret are required")
	}
	if opts.TokenURL == "" {
		opts.TokenURL = DefaultTokenURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetLogger()
	}

	var transport http.RoundTripper
	if opts.HTTPClient != nil {
		transport = opts.HTTPClient.Transport
	}

	return &TokenSource{
		creds:      *creds,
		tokenURL:   opts.TokenURL,
		httpClient: &http.Client{Timeout: opts.Timeout, Transport: transport},
		metrics:    opts.Metrics,
		logger:     opts.Logger.WithField("component", "auth"),
		now:        time.Now,
	}, nil
}

// ClientID returns the client ID sent alongside the token
func (s *TokenSource) ClientID() string {
	return s.creds.ClientID
}

// Token returns a cached token, or obtains a new one
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && (s.expires.IsZero() || s.now().Before(s.expires)) {
		return s.token, nil
	}

	resp, err := s.exchange(ctx)
	if err != nil {
		s.metrics.IncError(string(errors.TypeOf(err)))
		return "", err
	}

	s.token = resp.AccessToken
	s.expires = time.Time{}
	if resp.ExpiresIn > 0 {
		s.expires = s.now().Add(time.Duration(resp.ExpiresIn)*time.Second - expiryMargin)
	}

	s.logger.DebugWithFields("Access token obtained", map[string]interface{}{
		"expires_in": resp.ExpiresIn,
	})
	return s.token, nil
}

// Invalidate drops the cached token so the next call fetches a fresh one
func (s *TokenSource) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expires = time.Time{}
}

func (s *TokenSource) exchange(ctx context.Context) (*tokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", s.creds.ClientID)
	form.Set("client_secret", s.creds.ClientSecret)
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeAuthentication, err, "create token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	s.metrics.IncRequest("token")
	resp, err := s.httpClient.Do(req)
	s.metrics.ObserveDuration(time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrorTypeAuthentication, err, "token request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeAuthentication, err, "read token response")
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.WarnWithFields("Token request rejected", map[string]interface{}{
			"status":       resp.StatusCode,
			"body_preview": truncate(string(body), 200),
		})
		return nil, errors.New(errors.ErrorTypeAuthentication, resp.StatusCode,
			"token endpoint returned status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, errors.Wrap(errors.ErrorTypeAuthentication, err, "decode token response")
	}
	if tr.AccessToken == "" {
		return nil, errors.New(errors.ErrorTypeAuthentication, 0, "token response has no access_token")
	}

	return &tr, nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
