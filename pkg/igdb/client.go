package igdb

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MattThePandah/RA-Tracker/pkg/errors"
	"github.com/MattThePandah/RA-Tracker/pkg/logger"
	"github.com/MattThePandah/RA-Tracker/pkg/metrics"
	"github.com/MattThePandah/RA-Tracker/pkg/models"
	"github.com/MattThePandah/RA-Tracker/pkg/ratelimit"
	"github.com/MattThePandah/RA-Tracker/pkg/retry"
)

// TokenSource supplies the bearer token for catalog requests
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL         string
	ClientID        string
	RequestTimeout  time.Duration
	DownloadTimeout time.Duration
	// Cooldown is the wait after a 429 before the identical request is retried
	Cooldown time.Duration
	// MaxRetries bounds how many times a rate-limited request is retried
	MaxRetries int
	// HTTPClient overrides the transport, mainly for tests
	HTTPClient *http.Client
	Metrics    *metrics.Metrics
	Logger     logger.Logger
}

// Client is an IGDB catalog client
type Client struct {
	httpClient     *http.Client
	downloadClient *http.Client
	baseURL        string
	clientID       string
	tokens         TokenSource
	limiter        ratelimit.Limiter
	cooldown       time.Duration
	maxRetries     int
	metrics        *metrics.Metrics
	logger         logger.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a catalog client. Every catalog request goes through
// limiter first.
func NewClient(tokens TokenSource, limiter ratelimit.Limiter, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = BaseURL
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.DownloadTimeout <= 0 {
		opts.DownloadTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetLogger()
	}

	var transport http.RoundTripper
	if opts.HTTPClient != nil {
		transport = opts.HTTPClient.Transport
	}

	return &Client{
		httpClient:     &http.Client{Timeout: opts.RequestTimeout, Transport: transport},
		downloadClient: &http.Client{Timeout: opts.DownloadTimeout, Transport: transport},
		baseURL:        opts.BaseURL,
		clientID:       opts.ClientID,
		tokens:         tokens,
		limiter:        limiter,
		cooldown:       opts.Cooldown,
		maxRetries:     opts.MaxRetries,
		metrics:        opts.Metrics,
		logger:         opts.Logger.WithField("component", "igdb"),
		sleep:          retry.Wait,
	}
}

// FetchPage returns up to limit cover records for platform starting at
// offset. On failure the returned slice is empty and the error is typed:
// request errors for bad arguments, transport failures, non-2xx responses
// and undecodable bodies, rate_limit when 429s outlast the retries, and
// authentication when no token can be obtained. A cancelled context is
// returned as is.
func (c *Client) FetchPage(ctx context.Context, platform models.Platform, limit, offset int) ([]models.CoverRecord, error) {
	if limit <= 0 || limit > MaxPageSize {
		return nil, errors.New(errors.ErrorTypeRequest, 0, "limit %d outside 1..%d", limit, MaxPageSize)
	}
	if offset < 0 {
		return nil, errors.New(errors.ErrorTypeRequest, 0, "negative offset %d", offset)
	}

	query := BuildQuery(platform.RemoteID, limit, offset)
	log := c.logger.WithField("platform", platform.Name)

	games, err := retry.DoWithResult(func() ([]Game, error) {
		if err := c.limiter.Throttle(ctx); err != nil {
			return nil, err
		}
		games, err := c.queryGames(ctx, query)
		if errors.Is(err, errors.ErrorTypeRateLimit) {
			c.metrics.IncRateLimited()
		}
		return games, err
	}, &retry.Config{
		MaxAttempts: c.maxRetries + 1,
		Backoff:     &retry.ConstantBackoff{Delay: c.cooldown},
		RetryIf: func(err error) bool {
			return errors.Is(err, errors.ErrorTypeRateLimit)
		},
		OnRetry: func(attempt int, _ error, delay time.Duration) {
			logger.LogRateLimit(log, GamesEndpoint, delay, attempt)
		},
		Context: ctx,
		Sleep:   c.sleep,
	})
	if err != nil {
		if stderrors.Is(err, retry.ErrMaxAttempts) {
			return nil, errors.New(errors.ErrorTypeRateLimit, http.StatusTooManyRequests,
				"still rate limited after %d retries", c.maxRetries)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	records := make([]models.CoverRecord, 0, len(games))
	for _, g := range games {
		records = append(records, g.Record(platform))
	}
	return records, nil
}

// queryGames sends one games query
func (c *Client) queryGames(ctx context.Context, query string) ([]Game, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.TypeOf(err) == errors.ErrorTypeUnknown {
			err = errors.Wrap(errors.ErrorTypeAuthentication, err, "obtain access token")
		}
		return nil, err
	}

	url := GamesURL(c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(query))
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeRequest, err, "create request")
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Accept", "application/json")

	resp, err := c.doRequest(c.httpClient, req, GamesEndpoint)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp, url, errors.ErrorTypeRequest); err != nil {
		if resp.StatusCode == http.StatusUnauthorized {
			c.invalidateToken()
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeRequest, err, "read response body")
	}

	var games []Game
	if err := json.Unmarshal(body, &games); err != nil {
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview(body),
		})
		return nil, errors.Wrap(errors.ErrorTypeRequest, err, "decode games response")
	}

	return games, nil
}

// invalidateToken drops a token the API rejected so the next request
// exchanges a fresh one
func (c *Client) invalidateToken() {
	if inv, ok := c.tokens.(interface{ Invalidate() }); ok {
		inv.Invalidate()
		c.logger.Warn("Access token rejected, will request a new one")
	}
}

// Download fetches an image. The caller closes the returned body.
func (c *Client) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeDownload, err, "create request")
	}

	resp, err := c.doRequest(c.downloadClient, req, "image")
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeDownload, err, "download %s", url)
	}

	if err := c.checkResponseStatus(resp, url, errors.ErrorTypeDownload); err != nil {
		resp.Body.Close()
		return nil, err
	}

	return resp.Body, nil
}

// doRequest performs an HTTP request with logging and metrics
func (c *Client) doRequest(client *http.Client, req *http.Request, endpoint string) (*http.Response, error) {
	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	c.metrics.IncRequest(endpoint)
	resp, err := client.Do(req)
	duration := time.Since(start)
	c.metrics.ObserveDuration(duration)

	if err != nil {
		c.logger.WarnWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.Wrap(errors.ErrorTypeRequest, err, "network error")
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// checkResponseStatus maps a non-2xx status onto a typed error. 429 is
// always a rate_limit error, anything else gets failType.
func (c *Client) checkResponseStatus(resp *http.Response, url string, failType errors.ErrorType) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	fields := map[string]interface{}{
		"status":       resp.StatusCode,
		"url":          url,
		"body_preview": preview(body),
	}

	if errors.IsRetryableStatusCode(resp.StatusCode) {
		c.logger.WarnWithFields("rate limit exceeded", fields)
		return errors.New(errors.ErrorTypeRateLimit, resp.StatusCode, "rate limit exceeded")
	}

	c.logger.WarnWithFields("unexpected API status", fields)
	return errors.New(failType, resp.StatusCode, "unexpected status code: %d", resp.StatusCode)
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
