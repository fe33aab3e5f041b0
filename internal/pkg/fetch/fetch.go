// Package fetch implements the outbound HTTP policy shared by the catalog
// and aggregator clients: per-attempt timeouts, politeness delays, jittered
// exponential backoff on 429/5xx, a circuit breaker around the transport,
// and tolerant JSON decoding.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/yigit/courseatlas/internal/pkg/apperrors"
	"github.com/yigit/courseatlas/internal/pkg/logger"
)

// Options configures a Client.
type Options struct {
	// Timeout bounds each individual attempt.
	Timeout time.Duration
	// MaxAttempts is the total attempt budget for one call.
	MaxAttempts int
	// InterRequestDelay is the politeness pause before every attempt.
	InterRequestDelay time.Duration
	// RequestsPerSecond caps the outbound rate across concurrent callers.
	// Zero disables the limiter.
	RequestsPerSecond float64
	// BackoffBase is the first retry delay; it doubles per attempt.
	BackoffBase time.Duration
	// BackoffCap is the upper bound on a single retry delay.
	BackoffCap time.Duration
	// JitterFraction spreads each delay by ±fraction.
	JitterFraction float64
	// UserAgent is sent on every request.
	UserAgent string
	// Headers are extra headers sent on every request.
	Headers map[string]string
	// Name labels the circuit breaker and log lines.
	Name string
}

type httpResult struct {
	status int
	body   []byte
}

// Client is a resilient JSON-over-HTTP caller.
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[httpResult]
	log     zerolog.Logger
}

// New builds a Client, filling unset options with defaults.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 4
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = 500 * time.Millisecond
	}
	if opts.BackoffCap <= 0 {
		opts.BackoffCap = 15 * time.Second
	}
	if opts.JitterFraction <= 0 {
		opts.JitterFraction = 0.25
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "courseatlas-sync/1.0"
	}
	if opts.Name == "" {
		opts.Name = "fetch"
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	breaker := gobreaker.NewCircuitBreaker[httpResult](gobreaker.Settings{
		Name:     opts.Name,
		Interval: time.Minute,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		limiter: limiter,
		breaker: breaker,
		log:     logger.WithComponent(opts.Name),
	}
}

// PostJSON posts payload as JSON and decodes the response body into out.
//
// The body is always decoded as JSON regardless of the declared
// Content-Type; the sources are known to mislabel responses. A body that
// does not parse is re-fetched once, then the call fails with
// apperrors.ErrMalformedPayload. 429 and 5xx responses are retried with
// jittered exponential backoff; any other non-2xx status fails immediately.
// Exhausting the attempt budget surfaces the last error.
func (c *Client) PostJSON(ctx context.Context, url string, payload, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request payload: %w", err)
	}

	var lastErr error
	parseRetried := false

	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		if err := c.politeness(ctx); err != nil {
			return err
		}

		res, err := c.attempt(ctx, url, encoded)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			c.log.Warn().Err(err).Int("attempt", attempt).Str("url", url).Msg("request failed")
			if err := c.backoff(ctx, attempt); err != nil {
				return err
			}
			continue
		}

		switch {
		case res.status >= 200 && res.status < 300:
			if err := json.Unmarshal(res.body, out); err != nil {
				if !parseRetried {
					parseRetried = true
					lastErr = fmt.Errorf("%w: %v", apperrors.ErrMalformedPayload, err)
					c.log.Warn().Err(err).Str("url", url).Msg("unparseable body, re-fetching once")
					continue
				}
				return fmt.Errorf("%w: %v", apperrors.ErrMalformedPayload, err)
			}
			return nil

		case res.status == http.StatusTooManyRequests || res.status >= 500:
			lastErr = fmt.Errorf("http status %d", res.status)
			c.log.Warn().Int("status", res.status).Int("attempt", attempt).Str("url", url).Msg("retryable status")
			if err := c.backoff(ctx, attempt); err != nil {
				return err
			}

		default:
			return fmt.Errorf("http status %d", res.status)
		}
	}

	return fmt.Errorf("%w: %v", apperrors.ErrAttemptsExhausted, lastErr)
}

// attempt performs one timeout-bound request through the circuit breaker.
func (c *Client) attempt(ctx context.Context, url string, body []byte) (httpResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	return c.breaker.Execute(func() (httpResult, error) {
		req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return httpResult{}, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.opts.UserAgent)
		for k, v := range c.opts.Headers {
			req.Header.Set(k, v)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return httpResult{}, err
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return httpResult{}, err
		}
		return httpResult{status: resp.StatusCode, body: b}, nil
	})
}

// politeness applies the configured inter-request delay and rate limit.
func (c *Client) politeness(ctx context.Context) error {
	if c.opts.InterRequestDelay > 0 {
		if err := sleep(ctx, c.opts.InterRequestDelay); err != nil {
			return err
		}
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// backoff sleeps base*2^(attempt-1), capped, spread by ±JitterFraction.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	d := c.opts.BackoffBase << uint(attempt-1)
	if d > c.opts.BackoffCap {
		d = c.opts.BackoffCap
	}
	f := c.opts.JitterFraction
	jittered := time.Duration(float64(d) * (1 - f + 2*f*rand.Float64()))
	return sleep(ctx, jittered)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
