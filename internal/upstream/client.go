// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/shadowscan/internal/logging"
	"github.com/tomtom215/shadowscan/internal/metrics"
	"github.com/tomtom215/shadowscan/internal/models"
)

// Call outcomes recorded in metrics.
const (
	outcomeSuccess  = "success"
	outcomeFailure  = "failure"
	outcomeRejected = "rejected"
)

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// Retryable reports whether the response is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// IsStatus reports whether err carries an HTTP status code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// request is one logical call. Retries reuse it.
type request struct {
	method         string
	path           string
	query          url.Values
	body           any
	idempotencyKey string
}

// client is the shared HTTP pipeline for one collaborator.
type client struct {
	service string
	base    string
	cfg     ServiceConfig
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[struct{}]
}

func newClient(service string, cfg ServiceConfig, hc *http.Client) *client {
	if hc == nil {
		hc = &http.Client{}
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &client{
		service: service,
		base:    strings.TrimRight(cfg.URL, "/"),
		cfg:     cfg,
		http:    hc,
		limiter: rate.NewLimiter(limit, burst),
		cb:      newBreaker("upstream-"+service, cfg.BreakerTimeout),
	}
}

// newBreaker opens at a 60% failure rate over at least 10 requests.
// Non-retryable status errors count as successes: the service answered.
func newBreaker(name string, timeout time.Duration) *gobreaker.CircuitBreaker[struct{}] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= 0.6 {
				logging.Warn().Str("breaker", name).Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).Msg("opening upstream circuit")
				return true
			}
			return false
		},
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return !se.Retryable()
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("upstream breaker state changed")
			metrics.RecordBreakerTransition(name, from, to)
		},
	})
}

// do runs req with retries and decodes a JSON response into out. Every
// failure comes back as *models.UpstreamUnavailableError.
func (c *client) do(ctx context.Context, req request, out any) error {
	start := time.Now()
	attempts := 0

	var body []byte
	if req.body != nil {
		var err error
		if body, err = json.Marshal(req.body); err != nil {
			return fmt.Errorf("%s: encode request: %w", c.service, err)
		}
	}

	op := func() (struct{}, error) {
		attempts++
		err := c.attempt(ctx, req, body, out)
		if err == nil {
			return struct{}{}, nil
		}
		var se *StatusError
		if errors.As(err, &se) && !se.Retryable() {
			return struct{}{}, backoff.Permanent(err)
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return struct{}{}, backoff.Permanent(err)
		}
		logging.CtxDebug(ctx).Err(err).Str("service", c.service).Int("attempt", attempts).Msg("upstream attempt failed")
		return struct{}{}, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.RetryInitial
	bo.MaxInterval = c.cfg.RetryMax

	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(c.cfg.MaxAttempts)),
		backoff.WithMaxElapsedTime(0),
	)

	outcome := outcomeSuccess
	switch {
	case err == nil:
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = outcomeRejected
	default:
		outcome = outcomeFailure
	}
	metrics.RecordUpstream(c.service, outcome, time.Since(start))

	if err != nil {
		logging.CtxWarn(ctx).Err(err).Str("service", c.service).Str("path", req.path).
			Int("attempts", attempts).Msg("upstream call failed")
		return &models.UpstreamUnavailableError{Service: c.service, Attempts: attempts, Err: err}
	}
	return nil
}

// attempt performs a single rate-limited, breaker-guarded HTTP exchange.
func (c *client) attempt(ctx context.Context, req request, body []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	_, err := c.cb.Execute(func() (struct{}, error) {
		u := c.base + req.path
		if len(req.query) > 0 {
			u += "?" + req.query.Encode()
		}
		var rdr io.Reader
		if body != nil {
			rdr = bytes.NewReader(body)
		}
		hr, err := http.NewRequestWithContext(ctx, req.method, u, rdr)
		if err != nil {
			return struct{}{}, err
		}
		hr.Header.Set("Accept", "application/json")
		if body != nil {
			hr.Header.Set("Content-Type", "application/json")
		}
		if c.cfg.Token != "" {
			hr.Header.Set("Authorization", "Bearer "+c.cfg.Token)
		}
		if id := logging.CorrelationIDFromContext(ctx); id != "" {
			hr.Header.Set("X-Correlation-ID", id)
		}
		if req.idempotencyKey != "" {
			hr.Header.Set("Idempotency-Key", req.idempotencyKey)
		}

		resp, err := c.http.Do(hr)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return struct{}{}, &StatusError{Code: resp.StatusCode, Body: logging.RedactCredentials(strings.TrimSpace(string(snippet)))}
		}
		if out == nil || resp.StatusCode == http.StatusNoContent {
			_, _ = io.Copy(io.Discard, resp.Body)
			return struct{}{}, nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return struct{}{}, fmt.Errorf("decode response: %w", err)
		}
		return struct{}{}, nil
	})
	return err
}

// State returns the breaker state for health reporting.
func (c *client) State() gobreaker.State {
	return c.cb.State()
}
