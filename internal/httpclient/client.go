// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package httpclient wraps a pooled, timeout-hardened *http.Transport
// with conditional retry and exponential backoff (component C).
package httpclient

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/fuzzbin/fuzzbin/internal/log"
)

const (
	defaultDialTimeout           = 3 * time.Second
	defaultResponseHeaderTimeout = 5 * time.Second
	defaultIdleConnTimeout       = 30 * time.Second
	defaultExpectContinueTimeout = 1 * time.Second
	defaultMaxIdleConns          = 32
	defaultMaxIdleConnsPerHost   = 8
)

// Config configures the transport and its retry policy.
type Config struct {
	// RequestTimeout bounds a single underlying attempt (not the whole
	// retried call).
	RequestTimeout time.Duration
	MaxRedirects   int
	InsecureSkipTLSVerify bool
	MaxConnections        int
	MaxKeepaliveConnections int

	MaxAttempts int
	MinWait     time.Duration
	MaxWait     time.Duration
	// BackoffFactor is the exponential multiplier applied per attempt.
	BackoffFactor float64
	// RetryableStatus is the set of status codes that are retried.
	// Defaults to {408, 429, 500, 502, 503, 504} per §4.C.
	RetryableStatus map[int]bool
}

// DefaultConfig returns the §4.C defaults.
func DefaultConfig() Config {
	return Config{
		RequestTimeout:          10 * time.Second,
		MaxRedirects:            5,
		MaxConnections:          defaultMaxIdleConns,
		MaxKeepaliveConnections: defaultMaxIdleConnsPerHost,
		MaxAttempts:             3,
		MinWait:                 200 * time.Millisecond,
		MaxWait:                 10 * time.Second,
		BackoffFactor:           2,
		RetryableStatus: map[int]bool{
			408: true, 429: true, 500: true, 502: true, 503: true, 504: true,
		},
	}
}

// Client is a reentrant, pooled HTTP client with conditional retry.
type Client struct {
	cfg Config
	hc  *http.Client
}

// New builds a Client from cfg, hardening the transport the way the
// teacher's runtime/ops probe client does (bounded dial/response-header
// timeouts, HTTP/2, bounded idle-connection pool).
func New(cfg Config) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.RetryableStatus == nil {
		cfg.RetryableStatus = DefaultConfig().RetryableStatus
	}
	maxIdle := cfg.MaxConnections
	if maxIdle <= 0 {
		maxIdle = defaultMaxIdleConns
	}
	maxIdlePerHost := cfg.MaxKeepaliveConnections
	if maxIdlePerHost <= 0 {
		maxIdlePerHost = defaultMaxIdleConnsPerHost
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          maxIdle,
		MaxIdleConnsPerHost:   maxIdlePerHost,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultDialTimeout,
		ResponseHeaderTimeout: defaultResponseHeaderTimeout,
		ExpectContinueTimeout: defaultExpectContinueTimeout,
	}
	if cfg.InsecureSkipTLSVerify {
		transport.TLSClientConfig = insecureTLSConfig()
	}

	hc := &http.Client{
		Transport: transport,
		Timeout:   cfg.RequestTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if cfg.MaxRedirects > 0 && len(via) >= cfg.MaxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	return &Client{cfg: cfg, hc: hc}
}

// Do sends req, retrying per the configured policy. A response is
// always returned unmodified when it completes with a non-retryable
// status, per §4.C ("return normally so the caller can inspect the
// response"). The caller is responsible for req.Body being re-readable
// across attempts if non-nil; Verb helpers below handle this via
// GetBody.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	logger := log.WithComponentFromContext(ctx, "httpclient")

	var lastErr error
	var resp *http.Response
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		attemptReq := req
		if attempt > 1 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			clone := req.Clone(ctx)
			clone.Body = body
			attemptReq = clone
		}
		attemptReq = attemptReq.WithContext(ctx)

		if resp != nil {
			_ = resp.Body.Close()
		}
		resp, lastErr = c.hc.Do(attemptReq)

		retryable := false
		switch {
		case lastErr != nil:
			retryable = shouldRetry(lastErr)
		case c.cfg.RetryableStatus[resp.StatusCode]:
			retryable = true
		default:
			return resp, nil
		}
		if !retryable || attempt == c.cfg.MaxAttempts {
			break
		}

		sleep := backoffDelay(c.cfg, attempt)
		logger.Debug().Int("attempt", attempt).Dur("sleep", sleep).Msg("retrying request")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return resp, nil
}

// backoffDelay computes the exponential backoff for the attempt just
// completed (1-indexed), clamped to [MinWait, MaxWait].
func backoffDelay(cfg Config, attempt int) time.Duration {
	factor := 1.0
	for i := 1; i < attempt; i++ {
		factor *= cfg.BackoffFactor
	}
	d := time.Duration(float64(cfg.MinWait) * factor)
	if d < cfg.MinWait {
		d = cfg.MinWait
	}
	if d > cfg.MaxWait {
		d = cfg.MaxWait
	}
	return d
}

// shouldRetry classifies network-class failures as retryable per
// §4.C: connect/read/write/pool timeouts and general network errors.
// Any error surfaced by http.Client.Do at this layer is by construction
// a transport-level failure (connect, TLS, timeout, or I/O) rather than
// an application response, so it is always network-class.
func shouldRetry(err error) bool {
	return err != nil
}
