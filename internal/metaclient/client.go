// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metaclient is the metadata-service client base (component E):
// it composes the rate limiter (A), concurrency limiter (B), HTTP
// transport (C), and response cache (D) into one call pipeline that
// per-service adapters build on without ever bypassing it.
package metaclient

import (
	"context"
	"io"
	"net/http"

	"github.com/fuzzbin/fuzzbin/internal/concurrency"
	"github.com/fuzzbin/fuzzbin/internal/httpclient"
	"github.com/fuzzbin/fuzzbin/internal/ratelimit"
	"github.com/fuzzbin/fuzzbin/internal/respcache"
)

// AuthStrategy injects credentials into an outbound request. Per
// §4.E, per-service configuration (base URL, rate, auth strategy,
// cache filename) is hardcoded in the subclass/adapter so the public
// config only carries credentials.
type AuthStrategy interface {
	Apply(req *http.Request)
	// HeaderNames lists the headers Apply sets, used as the cache
	// key's auth-identity component.
	HeaderNames() []string
}

// NoAuth is the zero-value AuthStrategy for unauthenticated services.
type NoAuth struct{}

func (NoAuth) Apply(*http.Request)    {}
func (NoAuth) HeaderNames() []string { return nil }

// BearerAuth injects a static bearer token.
type BearerAuth struct{ Token string }

func (b BearerAuth) Apply(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+b.Token)
}
func (BearerAuth) HeaderNames() []string { return []string{"Authorization"} }

// Base composes A-D for one metadata service.
type Base struct {
	BaseURL string
	Auth    AuthStrategy

	rate  *ratelimit.Limiter
	conc  *concurrency.Limiter
	http  *httpclient.Client
	cache *respcache.Cache // may be nil to disable caching
}

// NewBase wires the four substrate components for one service. cache
// may be nil if the service has caching disabled.
func NewBase(baseURL string, auth AuthStrategy, rate *ratelimit.Limiter, conc *concurrency.Limiter, hc *httpclient.Client, cache *respcache.Cache) *Base {
	if auth == nil {
		auth = NoAuth{}
	}
	return &Base{BaseURL: baseURL, Auth: auth, rate: rate, conc: conc, http: hc, cache: cache}
}

// Close releases the service's response cache, if one is configured.
func (b *Base) Close() error {
	if b.cache == nil {
		return nil
	}
	return b.cache.Close()
}

// Call runs the full pipeline for one logical request: acquire rate →
// acquire concurrency → send via transport with cache in front →
// release concurrency. method/url/body describe the request; headers
// may be nil.
func (b *Base) Call(ctx context.Context, method, url string, body []byte, headers http.Header) (*respcache.Entry, error) {
	if err := b.rate.Acquire(ctx); err != nil {
		return nil, err
	}

	var result *respcache.Entry
	err := b.conc.WithAcquire(ctx, func() error {
		req, err := newAuthedRequest(ctx, b.Auth, method, url, body, headers)
		if err != nil {
			return err
		}

		fetch := func(ctx context.Context) (*respcache.Entry, error) {
			resp, err := b.http.Do(ctx, req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()
			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, err
			}
			return &respcache.Entry{Status: resp.StatusCode, Headers: resp.Header, Body: data}, nil
		}

		if b.cache != nil && b.cache.Cacheable(method, 200) {
			key := respcache.Key(method, url, req.Header, b.Auth.HeaderNames())
			entry, err := b.cache.Get(ctx, key, fetch)
			if err != nil {
				return err
			}
			result = entry
			return nil
		}

		entry, err := fetch(ctx)
		if err != nil {
			return err
		}
		result = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func newAuthedRequest(ctx context.Context, auth AuthStrategy, method, url string, body []byte, headers http.Header) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, url, newReader(body))
		if err != nil {
			return nil, err
		}
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	auth.Apply(req)
	return req, nil
}
