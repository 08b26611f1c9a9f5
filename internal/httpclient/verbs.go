// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net/http"
)

func insecureTLSConfig() *tls.Config {
	return &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-in via Config.InsecureSkipTLSVerify
}

func newRequest(ctx context.Context, method, url string, body []byte, headers http.Header) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

// Get issues a GET request through Do.
func (c *Client) Get(ctx context.Context, url string, headers http.Header) (*http.Response, error) {
	req, err := newRequest(ctx, http.MethodGet, url, nil, headers)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Post issues a POST request through Do.
func (c *Client) Post(ctx context.Context, url string, body []byte, headers http.Header) (*http.Response, error) {
	req, err := newRequest(ctx, http.MethodPost, url, body, headers)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Put issues a PUT request through Do.
func (c *Client) Put(ctx context.Context, url string, body []byte, headers http.Header) (*http.Response, error) {
	req, err := newRequest(ctx, http.MethodPut, url, body, headers)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Patch issues a PATCH request through Do.
func (c *Client) Patch(ctx context.Context, url string, body []byte, headers http.Header) (*http.Response, error) {
	req, err := newRequest(ctx, http.MethodPatch, url, body, headers)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Delete issues a DELETE request through Do.
func (c *Client) Delete(ctx context.Context, url string, headers http.Header) (*http.Response, error) {
	req, err := newRequest(ctx, http.MethodDelete, url, nil, headers)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}
