// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metaclient

import (
	"encoding/base64"
	"net/http"
)

// APIKeyAuth injects a static API key as a query parameter, the
// strategy IMVDB and most metadata services expect.
type APIKeyAuth struct {
	Param string
	Key   string
}

func (a APIKeyAuth) Apply(req *http.Request) {
	q := req.URL.Query()
	q.Set(a.Param, a.Key)
	req.URL.RawQuery = q.Encode()
}
func (APIKeyAuth) HeaderNames() []string { return nil }

// BasicAuth injects HTTP basic credentials.
type BasicAuth struct {
	Username string
	Password string
}

func (b BasicAuth) Apply(req *http.Request) {
	token := base64.StdEncoding.EncodeToString([]byte(b.Username + ":" + b.Password))
	req.Header.Set("Authorization", "Basic "+token)
}
func (BasicAuth) HeaderNames() []string { return []string{"Authorization"} }
