// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metaclient

import (
	"path/filepath"

	"github.com/fuzzbin/fuzzbin/internal/concurrency"
	"github.com/fuzzbin/fuzzbin/internal/config"
	"github.com/fuzzbin/fuzzbin/internal/ferrors"
	"github.com/fuzzbin/fuzzbin/internal/httpclient"
	"github.com/fuzzbin/fuzzbin/internal/ratelimit"
	"github.com/fuzzbin/fuzzbin/internal/respcache"
)

// ServiceEndpoint names the one piece of per-service information the
// config file does not carry: its fixed base URL and default request
// budget (§4.E: "per-service configuration... hardcoded in the
// subclass/adapter").
type ServiceEndpoint struct {
	BaseURL           string
	RequestsPerSecond float64
	Burst             int
	MaxConcurrent     int
}

// KnownEndpoints are the metadata services Fuzzbin talks to.
var KnownEndpoints = map[string]ServiceEndpoint{
	"imvdb":   {BaseURL: "https://imvdb.com/api/v1", RequestsPerSecond: 2, Burst: 2, MaxConcurrent: 4},
	"youtube": {BaseURL: "https://www.googleapis.com/youtube/v3", RequestsPerSecond: 5, Burst: 5, MaxConcurrent: 8},
	"vimeo":   {BaseURL: "https://api.vimeo.com", RequestsPerSecond: 3, Burst: 3, MaxConcurrent: 4},
}

// authStrategyFor builds the AuthStrategy a ServiceAuth entry
// describes; unsupported/absent strategies fall back to NoAuth.
func authStrategyFor(svc config.ServiceAuth) AuthStrategy {
	switch svc.Strategy {
	case "api_key":
		return APIKeyAuth{Param: "api_key", Key: svc.APIKey}
	case "oauth2":
		return BearerAuth{Token: svc.APIKey}
	case "basic":
		return BasicAuth{Username: svc.Username, Password: svc.Password}
	default:
		return NoAuth{}
	}
}

// NewFromConfig builds a Base for the named service, reading its
// credentials from cfg.APIs[name] (absent entries get NoAuth) and
// caching responses under cfg.ConfigDir/.cache/<name>. name must be a
// KnownEndpoints key.
func NewFromConfig(cfg config.AppConfig, name string) (*Base, error) {
	endpoint, ok := KnownEndpoints[name]
	if !ok {
		return nil, ferrors.InvalidQuery("unknown metadata service %q", name)
	}

	cache, err := respcache.Open(respcache.DefaultConfig(filepath.Join(cfg.ConfigDir, ".cache", name)))
	if err != nil {
		return nil, err
	}

	rate := ratelimit.New(name, ratelimit.PerSecond(endpoint.RequestsPerSecond, endpoint.Burst))
	conc := concurrency.New(endpoint.MaxConcurrent)
	hc := httpclient.New(httpclient.DefaultConfig())
	auth := authStrategyFor(cfg.APIs[name])

	return NewBase(endpoint.BaseURL, auth, rate, conc, hc, cache), nil
}
