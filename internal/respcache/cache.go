// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package respcache is the persistent, TTL-plus-stale-while-revalidate
// HTTP response cache (component D). One Cache is opened per
// metadata-service client, backed by its own on-disk badger store so
// that services have independent TTL caches (§5 resource policy).
package respcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/fuzzbin/fuzzbin/internal/log"
)

// Config enumerates the cache's §4.D knobs.
type Config struct {
	Enabled               bool
	Path                  string // backing store path; one file-tree per API client
	DefaultTTL            time.Duration
	StaleWhileRevalidate  time.Duration
	CacheableMethods      map[string]bool
	CacheableStatus       map[int]bool
	// AuthHeaders lists request header names that participate in the
	// key's auth identity (§4.D: "canonical URL + request headers that
	// participate in the auth identity"). Cache itself does not read this
	// field: Key takes the header names as an argument.
	AuthHeaders []string
}

// DefaultConfig returns the §4.D defaults.
func DefaultConfig(path string) Config {
	return Config{
		Enabled:              true,
		Path:                 path,
		DefaultTTL:           15 * time.Minute,
		StaleWhileRevalidate: 24 * time.Hour,
		CacheableMethods:     map[string]bool{http.MethodGet: true, http.MethodHead: true},
		CacheableStatus:      map[int]bool{200: true, 203: true, 204: true, 300: true, 301: true},
	}
}

// Entry is a cached HTTP response.
type Entry struct {
	Status    int                 `json:"status"`
	Headers   map[string][]string `json:"headers"`
	Body      []byte              `json:"body"`
	StoredAt  time.Time           `json:"stored_at"`
}

// Fetcher performs the real upstream call; Cache calls it on miss and,
// in the background, on stale-but-within-SWR hits.
type Fetcher func(ctx context.Context) (*Entry, error)

// Cache is the keyed, persistent response store.
type Cache struct {
	cfg   Config
	db    *badger.DB
	group singleflight.Group
}

// Open opens (creating if absent) the badger store at cfg.Path.
func Open(cfg Config) (*Cache, error) {
	if cfg.CacheableMethods == nil || cfg.CacheableStatus == nil {
		d := DefaultConfig(cfg.Path)
		if cfg.CacheableMethods == nil {
			cfg.CacheableMethods = d.CacheableMethods
		}
		if cfg.CacheableStatus == nil {
			cfg.CacheableStatus = d.CacheableStatus
		}
	}
	opts := badger.DefaultOptions(cfg.Path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Cache{cfg: cfg, db: db}, nil
}

// Close releases the underlying badger store.
func (c *Cache) Close() error { return c.db.Close() }

// Key builds the cache key: normalized method + canonical URL + the
// configured auth-identity headers (§4.D).
func Key(method, url string, headers http.Header, authHeaders []string) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte('\n')
	b.WriteString(url)

	names := append([]string(nil), authHeaders...)
	sort.Strings(names)
	for _, name := range names {
		b.WriteByte('\n')
		b.WriteString(strings.ToLower(name))
		b.WriteByte('=')
		b.WriteString(headers.Get(name))
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Cacheable reports whether method/status are eligible for caching.
func (c *Cache) Cacheable(method string, status int) bool {
	return c.cfg.Enabled && c.cfg.CacheableMethods[strings.ToUpper(method)] && c.cfg.CacheableStatus[status]
}

// Get implements the serve policy of §4.D: fresh hit returns
// immediately; stale-within-SWR hit returns immediately and schedules
// a background refresh; miss or expired-past-SWR does a synchronous
// fetch. Concurrent misses for the same key coalesce onto one upstream
// call via singleflight.
func (c *Cache) Get(ctx context.Context, key string, fetch Fetcher) (*Entry, error) {
	logger := log.WithComponentFromContext(ctx, "respcache")

	entry, found := c.load(key)
	if found {
		age := time.Since(entry.StoredAt)
		switch {
		case age <= c.cfg.DefaultTTL:
			return entry, nil
		case age <= c.cfg.DefaultTTL+c.cfg.StaleWhileRevalidate:
			go c.refreshInBackground(key, fetch, logger)
			return entry, nil
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		fresh, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if c.Cacheable(http.MethodGet, fresh.Status) {
			fresh.StoredAt = time.Now()
			if err := c.store(key, fresh); err != nil {
				logger.Warn().Err(err).Msg("failed to persist cache entry")
			}
		}
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Entry), nil
}

func (c *Cache) refreshInBackground(key string, fetch Fetcher, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, _, _ = c.group.Do("refresh:"+key, func() (any, error) {
		fresh, err := fetch(ctx)
		if err != nil {
			// Errors from background refresh are logged and leave the
			// existing entry untouched, per §4.D.
			logger.Warn().Err(err).Str("key", key).Msg("background cache refresh failed")
			return nil, nil
		}
		if c.Cacheable(http.MethodGet, fresh.Status) {
			fresh.StoredAt = time.Now()
			if err := c.store(key, fresh); err != nil {
				logger.Warn().Err(err).Msg("failed to persist refreshed cache entry")
			}
		}
		return fresh, nil
	})
}

func (c *Cache) load(key string) (*Entry, bool) {
	var entry Entry
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		return nil, false
	}
	return &entry, true
}

func (c *Cache) store(key string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Delete removes a cache entry, e.g. on a 404 observed out-of-band.
func (c *Cache) Delete(key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}
