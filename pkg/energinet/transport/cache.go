package transport

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"time"
)

// Backend stores cached response bodies. Get must treat entries older than
// maxAge as misses.
type Backend interface {
	Get(key string, maxAge time.Duration) ([]byte, bool)
	Set(key string, body []byte) error
	Close() error
}

// Cached wraps a Getter with a response cache. Only successful bodies are
// cached, so the wrapper changes latency and repeat-call behavior but never
// observable output.
type Cached struct {
	next    Getter
	backend Backend
	expiry  time.Duration
}

// NewCached returns a caching wrapper around next with the given entry
// lifetime.
func NewCached(next Getter, backend Backend, expiry time.Duration) *Cached {
	return &Cached{next: next, backend: backend, expiry: expiry}
}

// Get serves from the cache when a fresh entry exists, otherwise delegates
// and stores the result.
func (c *Cached) Get(rawURL string, params url.Values) ([]byte, error) {
	key := CacheKey(rawURL, params)
	if body, ok := c.backend.Get(key, c.expiry); ok {
		return body, nil
	}
	body, err := c.next.Get(rawURL, params)
	if err != nil {
		return nil, err
	}
	if err := c.backend.Set(key, body); err != nil {
		// A cache write failure must not fail the request.
		return body, nil
	}
	return body, nil
}

// Close releases the underlying backend.
func (c *Cached) Close() error { return c.backend.Close() }

// CacheKey derives the stable request signature a response is cached under.
// Parameter encoding is deterministic, so equivalent requests share a key.
func CacheKey(rawURL string, params url.Values) string {
	sum := sha256.Sum256([]byte(rawURL + "?" + params.Encode()))
	return hex.EncodeToString(sum[:])
}
