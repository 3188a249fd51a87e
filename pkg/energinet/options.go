// Package energinet is a client for the Energinet "Energi Data Service" API.
// It fetches time-series energy-market data (spot prices, production,
// balancing, forecasts, CO2 emissions) and reshapes the raw record lists
// into time-indexed tables or flat series.
package energinet

import (
	"time"

	"github.com/edu230991/energinet-go/pkg/energinet/transport"
)

// CacheBackend selects how cached responses are stored.
type CacheBackend string

const (
	// CacheFilesystem stores one file per cached response.
	CacheFilesystem CacheBackend = "filesystem"
	// CacheSQLite stores cached responses in a sqlite database.
	CacheSQLite CacheBackend = "sqlite"
)

// DefaultBaseURL is the dataset root of the Energi Data Service API.
const DefaultBaseURL = "https://api.energidataservice.dk/dataset"

// Options configures a Client.
type Options struct {
	// BaseURL overrides the API root. Defaults to DefaultBaseURL.
	BaseURL string
	// CachePath is where cached responses live: a directory for the
	// filesystem backend, a database file for sqlite. Empty disables
	// caching.
	CachePath string
	// CacheBackend selects the cache storage. Defaults to CacheFilesystem.
	CacheBackend CacheBackend
	// CacheExpiry is the cached-response lifetime. Defaults to one hour.
	CacheExpiry time.Duration
	// Timeout bounds each HTTP round trip. Defaults to 30 seconds.
	Timeout time.Duration
	// Getter overrides the HTTP capability, bypassing cache configuration.
	// Used by tests to stub the network.
	Getter transport.Getter
}

// DefaultOptions returns the options used when a field is left zero.
func DefaultOptions() Options {
	return Options{
		BaseURL:      DefaultBaseURL,
		CacheBackend: CacheFilesystem,
		CacheExpiry:  time.Hour,
		Timeout:      30 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.BaseURL == "" {
		o.BaseURL = def.BaseURL
	}
	if o.CacheBackend == "" {
		o.CacheBackend = def.CacheBackend
	}
	if o.CacheExpiry == 0 {
		o.CacheExpiry = def.CacheExpiry
	}
	if o.Timeout == 0 {
		o.Timeout = def.Timeout
	}
	return o
}
