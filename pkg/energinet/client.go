package energinet

import (
	"fmt"

	"github.com/edu230991/energinet-go/pkg/energinet/models"
	"github.com/edu230991/energinet-go/pkg/energinet/parser"
	"github.com/edu230991/energinet-go/pkg/energinet/query"
	"github.com/edu230991/energinet-go/pkg/energinet/transport"
)

// Client fetches datasets from the Energi Data Service API. It holds no
// state across calls beyond the HTTP capability and its optional cache, and
// performs exactly one blocking round trip per request (zero when served
// from the cache).
type Client struct {
	baseURL string
	getter  transport.Getter
	cache   *transport.Cached
}

// NewClient builds a client from the given options. With a CachePath set,
// responses are cached under it; an explicit Getter bypasses both the real
// HTTP client and the cache.
func NewClient(opts Options) (*Client, error) {
	opts = opts.withDefaults()
	c := &Client{baseURL: opts.BaseURL}

	if opts.Getter != nil {
		c.getter = opts.Getter
		return c, nil
	}

	getter := transport.Getter(transport.NewHTTPGetter(opts.Timeout))
	if opts.CachePath != "" {
		var backend transport.Backend
		var err error
		switch opts.CacheBackend {
		case CacheFilesystem:
			backend, err = transport.NewFilesystemBackend(opts.CachePath)
		case CacheSQLite:
			backend, err = transport.NewSQLiteBackend(opts.CachePath)
		default:
			err = fmt.Errorf("unknown cache backend %q", opts.CacheBackend)
		}
		if err != nil {
			return nil, fmt.Errorf("initializing response cache: %w", err)
		}
		c.cache = transport.NewCached(getter, backend, opts.CacheExpiry)
		getter = c.cache
	}
	c.getter = getter
	return c, nil
}

// Close releases the response cache, if any.
func (c *Client) Close() error {
	if c.cache != nil {
		return c.cache.Close()
	}
	return nil
}

// fetchTable runs the request-and-parse pipeline up to the canonical table:
// build parameters, GET, parse records into a sorted time-indexed table,
// drop columns implied by request-time filters, convert the index to the
// caller's zone and truncate to the exact range.
func (c *Client) fetchTable(dataset string, tr query.TimeRange, filters query.Filters) (*models.Table, error) {
	params, err := query.Build(tr, filters)
	if err != nil {
		return nil, err
	}

	body, err := c.getter.Get(c.baseURL+"/"+dataset, params)
	if err != nil {
		return nil, err
	}

	t, err := parser.ParseRecords(body, filters.Keys())
	if err != nil {
		return nil, err
	}

	// The values of constrained filter columns are implied by the request;
	// re-displaying them would be noise.
	t.DropColumns(filters.ConstrainedKeys()...)

	t.ConvertZone(tr.Start.Location())
	t.Truncate(tr.Start, tr.End)
	return t, nil
}

// FetchSelected fetches a dataset, optionally subsets its columns, and
// squeezes a single remaining column into a Series.
func (c *Client) FetchSelected(dataset string, tr query.TimeRange, columns models.Selector, filters query.Filters) (models.Result, error) {
	t, err := c.fetchTable(dataset, tr, filters)
	if err != nil {
		return nil, err
	}
	if err := t.Select(columns); err != nil {
		return nil, err
	}
	return t.Squeeze(), nil
}

// FetchPivoted fetches a dataset and pivots it by every filter key left
// unconstrained, so each distinct discriminator value becomes its own set of
// columns. Column-axis levels with a single distinct value are collapsed,
// then the column subset and squeeze rules apply as in FetchSelected.
func (c *Client) FetchPivoted(dataset string, tr query.TimeRange, columns models.Selector, filters query.Filters) (models.Result, error) {
	t, err := c.fetchTable(dataset, tr, filters)
	if err != nil {
		return nil, err
	}
	if err := t.Pivot(filters.PivotKeys()); err != nil {
		return nil, err
	}
	if err := t.Select(columns); err != nil {
		return nil, err
	}
	t.CollapseSingletonLevels()
	return t.Squeeze(), nil
}
