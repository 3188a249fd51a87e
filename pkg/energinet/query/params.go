// Package query builds the request parameters the Energi Data Service API
// expects: minute-precision CET time bounds, a zero pagination offset, and an
// optional structured filter expression.
package query

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

// apiZoneName is the reference zone the API expects time bounds in.
const apiZoneName = "CET"

// timeLayout is the minute-precision layout used for the start/end parameters.
// The API ignores finer granularity, and emitting seconds would fragment the
// response cache across equivalent requests.
const timeLayout = "2006-01-02T15:04"

var (
	apiZoneOnce sync.Once
	apiZoneLoc  *time.Location
	apiZoneErr  error
)

func apiZone() (*time.Location, error) {
	apiZoneOnce.Do(func() {
		apiZoneLoc, apiZoneErr = time.LoadLocation(apiZoneName)
	})
	return apiZoneLoc, apiZoneErr
}

// TimeRange bounds a request in time. The zone of Start determines the zone
// of the returned index.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Validate checks that the range is non-empty.
func (tr TimeRange) Validate() error {
	if !tr.Start.Before(tr.End) {
		return &RangeError{Start: tr.Start, End: tr.End}
	}
	return nil
}

// RangeError reports a time range whose start is not before its end.
type RangeError struct {
	Start time.Time
	End   time.Time
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid time range: start %s is not before end %s",
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// Filter constrains or pivots one record field.
// Empty Values marks the field as a pivot axis: it contributes nothing to the
// request and is expanded into columns downstream. Non-empty Values restrict
// the response to records matching any of them.
type Filter struct {
	Key    string
	Values []string
}

// Where builds a filter entry. Call with no values to mark a pivot axis.
func Where(key string, values ...string) Filter {
	return Filter{Key: key, Values: values}
}

// Filters is an ordered filter specification. Order is preserved in the
// serialized expression so identical specs always produce identical requests.
type Filters []Filter

// Keys returns all filter keys in order.
func (fs Filters) Keys() []string {
	keys := make([]string, 0, len(fs))
	for _, f := range fs {
		keys = append(keys, f.Key)
	}
	return keys
}

// ConstrainedKeys returns the keys of filters that carry values, i.e. those
// serialized into the request.
func (fs Filters) ConstrainedKeys() []string {
	var keys []string
	for _, f := range fs {
		if len(f.Values) > 0 {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// PivotKeys returns the keys of filters with no values.
func (fs Filters) PivotKeys() []string {
	var keys []string
	for _, f := range fs {
		if len(f.Values) == 0 {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// Expression serializes the constrained filters into the API's filter
// parameter format, e.g. {"PriceArea":["DK1","DK2"]}. The second return
// value is false when no filter carries values.
func (fs Filters) Expression() (string, bool) {
	var parts []string
	for _, f := range fs {
		if len(f.Values) == 0 {
			continue
		}
		vals := make([]string, 0, len(f.Values))
		for _, v := range f.Values {
			vals = append(vals, quoteJSON(v))
		}
		parts = append(parts, fmt.Sprintf("%s:[%s]", quoteJSON(f.Key), strings.Join(vals, ",")))
	}
	if len(parts) == 0 {
		return "", false
	}
	return "{" + strings.Join(parts, ",") + "}", true
}

// quoteJSON renders s as a JSON string literal.
func quoteJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// Build translates a time range and filter spec into the wire-level parameter
// set. It fails before any network activity when the range is invalid or the
// reference zone cannot be loaded.
func Build(tr TimeRange, filters Filters) (url.Values, error) {
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	zone, err := apiZone()
	if err != nil {
		return nil, fmt.Errorf("loading %s zone: %w", apiZoneName, err)
	}

	params := url.Values{}
	params.Set("offset", "0")
	params.Set("start", tr.Start.In(zone).Format(timeLayout))
	params.Set("end", tr.End.In(zone).Format(timeLayout))
	if expr, ok := filters.Expression(); ok {
		params.Set("filter", expr)
	}
	return params, nil
}
