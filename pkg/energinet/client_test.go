package energinet

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/edu230991/energinet-go/pkg/energinet/models"
	"github.com/edu230991/energinet-go/pkg/energinet/query"
	"github.com/edu230991/energinet-go/pkg/energinet/transport"
)

// stubGetter counts calls and serves canned responses per URL.
type stubGetter struct {
	calls  int
	urls   []string
	params []url.Values
	// respond serves the response; when nil, body/err are used for every
	// request.
	respond func(rawURL string, params url.Values) ([]byte, error)
	body    []byte
	err     error
}

func (g *stubGetter) Get(rawURL string, params url.Values) ([]byte, error) {
	g.calls++
	g.urls = append(g.urls, rawURL)
	g.params = append(g.params, params)
	if g.respond != nil {
		return g.respond(rawURL, params)
	}
	return g.body, g.err
}

func newTestClient(t *testing.T, g *stubGetter) *Client {
	t.Helper()
	c, err := NewClient(Options{Getter: g})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

// testRange covers the two fixture hours below: 2023-01-10 00:00 and 01:00
// CET.
func testRange() (time.Time, time.Time) {
	cet := time.FixedZone("CET", 3600)
	start := time.Date(2023, 1, 10, 0, 0, 0, 0, cet)
	return start, start.Add(time.Hour)
}

// elspotBody builds an Elspotprices response with the two fixture hours for
// each given area. DK1 prices are 100-based, DK2 prices 200-based.
func elspotBody(areas ...string) []byte {
	var records []string
	hours := []string{"2023-01-09T23:00:00", "2023-01-10T00:00:00"}
	for ai, area := range areas {
		for hi, hour := range hours {
			local := strings.Replace(hour, "T23", "T00", 1)
			if hi == 1 {
				local = strings.Replace(hour, "T00", "T01", 1)
			}
			records = append(records, fmt.Sprintf(
				`{"HourUTC": %q, "HourDK": %q, "PriceArea": %q, "SpotPriceDKK": %d, "SpotPriceEUR": %d}`,
				hour, local, area, (ai+1)*100+hi, (ai+1)*10+hi))
		}
	}
	return []byte(`{"records": [` + strings.Join(records, ",") + `]}`)
}

func TestElspotPricesAllAreas(t *testing.T) {
	g := &stubGetter{body: elspotBody("DK1", "DK2")}
	c := newTestClient(t, g)
	start, end := testRange()

	res, err := c.ElspotPrices(start, end, "", "DKK")
	if err != nil {
		t.Fatalf("ElspotPrices failed: %v", err)
	}

	tbl, ok := res.(*models.Table)
	if !ok {
		t.Fatalf("expected a table with multiple areas, got %T", res)
	}
	// Currency filter plus singleton collapse leaves one column per area,
	// with no lingering value-column level.
	if got := tbl.ColumnNames(); len(got) != 2 || got[0] != "DK1" || got[1] != "DK2" {
		t.Fatalf("columns = %v, expected [DK1 DK2]", got)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len = %d, expected 2", tbl.Len())
	}
	for i, row := range tbl.Rows {
		if row.Index[0].Location() != start.Location() {
			t.Errorf("row %d zone = %v, expected the caller zone", i, row.Index[0].Location())
		}
		if i > 0 && !tbl.Rows[i-1].Index[0].Before(row.Index[0]) {
			t.Errorf("index not strictly ascending at row %d", i)
		}
	}
	if got := tbl.Rows[0].Cells[0]; got != int64(100) {
		t.Errorf("DK1 first hour = %v, expected 100", got)
	}
	if got := tbl.Rows[1].Cells[1]; got != int64(201) {
		t.Errorf("DK2 second hour = %v, expected 201", got)
	}
	// Unconstrained PriceArea is a pivot axis, not a request filter.
	if _, ok := g.params[0]["filter"]; ok {
		t.Error("pivot axis must not produce a request filter")
	}
}

func TestElspotPricesSingleArea(t *testing.T) {
	g := &stubGetter{body: elspotBody("DK1")}
	c := newTestClient(t, g)
	start, end := testRange()

	res, err := c.ElspotPrices(start, end, "DK1", "DKK")
	if err != nil {
		t.Fatalf("ElspotPrices failed: %v", err)
	}

	s, ok := res.(*models.Series)
	if !ok {
		t.Fatalf("expected a series for a single area, got %T", res)
	}
	if s.Name != "SpotPriceDKK" {
		t.Errorf("series name = %q, expected %q", s.Name, "SpotPriceDKK")
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, expected 2", s.Len())
	}
	if s.Rows[0].Value != int64(100) || s.Rows[1].Value != int64(101) {
		t.Errorf("values = %v, %v, expected 100, 101", s.Rows[0].Value, s.Rows[1].Value)
	}
	if got := g.params[0].Get("filter"); got != `{"PriceArea":["DK1"]}` {
		t.Errorf("filter = %q, expected DK1 constraint", got)
	}
}

func TestInvalidRangeMakesNoCall(t *testing.T) {
	g := &stubGetter{}
	c := newTestClient(t, g)
	start, _ := testRange()

	_, err := c.ElspotPrices(start, start, "", "DKK")
	var rerr *RangeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RangeError, got %v", err)
	}
	if g.calls != 0 {
		t.Errorf("network calls = %d, expected 0", g.calls)
	}
}

func TestTransportErrorPropagates(t *testing.T) {
	g := &stubGetter{err: &transport.Error{URL: "stub", Status: 503, Body: "unavailable"}}
	c := newTestClient(t, g)
	start, end := testRange()

	_, err := c.FetchSelected("FcrDK1", query.TimeRange{Start: start, End: end}, models.SelectAll(), nil)
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if terr.Status != 503 {
		t.Errorf("status = %d, expected 503", terr.Status)
	}
}

func TestMalformedResponse(t *testing.T) {
	g := &stubGetter{body: []byte(`{"total": 12}`)}
	c := newTestClient(t, g)
	start, end := testRange()

	_, err := c.FetchSelected("FcrDK1", query.TimeRange{Start: start, End: end}, models.SelectAll(), nil)
	var merr *MalformedResponseError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
}

func TestTruncationIsExact(t *testing.T) {
	// Fixture hours 23:00 and 00:00 UTC plus edge rows outside the range.
	body := []byte(`{"records": [
		{"HourUTC": "2023-01-09T22:00:00", "HourDK": "2023-01-09T23:00:00", "Price": 1},
		{"HourUTC": "2023-01-09T23:00:00", "HourDK": "2023-01-10T00:00:00", "Price": 2},
		{"HourUTC": "2023-01-10T00:00:00", "HourDK": "2023-01-10T01:00:00", "Price": 3},
		{"HourUTC": "2023-01-10T01:00:00", "HourDK": "2023-01-10T02:00:00", "Price": 4}
	]}`)
	g := &stubGetter{body: body}
	c := newTestClient(t, g)
	start, end := testRange()

	res, err := c.FetchSelected("FcrDK1", query.TimeRange{Start: start, End: end}, models.SelectAll(), nil)
	if err != nil {
		t.Fatalf("FetchSelected failed: %v", err)
	}
	s, ok := res.(*models.Series)
	if !ok {
		t.Fatalf("expected a squeezed series, got %T", res)
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, expected 2 (rows outside the range dropped)", s.Len())
	}
	if !s.Rows[0].Index[0].Equal(start) {
		t.Errorf("first row = %v, expected %v (start inclusive)", s.Rows[0].Index[0], start)
	}
	if !s.Rows[1].Index[0].Equal(end) {
		t.Errorf("last row = %v, expected %v (end inclusive)", s.Rows[1].Index[0], end)
	}
}

func TestFilterThenSelectConsistency(t *testing.T) {
	g := &stubGetter{body: elspotBody("DK1")}
	c := newTestClient(t, g)
	start, end := testRange()

	res, err := c.FetchSelected("Elspotprices",
		query.TimeRange{Start: start, End: end},
		models.SelectAll(),
		query.Filters{query.Where("PriceArea", "DK1")})
	if err != nil {
		t.Fatalf("FetchSelected failed: %v", err)
	}
	tbl, ok := res.(*models.Table)
	if !ok {
		t.Fatalf("expected a table, got %T", res)
	}
	for _, name := range tbl.ColumnNames() {
		if name == "PriceArea" {
			t.Error("filtered-on discriminator column must not reappear in the output")
		}
	}
}

func TestIdempotence(t *testing.T) {
	g := &stubGetter{body: elspotBody("DK1", "DK2")}
	c := newTestClient(t, g)
	start, end := testRange()

	first, err := c.ElspotPrices(start, end, "", "DKK")
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	second, err := c.ElspotPrices(start, end, "", "DKK")
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical calls must yield identical output")
	}
	if g.calls != 2 {
		t.Errorf("network calls = %d, expected 2 (cache disabled)", g.calls)
	}
}

func TestSelectSingleColumnSqueezes(t *testing.T) {
	g := &stubGetter{body: elspotBody("DK1")}
	c := newTestClient(t, g)
	start, end := testRange()

	res, err := c.FetchSelected("Elspotprices",
		query.TimeRange{Start: start, End: end},
		models.Select("SpotPriceEUR"),
		query.Filters{query.Where("PriceArea", "DK1")})
	if err != nil {
		t.Fatalf("FetchSelected failed: %v", err)
	}
	s, ok := res.(*models.Series)
	if !ok {
		t.Fatalf("expected a series, got %T", res)
	}
	if s.Name != "SpotPriceEUR" {
		t.Errorf("series name = %q, expected %q", s.Name, "SpotPriceEUR")
	}
}

func TestUnknownColumn(t *testing.T) {
	g := &stubGetter{body: elspotBody("DK1")}
	c := newTestClient(t, g)
	start, end := testRange()

	_, err := c.FetchSelected("Elspotprices",
		query.TimeRange{Start: start, End: end},
		models.Select("NotAColumn"),
		query.Filters{query.Where("PriceArea", "DK1")})
	var uerr *UnknownColumnError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UnknownColumnError, got %v", err)
	}
}

func TestAmbiguousIndex(t *testing.T) {
	body := []byte(`{"records": [
		{"HourUTC": "2023-01-10T00:00:00", "Price": 1},
		{"HourUTC": "2023-01-10T00:00:00", "Price": 2}
	]}`)
	g := &stubGetter{body: body}
	c := newTestClient(t, g)
	start, end := testRange()

	_, err := c.FetchSelected("FcrDK1", query.TimeRange{Start: start, End: end}, models.SelectAll(), nil)
	var aerr *AmbiguousIndexError
	if !errors.As(err, &aerr) {
		t.Fatalf("expected AmbiguousIndexError, got %v", err)
	}
}
