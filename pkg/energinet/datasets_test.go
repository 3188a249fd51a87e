package energinet

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/edu230991/energinet-go/pkg/energinet/models"
	"github.com/edu230991/energinet-go/pkg/energinet/transport"
)

func prodConsBody() []byte {
	return []byte(`{"records": [
		{"HourUTC": "2023-01-09T23:00:00", "HourDK": "2023-01-10T00:00:00", "PriceArea": "DK1", "GrossConsumptionMWh": 2100.5},
		{"HourUTC": "2023-01-10T00:00:00", "HourDK": "2023-01-10T01:00:00", "PriceArea": "DK1", "GrossConsumptionMWh": 2050.0}
	]}`)
}

func TestProdConsDatasetSelection(t *testing.T) {
	tests := []struct {
		validated bool
		dataset   string
	}{
		{true, "ProductionConsumptionSettlement"},
		{false, "ElectricityBalanceNonv"},
	}
	start, end := testRange()
	for _, tt := range tests {
		g := &stubGetter{body: prodConsBody()}
		c := newTestClient(t, g)
		if _, err := c.ProdCons(start, end, "DK1", tt.validated); err != nil {
			t.Fatalf("ProdCons failed: %v", err)
		}
		if !strings.HasSuffix(g.urls[0], "/"+tt.dataset) {
			t.Errorf("validated=%v requested %s, expected dataset %s", tt.validated, g.urls[0], tt.dataset)
		}
	}
}

func TestProdConsFallbackOnTransportError(t *testing.T) {
	g := &stubGetter{respond: func(rawURL string, params url.Values) ([]byte, error) {
		if strings.HasSuffix(rawURL, "/ProductionConsumptionSettlement") {
			return nil, &transport.Error{URL: rawURL, Status: 500, Body: "boom"}
		}
		return prodConsBody(), nil
	}}
	c := newTestClient(t, g)
	start, end := testRange()

	res, err := c.ProdConsWithFallback(start, end, "DK1")
	if err != nil {
		t.Fatalf("expected fallback to succeed, got %v", err)
	}
	if res.Len() != 2 {
		t.Errorf("Len = %d, expected 2", res.Len())
	}
	if g.calls != 2 {
		t.Errorf("calls = %d, expected 2 (validated then provisional)", g.calls)
	}
	if !strings.HasSuffix(g.urls[1], "/ElectricityBalanceNonv") {
		t.Errorf("fallback requested %s, expected the provisional dataset", g.urls[1])
	}
}

func TestProdConsFallbackOnEmptyResult(t *testing.T) {
	g := &stubGetter{respond: func(rawURL string, params url.Values) ([]byte, error) {
		if strings.HasSuffix(rawURL, "/ProductionConsumptionSettlement") {
			return []byte(`{"records": []}`), nil
		}
		return prodConsBody(), nil
	}}
	c := newTestClient(t, g)
	start, end := testRange()

	res, err := c.ProdConsWithFallback(start, end, "DK1")
	if err != nil {
		t.Fatalf("expected fallback to succeed, got %v", err)
	}
	if res.Len() != 2 {
		t.Errorf("Len = %d, expected 2 rows from the provisional dataset", res.Len())
	}
}

func TestProdConsNoFallbackOnParseError(t *testing.T) {
	// A malformed validated response signals contract drift, not missing
	// data; downgrading would mask it.
	g := &stubGetter{body: []byte(`garbage`)}
	c := newTestClient(t, g)
	start, end := testRange()

	_, err := c.ProdConsWithFallback(start, end, "DK1")
	var merr *MalformedResponseError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
	if g.calls != 1 {
		t.Errorf("calls = %d, expected 1 (no fallback on parse errors)", g.calls)
	}
}

func TestProductionPerMunicipality(t *testing.T) {
	body := []byte(`{"records": [
		{"HourUTC": "2023-01-09T23:00:00", "HourDK": "2023-01-10T00:00:00", "MunicipalityNo": 101, "SolarMWh": 1.5, "OnshoreWindMWh": 30.0},
		{"HourUTC": "2023-01-09T23:00:00", "HourDK": "2023-01-10T00:00:00", "MunicipalityNo": 102, "SolarMWh": 0.5, "OnshoreWindMWh": 12.0}
	]}`)
	g := &stubGetter{body: body}
	c := newTestClient(t, g)
	start, end := testRange()

	res, err := c.ProductionPerMunicipality(start, end, 0, "SolarMWh")
	if err != nil {
		t.Fatalf("ProductionPerMunicipality failed: %v", err)
	}
	tbl, ok := res.(*models.Table)
	if !ok {
		t.Fatalf("expected a table, got %T", res)
	}
	// Selecting one name on a pivoted table matches the value-column level
	// and strips it, leaving one column per municipality.
	got := tbl.ColumnNames()
	if len(got) != 2 || got[0] != "101" || got[1] != "102" {
		t.Errorf("columns = %v, expected [101 102]", got)
	}
}

func TestProductionPerMunicipalitySingle(t *testing.T) {
	body := []byte(`{"records": [
		{"HourUTC": "2023-01-09T23:00:00", "HourDK": "2023-01-10T00:00:00", "MunicipalityNo": 101, "SolarMWh": 1.5, "OnshoreWindMWh": 30.0}
	]}`)
	g := &stubGetter{body: body}
	c := newTestClient(t, g)
	start, end := testRange()

	res, err := c.ProductionPerMunicipality(start, end, 101, "SolarMWh")
	if err != nil {
		t.Fatalf("ProductionPerMunicipality failed: %v", err)
	}
	if got := g.params[0].Get("filter"); got != `{"MunicipalityNo":["101"]}` {
		t.Errorf("filter = %q, expected the municipality constraint", got)
	}
	s, ok := res.(*models.Series)
	if !ok {
		t.Fatalf("expected a squeezed series, got %T", res)
	}
	if s.Name != "SolarMWh" {
		t.Errorf("series name = %q, expected %q", s.Name, "SolarMWh")
	}
}

func TestCO2EmissionForecastToggle(t *testing.T) {
	body := []byte(`{"records": [
		{"Minutes5UTC": "2023-01-09T23:00:00", "Minutes5DK": "2023-01-10T00:00:00", "PriceArea": "DK1", "CO2Emission": 58.0}
	]}`)
	tests := []struct {
		forecast bool
		dataset  string
	}{
		{false, "CO2Emis"},
		{true, "CO2EmisProg"},
	}
	start, end := testRange()
	for _, tt := range tests {
		g := &stubGetter{body: body}
		c := newTestClient(t, g)
		if _, err := c.CO2Emission(start, end, "DK1", tt.forecast); err != nil {
			t.Fatalf("CO2Emission failed: %v", err)
		}
		if !strings.HasSuffix(g.urls[0], "/"+tt.dataset) {
			t.Errorf("forecast=%v requested %s, expected dataset %s", tt.forecast, g.urls[0], tt.dataset)
		}
	}
}

func TestResForecastResolution(t *testing.T) {
	body := []byte(`{"records": [
		{"HourUTC": "2023-01-09T23:00:00", "HourDK": "2023-01-10T00:00:00", "PriceArea": "DK1", "ForecastType": "Solar", "ForecastCurrent": 12.0}
	]}`)
	tests := []struct {
		resolution string
		dataset    string
	}{
		{"1H", "Forecasts_Hour"},
		{"", "Forecasts_Hour"},
		{"5min", "Forecasts_5Min"},
	}
	start, end := testRange()
	for _, tt := range tests {
		g := &stubGetter{body: body}
		c := newTestClient(t, g)
		if _, err := c.ResForecast(start, end, "DK1", "Solar", tt.resolution); err != nil {
			t.Fatalf("ResForecast failed: %v", err)
		}
		if !strings.HasSuffix(g.urls[0], "/"+tt.dataset) {
			t.Errorf("resolution=%q requested %s, expected dataset %s", tt.resolution, g.urls[0], tt.dataset)
		}
	}
}

func TestConsumptionPerIndustryCodePrefersDK36(t *testing.T) {
	body := []byte(`{"records": [
		{"HourUTC": "2023-01-09T23:00:00", "HourDK": "2023-01-10T00:00:00", "DK36Code": "05", "DK19Code": "03", "ConsumptionkWh": 4100.0}
	]}`)
	g := &stubGetter{body: body}
	c := newTestClient(t, g)
	start, end := testRange()

	if _, err := c.ConsumptionPerIndustryCode(start, end, "05", "03"); err != nil {
		t.Fatalf("ConsumptionPerIndustryCode failed: %v", err)
	}
	if got := g.params[0].Get("filter"); got != `{"DK36Code":["05"]}` {
		t.Errorf("filter = %q, expected only the DK36 constraint", got)
	}
}
