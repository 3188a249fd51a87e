package energinet

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/edu230991/energinet-go/pkg/energinet/models"
	"github.com/edu230991/energinet-go/pkg/energinet/query"
)

// The dataset methods below are thin configuration over FetchSelected and
// FetchPivoted: each names its URL suffix and filter/pivot keys. Dataset
// pages live under https://www.energidataservice.dk/tso-electricity/.
//
// Every method takes the range as two zoned timestamps; the zone of start
// determines the zone of the returned index. A columns argument left empty
// returns all columns. Results with exactly one value column come back as a
// *models.Series, everything else as a *models.Table.

// areaFilter constrains PriceArea to the given area, or marks it as a pivot
// axis when area is empty.
func areaFilter(area string) query.Filter {
	if area == "" {
		return query.Where("PriceArea")
	}
	return query.Where("PriceArea", area)
}

// ElspotPrices fetches day-ahead power spot prices for Denmark and its
// neighbors (dataset Elspotprices).
//
// priceArea is one of DE, DK1, DK2, NO2, SE3, SE4; empty fetches all areas,
// one column per area. currency is DKK or EUR, defaulting to DKK.
func (c *Client) ElspotPrices(start, end time.Time, priceArea, currency string) (models.Result, error) {
	if currency == "" {
		currency = "DKK"
	}
	tr := query.TimeRange{Start: start, End: end}
	filters := query.Filters{areaFilter(priceArea)}

	t, err := c.fetchTable("Elspotprices", tr, filters)
	if err != nil {
		return nil, err
	}
	if err := t.Pivot(filters.PivotKeys()); err != nil {
		return nil, err
	}
	t.FilterLike("SpotPrice" + currency)
	t.CollapseSingletonLevels()
	return t.Squeeze(), nil
}

// ProductionPerMunicipality fetches hourly production per Danish
// municipality (dataset ProductionMunicipalityHour).
//
// municipalityNo selects a single municipality; 0 fetches all of them,
// pivoted into one column set per municipality.
func (c *Client) ProductionPerMunicipality(start, end time.Time, municipalityNo int, columns ...string) (models.Result, error) {
	f := query.Where("MunicipalityNo")
	if municipalityNo != 0 {
		f = query.Where("MunicipalityNo", strconv.Itoa(municipalityNo))
	}
	return c.FetchPivoted("ProductionMunicipalityHour",
		query.TimeRange{Start: start, End: end},
		models.Select(columns...),
		query.Filters{f})
}

// ProdCons fetches production and consumption data, either validated
// settlement data (dataset ProductionConsumptionSettlement) or provisional
// data (dataset ElectricityBalanceNonv). The two datasets do not expose the
// same columns.
//
// priceArea is DK1 or DK2; empty fetches both.
func (c *Client) ProdCons(start, end time.Time, priceArea string, validated bool, columns ...string) (models.Result, error) {
	dataset := "ElectricityBalanceNonv"
	if validated {
		dataset = "ProductionConsumptionSettlement"
	}
	return c.FetchPivoted(dataset,
		query.TimeRange{Start: start, End: end},
		models.Select(columns...),
		query.Filters{areaFilter(priceArea)})
}

// ProdConsWithFallback fetches validated production and consumption data,
// falling back to provisional data when the validated dataset is unreachable
// or has no rows for the range (settlement data lags publication). The
// fallback is deliberately narrow: parse errors and bad arguments still
// fail, only transport failures and empty results downgrade.
func (c *Client) ProdConsWithFallback(start, end time.Time, priceArea string, columns ...string) (models.Result, error) {
	res, err := c.ProdCons(start, end, priceArea, true, columns...)
	if err != nil {
		var terr *TransportError
		if !errors.As(err, &terr) {
			return nil, err
		}
		log.Printf("energinet: validated prodcons unavailable (%v), falling back to provisional data", err)
	} else if res.Len() > 0 {
		return res, nil
	} else {
		log.Printf("energinet: validated prodcons empty for range, falling back to provisional data")
	}
	return c.ProdCons(start, end, priceArea, false, columns...)
}

// FcrDK1 fetches DK1 frequency containment reserve data (dataset FcrDK1,
// 2021 onward).
func (c *Client) FcrDK1(start, end time.Time, columns ...string) (models.Result, error) {
	return c.FetchSelected("FcrDK1",
		query.TimeRange{Start: start, End: end},
		models.Select(columns...), nil)
}

// FcrDK1Old fetches DK1 FCR data for dates before 2021 from the outdated
// dataset.
func (c *Client) FcrDK1Old(start, end time.Time, columns ...string) (models.Result, error) {
	return c.FetchSelected("RegulatingBalancePowerdata",
		query.TimeRange{Start: start, End: end},
		models.Select(columns...), nil)
}

// Balancing fetches balancing market data (dataset
// RegulatingBalancePowerdata).
//
// priceArea is DK1 or DK2; empty fetches both.
func (c *Client) Balancing(start, end time.Time, priceArea string, columns ...string) (models.Result, error) {
	return c.FetchPivoted("RegulatingBalancePowerdata",
		query.TimeRange{Start: start, End: end},
		models.Select(columns...),
		query.Filters{areaFilter(priceArea)})
}

// CO2Emission fetches realised CO2 emissions (dataset CO2Emis) or the
// forecast (dataset CO2EmisProg).
//
// priceArea is DK1 or DK2; empty fetches both.
func (c *Client) CO2Emission(start, end time.Time, priceArea string, forecast bool) (models.Result, error) {
	dataset := "CO2Emis"
	if forecast {
		dataset = "CO2EmisProg"
	}
	return c.FetchPivoted(dataset,
		query.TimeRange{Start: start, End: end},
		models.SelectAll(),
		query.Filters{areaFilter(priceArea)})
}

// ConsumptionPerIndustryCode fetches electricity consumption per DK36/DK19
// industry code from the CVR register (dataset ConsumptionDK3619codehour).
//
// At most one of dk36Code and dk19Code should be set; when both are, DK36
// wins and a warning is logged.
func (c *Client) ConsumptionPerIndustryCode(start, end time.Time, dk36Code, dk19Code string) (models.Result, error) {
	if dk36Code != "" && dk19Code != "" {
		log.Printf("energinet: only one of dk36Code and dk19Code can be set, filtering on dk36Code")
		dk19Code = ""
	}
	filters := query.Filters{
		query.Where("DK36Code", splitEmpty(dk36Code)...),
		query.Where("DK19Code", splitEmpty(dk19Code)...),
	}
	return c.FetchSelected("ConsumptionDK3619codehour",
		query.TimeRange{Start: start, End: end},
		models.SelectAll(), filters)
}

// splitEmpty returns nil for an empty value so the filter becomes
// unconstrained.
func splitEmpty(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

// CountertradingVolume fetches countertrading volumes on the DK-DE border
// (dataset CountertradeIntraday).
func (c *Client) CountertradingVolume(start, end time.Time) (models.Result, error) {
	return c.FetchSelected("CountertradeIntraday",
		query.TimeRange{Start: start, End: end},
		models.SelectAll(), nil)
}

// RealtimeProdEx fetches real-time production and exchange data at 5 minute
// granularity (dataset ElectricityProdex5MinRealtime).
//
// priceArea is DK1 or DK2; empty fetches both.
func (c *Client) RealtimeProdEx(start, end time.Time, priceArea string, columns ...string) (models.Result, error) {
	return c.FetchPivoted("ElectricityProdex5MinRealtime",
		query.TimeRange{Start: start, End: end},
		models.Select(columns...),
		query.Filters{areaFilter(priceArea)})
}

// ExchangeFlows fetches scheduled cross-border exchange flows (dataset
// ForeignExchange).
//
// priceArea is DK1 or DK2; empty fetches both.
func (c *Client) ExchangeFlows(start, end time.Time, priceArea string, columns ...string) (models.Result, error) {
	return c.FetchPivoted("ForeignExchange",
		query.TimeRange{Start: start, End: end},
		models.Select(columns...),
		query.Filters{areaFilter(priceArea)})
}

// ResForecast fetches renewable production forecasts at hourly (dataset
// Forecasts_Hour) or 5 minute (dataset Forecasts_5Min) resolution.
//
// priceArea is DK1 or DK2 and tech a forecast technology such as "Solar" or
// "Offshore Wind"; either left empty becomes a pivot axis. resolution is
// "1H" (default) or "5min".
func (c *Client) ResForecast(start, end time.Time, priceArea, tech, resolution string, columns ...string) (models.Result, error) {
	dataset := "Forecasts_Hour"
	if resolution == "5min" {
		dataset = "Forecasts_5Min"
	}
	filters := query.Filters{
		areaFilter(priceArea),
		query.Where("ForecastType", splitEmpty(tech)...),
	}
	return c.FetchPivoted(dataset,
		query.TimeRange{Start: start, End: end},
		models.Select(columns...), filters)
}

// PowerSystemNow fetches live power system data (dataset
// PowerSystemRightNow).
func (c *Client) PowerSystemNow(start, end time.Time, columns ...string) (models.Result, error) {
	return c.FetchSelected("PowerSystemRightNow",
		query.TimeRange{Start: start, End: end},
		models.Select(columns...), nil)
}
