// Package main provides the CLI entry point for energinet-go.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/edu230991/energinet-go/pkg/energinet"
	"github.com/edu230991/energinet-go/pkg/energinet/models"
	"github.com/edu230991/energinet-go/pkg/energinet/output"
	"github.com/edu230991/energinet-go/pkg/energinet/query"
)

var (
	startStr     string
	endStr       string
	tzName       string
	outputPath   string
	format       string
	pretty       bool
	cachePath    string
	cacheBackend string

	area     string
	currency string
	forecast bool

	provisional bool
	fallback    bool

	columns    []string
	filterArgs []string
	pivotKeys  []string
	pivoted    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "energinet",
		Short: "Fetch time-series data from the Energi Data Service API",
		Long: `energinet fetches energy-market time series (spot prices, production,
balancing, forecasts, CO2 emissions) from api.energidataservice.dk and
renders them as JSON, CSV, or XLSX.`,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&startStr, "start", "", "Range start, RFC3339 or YYYY-MM-DD (required)")
	pf.StringVar(&endStr, "end", "", "Range end, RFC3339 or YYYY-MM-DD (required)")
	pf.StringVar(&tzName, "tz", "CET", "Zone for date-only bounds and the returned index")
	pf.StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	pf.StringVar(&format, "format", "json", "Output format: json, csv, xlsx")
	pf.BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	pf.StringVar(&cachePath, "cache", "", "Response cache path (empty disables caching)")
	pf.StringVar(&cacheBackend, "cache-backend", "filesystem", "Cache backend: filesystem, sqlite")

	elspotCmd := &cobra.Command{
		Use:   "elspot",
		Short: "Day-ahead spot prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *energinet.Client, start, end time.Time) (models.Result, error) {
				return c.ElspotPrices(start, end, area, currency)
			})
		},
	}
	elspotCmd.Flags().StringVar(&area, "area", "", "Price area (e.g. DK1); empty fetches all")
	elspotCmd.Flags().StringVar(&currency, "currency", "DKK", "Price currency: DKK or EUR")

	co2Cmd := &cobra.Command{
		Use:   "co2",
		Short: "CO2 emissions, realised or forecast",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *energinet.Client, start, end time.Time) (models.Result, error) {
				return c.CO2Emission(start, end, area, forecast)
			})
		},
	}
	co2Cmd.Flags().StringVar(&area, "area", "", "Price area: DK1 or DK2; empty fetches both")
	co2Cmd.Flags().BoolVar(&forecast, "forecast", false, "Fetch forecast instead of realised emissions")

	prodconsCmd := &cobra.Command{
		Use:   "prodcons",
		Short: "Production and consumption data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *energinet.Client, start, end time.Time) (models.Result, error) {
				if fallback {
					return c.ProdConsWithFallback(start, end, area, columns...)
				}
				return c.ProdCons(start, end, area, !provisional, columns...)
			})
		},
	}
	prodconsCmd.Flags().StringVar(&area, "area", "", "Price area: DK1 or DK2; empty fetches both")
	prodconsCmd.Flags().BoolVar(&provisional, "provisional", false, "Use provisional instead of validated data")
	prodconsCmd.Flags().BoolVar(&fallback, "fallback", false, "Fall back to provisional data when validated data is unavailable")
	prodconsCmd.Flags().StringSliceVar(&columns, "columns", nil, "Columns to return (default: all)")

	fetchCmd := &cobra.Command{
		Use:   "fetch [dataset]",
		Short: "Fetch any dataset by name",
		Long: `fetch runs the generic pipeline against any dataset of the API, e.g.

  energinet fetch Elspotprices --start 2023-03-27 --end 2023-03-29 \
      --filter PriceArea=DK1,DK2 --columns SpotPriceDKK`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := parseFilters(filterArgs, pivotKeys)
			if err != nil {
				return err
			}
			return withClient(func(c *energinet.Client, start, end time.Time) (models.Result, error) {
				tr := query.TimeRange{Start: start, End: end}
				sel := models.Select(columns...)
				if pivoted {
					return c.FetchPivoted(args[0], tr, sel, filters)
				}
				return c.FetchSelected(args[0], tr, sel, filters)
			})
		},
	}
	fetchCmd.Flags().StringSliceVar(&filterArgs, "filter", nil, "Filter as Key=V1,V2 (repeatable)")
	fetchCmd.Flags().StringSliceVar(&pivotKeys, "pivot", nil, "Pivot axis key (repeatable, implies --pivoted)")
	fetchCmd.Flags().StringSliceVar(&columns, "columns", nil, "Columns to return (default: all)")
	fetchCmd.Flags().BoolVar(&pivoted, "pivoted", false, "Run the pivoting pipeline")

	rootCmd.AddCommand(elspotCmd, co2Cmd, prodconsCmd, fetchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withClient parses the shared flags, builds a client, runs the request, and
// renders the result.
func withClient(run func(c *energinet.Client, start, end time.Time) (models.Result, error)) error {
	start, end, err := parseRange()
	if err != nil {
		return err
	}

	opts := energinet.DefaultOptions()
	opts.CachePath = cachePath
	opts.CacheBackend = energinet.CacheBackend(cacheBackend)
	c, err := energinet.NewClient(opts)
	if err != nil {
		return err
	}
	defer c.Close()

	res, err := run(c, start, end)
	if err != nil {
		return err
	}
	return render(res)
}

// parseRange parses the --start/--end flags in the --tz zone.
func parseRange() (start, end time.Time, err error) {
	if startStr == "" || endStr == "" {
		return start, end, fmt.Errorf("--start and --end are required")
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return start, end, fmt.Errorf("invalid zone %q: %w", tzName, err)
	}
	if start, err = parseTime(startStr, loc); err != nil {
		return start, end, err
	}
	if end, err = parseTime(endStr, loc); err != nil {
		return start, end, err
	}
	return start, end, nil
}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	layouts := []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse time %q", s)
}

// parseFilters turns --filter Key=V1,V2 and --pivot Key flags into a
// filter specification.
func parseFilters(filterArgs, pivotKeys []string) (query.Filters, error) {
	var filters query.Filters
	for _, arg := range filterArgs {
		key, vals, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q (want Key=V1,V2)", arg)
		}
		filters = append(filters, query.Where(key, strings.Split(vals, ",")...))
	}
	for _, key := range pivotKeys {
		filters = append(filters, query.Where(key))
		pivoted = true
	}
	return filters, nil
}

// render writes the result in the requested format.
func render(res models.Result) error {
	switch format {
	case "json":
		data, err := output.ToJSON(res, pretty)
		if err != nil {
			return err
		}
		if outputPath != "" {
			return os.WriteFile(outputPath, data, 0644)
		}
		fmt.Println(string(data))
		return nil
	case "csv":
		w := os.Stdout
		if outputPath != "" {
			f, err := os.Create(outputPath)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return output.WriteCSV(res, w)
	case "xlsx":
		if outputPath == "" {
			return fmt.Errorf("--output is required for xlsx")
		}
		return output.WriteXLSX(res, outputPath)
	default:
		return fmt.Errorf("invalid format: %s (must be json, csv, or xlsx)", format)
	}
}
