package eastmoney

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/panorama/internal/models"
)

// columnAliases renames source-specific column labels, in the local
// language or lowercase, into the canonical bar schema
var columnAliases = map[string]string{
	"日期":     "date",
	"date":   "date",
	"day":    "date",
	"开盘":     "open",
	"open":   "open",
	"收盘":     "close",
	"close":  "close",
	"最高":     "high",
	"high":   "high",
	"最低":     "low",
	"low":    "low",
	"成交量":    "volume",
	"volume": "volume",
}

// klineFieldOrder is the requested record layout of the kline endpoint:
// date, open, close, high, low, volume
var klineFieldOrder = []string{"f51", "f52", "f53", "f54", "f55", "f56"}

// klineColumns maps the kline field codes onto canonical column names
var klineColumns = map[string]string{
	"f51": "date",
	"f52": "open",
	"f53": "close",
	"f54": "high",
	"f55": "low",
	"f56": "volume",
}

var requiredColumns = []string{"date", "open", "close", "high", "low"}

// normalizeLabeledRows converts label-keyed rows into the canonical series.
// Rows missing a required column after renaming fail the whole series.
func normalizeLabeledRows(rows []map[string]string) (models.Series, error) {
	series := make(models.Series, 0, len(rows))
	for _, row := range rows {
		canonical := make(map[string]string, len(row))
		for label, value := range row {
			if name, ok := columnAliases[strings.ToLower(strings.TrimSpace(label))]; ok {
				canonical[name] = value
			}
		}

		bar, err := buildBar(canonical)
		if err != nil {
			return nil, err
		}
		series = append(series, bar)
	}

	sortByDate(series)
	return series, nil
}

// normalizeKlines converts comma-joined kline records into the canonical
// series using the requested field layout
func normalizeKlines(klines []string) (models.Series, error) {
	series := make(models.Series, 0, len(klines))
	for _, line := range klines {
		fields := strings.Split(line, ",")
		if len(fields) < len(klineFieldOrder) {
			return nil, fmt.Errorf("malformed kline record: %q", line)
		}

		canonical := make(map[string]string, len(klineFieldOrder))
		for i, code := range klineFieldOrder {
			canonical[klineColumns[code]] = fields[i]
		}

		bar, err := buildBar(canonical)
		if err != nil {
			return nil, err
		}
		series = append(series, bar)
	}

	sortByDate(series)
	return series, nil
}

// buildBar parses a canonical column map into a bar, failing on any
// missing required column
func buildBar(canonical map[string]string) (models.Bar, error) {
	for _, col := range requiredColumns {
		if _, ok := canonical[col]; !ok {
			return models.Bar{}, fmt.Errorf("missing required column %q after rename", col)
		}
	}

	date, err := time.Parse("2006-01-02", canonical["date"])
	if err != nil {
		return models.Bar{}, fmt.Errorf("failed to parse date %q: %w", canonical["date"], err)
	}

	bar := models.Bar{Date: date}
	for col, target := range map[string]*float64{
		"open":  &bar.Open,
		"close": &bar.Close,
		"high":  &bar.High,
		"low":   &bar.Low,
	} {
		v, err := strconv.ParseFloat(strings.TrimSpace(canonical[col]), 64)
		if err != nil {
			return models.Bar{}, fmt.Errorf("failed to parse %s %q: %w", col, canonical[col], err)
		}
		*target = v
	}

	// Volume is optional; some index feeds omit it
	if raw, ok := canonical["volume"]; ok && raw != "" {
		if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			bar.Volume = int64(v)
		}
	}

	return bar, nil
}

func sortByDate(series models.Series) {
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
}
