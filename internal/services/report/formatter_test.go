package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/panorama/internal/models"
)

func barSeries(closes ...float64) models.Series {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	series := make(models.Series, len(closes))
	for i, c := range closes {
		series[i] = models.Bar{
			Date: start.AddDate(0, 0, i),
			Open: c, High: c + 1, Low: c - 1, Close: c,
			Volume: 1000,
		}
	}
	return series
}

func bullishBundle() *models.SignalBundle {
	return &models.SignalBundle{
		Trend:      models.TrendBullish,
		Momentum:   models.MomentumGoldenCross,
		Volume:     models.VolumeNormal,
		Oscillator: models.Oscillator{State: models.OscillatorOverbought, J: 112},
		Pivot:      models.Pivot{P: 105, S1: 104, R1: 106},
	}
}

func TestFormatLineUnavailable(t *testing.T) {
	inst := models.Instrument{Name: "Nikkei 225", Code: "^N225", Class: models.ClassGlobal}

	assert.Equal(t, "Nikkei 225: data unavailable", FormatLine(inst, nil, nil))
	// a single session cannot price a change either
	assert.Equal(t, "Nikkei 225: data unavailable", FormatLine(inst, barSeries(100), nil))
}

func TestFormatLineInsufficientHistory(t *testing.T) {
	inst := models.Instrument{Name: "Copper", Code: "HG=F", Class: models.ClassGlobal}

	line := FormatLine(inst, barSeries(100, 105), nil)
	assert.Equal(t, "Copper: 105.00 (+5.00%) [insufficient history]", line)
}

func TestFormatLineFullBundle(t *testing.T) {
	inst := models.Instrument{Name: "Gold", Code: "GC=F", Class: models.ClassGlobal}

	line := FormatLine(inst, barSeries(100, 102), bullishBundle())
	assert.Equal(t, "Gold: 102.00 (+2.00%) [bullish|golden-cross|overbought] S1:104.00 R1:106.00", line)
}

func TestFormatLineVolumeAndOscillatorMarkers(t *testing.T) {
	inst := models.Instrument{Name: "Semi ETF", Code: "512480", Class: models.ClassDomesticETF}
	series := barSeries(100, 98)

	bundle := bullishBundle()
	bundle.Trend = models.TrendBearish
	bundle.Momentum = models.MomentumDeadCross
	bundle.Volume = models.VolumeHigh
	bundle.Oscillator = models.Oscillator{State: models.OscillatorNeutral, J: 42}

	line := FormatLine(inst, series, bundle)
	assert.Contains(t, line, "[bearish|dead-cross|vol-surge|J:42]")

	bundle.Volume = models.VolumeLow
	bundle.Oscillator = models.Oscillator{State: models.OscillatorOversold, J: -15}
	line = FormatLine(inst, series, bundle)
	assert.Contains(t, line, "[bearish|dead-cross|vol-dry|oversold]")
}

func TestAssembleDigestPreservesRegistryOrder(t *testing.T) {
	instruments := []models.Instrument{
		{Name: "S&P 500", Code: "^GSPC", Class: models.ClassGlobal},
		{Name: "Gold", Code: "GC=F", Class: models.ClassGlobal},
		{Name: "Zijin Mining", Code: "601899", Class: models.ClassDomesticEquity},
	}
	fetched := map[string]models.Series{
		"GC=F":   barSeries(100, 102),
		"^GSPC":  barSeries(5000, 5050),
		"601899": nil,
	}
	bundles := map[string]*models.SignalBundle{
		"GC=F": bullishBundle(),
	}

	digest := AssembleDigest(instruments, fetched, bundles)

	assert.Len(t, digest.Lines, 3)
	assert.Contains(t, digest.Lines[0], "S&P 500: 5050.00 (+1.00%)")
	assert.Contains(t, digest.Lines[0], "insufficient history")
	assert.Contains(t, digest.Lines[1], "Gold: 102.00")
	assert.Equal(t, "Zijin Mining: data unavailable", digest.Lines[2])

	for _, line := range digest.Lines {
		assert.Contains(t, digest.Rendered, line)
	}
}

func TestFormatNews(t *testing.T) {
	assert.Equal(t, []string{"no notable news"}, FormatNews(nil))

	items := []models.NewsItem{
		{Title: "Fed holds rates", Publisher: "Reuters"},
		{Title: "Gold hits record"},
	}
	lines := FormatNews(items)
	assert.Equal(t, []string{
		"- Fed holds rates (Reuters)",
		"- Gold hits record",
	}, lines)
}
