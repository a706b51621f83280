// Package report assembles the daily digest and drives the analysis pipeline
package report

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/panorama/internal/models"
)

const (
	unavailableSuffix  = "data unavailable"
	insufficientMarker = "insufficient history"
	noNewsLine         = "no notable news"
)

// FormatLine renders one instrument's digest line. A missing series (or one
// too short to price) renders an explicit unavailable line; a missing
// bundle renders the insufficient-history marker. Pivot support and
// resistance levels trail the signal brackets.
func FormatLine(inst models.Instrument, series models.Series, bundle *models.SignalBundle) string {
	if len(series) == 0 {
		return fmt.Sprintf("%s: %s", inst.Name, unavailableSuffix)
	}

	pct, ok := series.ChangePct()
	if !ok {
		return fmt.Sprintf("%s: %s", inst.Name, unavailableSuffix)
	}

	close := series.Last().Close
	if bundle == nil {
		return fmt.Sprintf("%s: %.2f (%+.2f%%) [%s]", inst.Name, close, pct, insufficientMarker)
	}

	markers := []string{trendMarker(bundle.Trend), momentumMarker(bundle.Momentum)}
	if vol := volumeMarker(bundle.Volume); vol != "" {
		markers = append(markers, vol)
	}
	markers = append(markers, oscillatorMarker(bundle.Oscillator))

	return fmt.Sprintf("%s: %.2f (%+.2f%%) [%s] S1:%.2f R1:%.2f",
		inst.Name, close, pct, strings.Join(markers, "|"), bundle.Pivot.S1, bundle.Pivot.R1)
}

// AssembleDigest folds per-instrument results into the digest, preserving
// registry order
func AssembleDigest(instruments []models.Instrument, fetched map[string]models.Series, bundles map[string]*models.SignalBundle) models.Digest {
	lines := make([]string, 0, len(instruments))
	for _, inst := range instruments {
		lines = append(lines, FormatLine(inst, fetched[inst.Code], bundles[inst.Code]))
	}

	return models.Digest{
		Lines:    lines,
		Rendered: strings.Join(lines, "\n"),
	}
}

// FormatNews renders the headline section; an empty collection yields the
// no-news line
func FormatNews(items []models.NewsItem) []string {
	if len(items) == 0 {
		return []string{noNewsLine}
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		if item.Publisher != "" {
			lines = append(lines, fmt.Sprintf("- %s (%s)", item.Title, item.Publisher))
		} else {
			lines = append(lines, fmt.Sprintf("- %s", item.Title))
		}
	}
	return lines
}

func trendMarker(t models.Trend) string {
	if t == models.TrendBullish {
		return "bullish"
	}
	return "bearish"
}

func momentumMarker(m models.Momentum) string {
	if m == models.MomentumGoldenCross {
		return "golden-cross"
	}
	return "dead-cross"
}

func volumeMarker(v models.VolumeState) string {
	switch v {
	case models.VolumeHigh:
		return "vol-surge"
	case models.VolumeLow:
		return "vol-dry"
	default:
		return ""
	}
}

func oscillatorMarker(o models.Oscillator) string {
	switch o.State {
	case models.OscillatorOverbought:
		return "overbought"
	case models.OscillatorOversold:
		return "oversold"
	default:
		return fmt.Sprintf("J:%d", o.J)
	}
}
