// Package signals provides technical indicator calculations
package signals

import (
	"github.com/bobmcallan/panorama/internal/models"
)

// rsvEpsilon floors the RSV denominator on flat-range windows
const rsvEpsilon = 0.001

// SMA calculates the simple moving average of the trailing period values
func SMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}

	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// EMASeries calculates the exponential moving average at every position,
// seeded at the first value. Each point uses only data up to that point.
func EMASeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}

	multiplier := 2.0 / float64(period+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = (values[i]-out[i-1])*multiplier + out[i-1]
	}
	return out
}

// MACD calculates the latest MACD line and signal line values from close
// prices: EMA(fast) − EMA(slow), smoothed by EMA(signalPeriod)
func MACD(closes []float64, fastPeriod, slowPeriod, signalPeriod int) (macd, signal float64) {
	if len(closes) == 0 {
		return 0, 0
	}

	fast := EMASeries(closes, fastPeriod)
	slow := EMASeries(closes, slowPeriod)

	diff := make([]float64, len(closes))
	for i := range closes {
		diff[i] = fast[i] - slow[i]
	}
	signalSeries := EWMSeries(diff, float64(signalPeriod-1)/2.0)

	return diff[len(diff)-1], signalSeries[len(signalSeries)-1]
}

// EWMSeries calculates the exponentially weighted mean at every position
// using center-of-mass smoothing with adjusted weights, matching the
// conventional streaming form num/den with decay 1/(1+com)
func EWMSeries(values []float64, com float64) []float64 {
	if len(values) == 0 {
		return nil
	}

	alpha := 1.0 / (1.0 + com)
	decay := 1.0 - alpha

	out := make([]float64, len(values))
	var num, den float64
	for i, v := range values {
		num = v + decay*num
		den = 1 + decay*den
		out[i] = num / den
	}
	return out
}

// KDJ calculates the latest K, D, and J stochastic oscillator values over
// the given rolling window. RSV is evaluated from the first complete window
// onward; the denominator is floored on flat ranges.
func KDJ(series models.Series, window int, com float64) (k, d, j float64) {
	if len(series) < window {
		return 0, 0, 0
	}

	rsv := make([]float64, 0, len(series)-window+1)
	for i := window - 1; i < len(series); i++ {
		lo, hi := windowRange(series[i-window+1 : i+1])
		denom := hi - lo
		if denom == 0 {
			denom = rsvEpsilon
		}
		rsv = append(rsv, (series[i].Close-lo)/denom*100)
	}

	kSeries := EWMSeries(rsv, com)
	dSeries := EWMSeries(kSeries, com)

	k = kSeries[len(kSeries)-1]
	d = dSeries[len(dSeries)-1]
	j = 3*k - 2*d
	return k, d, j
}

// windowRange returns the lowest low and highest high of a bar window
func windowRange(bars models.Series) (lo, hi float64) {
	lo = bars[0].Low
	hi = bars[0].High
	for _, b := range bars[1:] {
		if b.Low < lo {
			lo = b.Low
		}
		if b.High > hi {
			hi = b.High
		}
	}
	return lo, hi
}

// VolumeRatio calculates the latest session volume as a ratio of the
// trailing mean volume. ok is false when no volume history exists.
func VolumeRatio(series models.Series, period int) (ratio float64, ok bool) {
	if len(series) < period || period <= 0 {
		return 0, false
	}

	var sum int64
	for _, b := range series[len(series)-period:] {
		sum += b.Volume
	}
	if sum == 0 {
		return 0, false
	}

	mean := float64(sum) / float64(period)
	return float64(series.Last().Volume) / mean, true
}

// PivotLevels calculates classical pivot support and resistance levels from
// a single session
func PivotLevels(bar models.Bar) models.Pivot {
	p := (bar.High + bar.Low + bar.Close) / 3
	return models.Pivot{
		P:  p,
		S1: 2*p - bar.High,
		R1: 2*p - bar.Low,
		S2: p - (bar.High - bar.Low),
		R2: p + (bar.High - bar.Low),
	}
}
