package signals

import (
	"errors"

	"github.com/bobmcallan/panorama/internal/models"
)

// ErrInsufficientData indicates the series is shorter than the largest
// rolling window the engine needs
var ErrInsufficientData = errors.New("insufficient data for signal computation")

const (
	// MinSessions is the minimum series length required by Compute,
	// sized to the slow MACD window plus settling headroom
	MinSessions = 30

	trendFastPeriod = 5
	trendSlowPeriod = 20

	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9

	kdjWindow = 9
	kdjCom    = 2.0

	volumePeriod    = 5
	volumeHighRatio = 1.8
	volumeLowRatio  = 0.6
)

// Compute derives the full signal bundle from an OHLCV series. It is a pure
// function: the input series is never mutated and identical input yields an
// identical bundle. Series shorter than MinSessions fail with
// ErrInsufficientData.
func Compute(series models.Series) (*models.SignalBundle, error) {
	if len(series) < MinSessions {
		return nil, ErrInsufficientData
	}

	closes := series.Closes()

	bundle := &models.SignalBundle{
		Trend:    models.TrendBearish,
		Momentum: models.MomentumDeadCross,
		Pivot:    PivotLevels(series.Last()),
	}

	if SMA(closes, trendFastPeriod) > SMA(closes, trendSlowPeriod) {
		bundle.Trend = models.TrendBullish
	}

	macd, signal := MACD(closes, macdFastPeriod, macdSlowPeriod, macdSignalPeriod)
	if macd > signal {
		bundle.Momentum = models.MomentumGoldenCross
	}

	_, _, j := KDJ(series, kdjWindow, kdjCom)
	switch {
	case j > 100:
		bundle.Oscillator = models.Oscillator{State: models.OscillatorOverbought, J: int(j)}
	case j < 0:
		bundle.Oscillator = models.Oscillator{State: models.OscillatorOversold, J: int(j)}
	default:
		bundle.Oscillator = models.Oscillator{State: models.OscillatorNeutral, J: int(j)}
	}

	if ratio, ok := VolumeRatio(series, volumePeriod); ok {
		switch {
		case ratio > volumeHighRatio:
			bundle.Volume = models.VolumeHigh
		case ratio < volumeLowRatio:
			bundle.Volume = models.VolumeLow
		default:
			bundle.Volume = models.VolumeNormal
		}
	}

	return bundle, nil
}
