package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/panorama/internal/models"
)

func TestComputeInsufficientData(t *testing.T) {
	bars := generateBars(constantCloses(100, 25))

	bundle, err := Compute(bars)
	assert.Nil(t, bundle)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestComputeEmptySeries(t *testing.T) {
	_, err := Compute(models.Series{})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestComputeBullishBreakout(t *testing.T) {
	// 55 flat sessions followed by a sharp 5-session breakout: the short
	// average overtakes the long average and the oscillator runs hot
	closes := append(constantCloses(100, 55), 105, 110, 115, 120, 125)
	bars := generateBars(closes)

	bundle, err := Compute(bars)
	require.NoError(t, err)

	assert.Equal(t, models.TrendBullish, bundle.Trend)
	assert.Equal(t, models.MomentumGoldenCross, bundle.Momentum)
	assert.Equal(t, models.OscillatorOverbought, bundle.Oscillator.State)
	assert.Greater(t, bundle.Oscillator.J, 100)
}

func TestComputeBearishBreakdown(t *testing.T) {
	closes := append(constantCloses(100, 55), 95, 90, 85, 80, 75)
	bars := generateBars(closes)

	bundle, err := Compute(bars)
	require.NoError(t, err)

	assert.Equal(t, models.TrendBearish, bundle.Trend)
	assert.Equal(t, models.MomentumDeadCross, bundle.Momentum)
	assert.Equal(t, models.OscillatorOversold, bundle.Oscillator.State)
	assert.Less(t, bundle.Oscillator.J, 0)
}

func TestComputeVolumeStates(t *testing.T) {
	tests := []struct {
		name       string
		lastVolume int64
		expected   models.VolumeState
	}{
		{name: "spike classifies high", lastVolume: 10000, expected: models.VolumeHigh},
		{name: "drought classifies low", lastVolume: 100, expected: models.VolumeLow},
		{name: "steady classifies normal", lastVolume: 1000, expected: models.VolumeNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars := generateBars(constantCloses(100, 40))
			bars[len(bars)-1].Volume = tt.lastVolume

			bundle, err := Compute(bars)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, bundle.Volume)
		})
	}
}

func TestComputeNoVolumeHistory(t *testing.T) {
	bars := generateBars(constantCloses(100, 40))
	for i := range bars {
		bars[i].Volume = 0
	}

	bundle, err := Compute(bars)
	require.NoError(t, err)
	assert.Equal(t, models.VolumeNone, bundle.Volume)
}

func TestComputeIdempotent(t *testing.T) {
	closes := append(constantCloses(100, 50), steppedCloses(101, 1.5, 10)...)
	bars := generateBars(closes)

	first, err := Compute(bars)
	require.NoError(t, err)
	second, err := Compute(bars)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputeDoesNotMutateInput(t *testing.T) {
	bars := generateBars(constantCloses(100, 40))
	snapshot := make(models.Series, len(bars))
	copy(snapshot, bars)

	_, err := Compute(bars)
	require.NoError(t, err)
	assert.Equal(t, snapshot, bars)
}

func TestComputePivotFromLatestSession(t *testing.T) {
	bars := generateBars(constantCloses(100, 40))
	last := bars.Last()

	bundle, err := Compute(bars)
	require.NoError(t, err)

	expected := PivotLevels(last)
	assert.Equal(t, expected, bundle.Pivot)
}
