package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/panorama/internal/common"
	"github.com/bobmcallan/panorama/internal/models"
)

// stubDomestic records calls per code and fails configured codes
type stubDomestic struct {
	calls    map[string]int
	failing  map[string]bool
	sessions int
}

func newStubDomestic(sessions int) *stubDomestic {
	return &stubDomestic{
		calls:    make(map[string]int),
		failing:  make(map[string]bool),
		sessions: sessions,
	}
}

func (s *stubDomestic) serve(code string) (models.Series, error) {
	s.calls[code]++
	if s.failing[code] {
		return nil, errors.New("upstream unavailable")
	}
	return makeSeries(s.sessions), nil
}

func (s *stubDomestic) DailyIndex(_ context.Context, code string) (models.Series, error) {
	return s.serve("index:" + code)
}

func (s *stubDomestic) DailyFund(_ context.Context, code string) (models.Series, error) {
	return s.serve("fund:" + code)
}

func (s *stubDomestic) DailyEquity(_ context.Context, code string) (models.Series, error) {
	return s.serve("equity:" + code)
}

// stubGlobal serves a fixed series
type stubGlobal struct {
	calls  int
	window string
	series models.Series
	err    error
}

func (s *stubGlobal) Daily(_ context.Context, symbol, window string) (models.Series, error) {
	s.calls++
	s.window = window
	return s.series, s.err
}

func makeSeries(n int) models.Series {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	series := make(models.Series, n)
	for i := range series {
		c := 100 + float64(i)
		series[i] = models.Bar{
			Date: start.AddDate(0, 0, i),
			Open: c, High: c + 1, Low: c - 1, Close: c,
			Volume: 1000,
		}
	}
	return series
}

func fastOptions() Options {
	return Options{
		GlobalWindow: "6mo",
		MaxSessions:  60,
		Attempts:     3,
		InitialDelay: time.Millisecond,
	}
}

func TestFetchSeriesRouting(t *testing.T) {
	tests := []struct {
		name     string
		inst     models.Instrument
		wantCall string
	}{
		{
			name:     "index sentinel takes index path",
			inst:     models.Instrument{Name: "SSE", Code: "000001", Class: models.ClassDomesticIndex},
			wantCall: "index:000001",
		},
		{
			name:     "fund prefix takes fund path",
			inst:     models.Instrument{Name: "Semi ETF", Code: "512480", Class: models.ClassDomesticETF},
			wantCall: "fund:512480",
		},
		{
			name:     "other digits take equity path",
			inst:     models.Instrument{Name: "Zijin", Code: "601899", Class: models.ClassDomesticEquity},
			wantCall: "equity:601899",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			domestic := newStubDomestic(80)
			svc := NewService(domestic, &stubGlobal{}, fastOptions(), common.NewSilentLogger())

			_, err := svc.FetchSeries(context.Background(), tt.inst)
			require.NoError(t, err)
			assert.Equal(t, 1, domestic.calls[tt.wantCall])
		})
	}
}

func TestFetchSeriesGlobalPath(t *testing.T) {
	global := &stubGlobal{series: makeSeries(120)}
	svc := NewService(newStubDomestic(80), global, fastOptions(), common.NewSilentLogger())

	inst := models.Instrument{Name: "S&P", Code: "^GSPC", Class: models.ClassGlobal}
	series, err := svc.FetchSeries(context.Background(), inst)
	require.NoError(t, err)

	assert.Equal(t, "6mo", global.window)
	// global history is not truncated to the domestic session cap
	assert.Len(t, series, 120)
}

func TestFetchSeriesTruncatesDomesticHistory(t *testing.T) {
	domestic := newStubDomestic(250)
	svc := NewService(domestic, &stubGlobal{}, fastOptions(), common.NewSilentLogger())

	inst := models.Instrument{Name: "Zijin", Code: "601899", Class: models.ClassDomesticEquity}
	series, err := svc.FetchSeries(context.Background(), inst)
	require.NoError(t, err)

	assert.Len(t, series, 60)
	// truncation keeps the most recent sessions
	full := makeSeries(250)
	assert.Equal(t, full.Last().Date, series.Last().Date)
}

func TestFetchSeriesEmptyIsNotAvailable(t *testing.T) {
	global := &stubGlobal{series: models.Series{}}
	svc := NewService(newStubDomestic(80), global, fastOptions(), common.NewSilentLogger())

	inst := models.Instrument{Name: "S&P", Code: "^GSPC", Class: models.ClassGlobal}
	_, err := svc.FetchSeries(context.Background(), inst)
	assert.ErrorIs(t, err, ErrNotAvailable)
}

func TestFetchRetriesExactlyAttempts(t *testing.T) {
	domestic := newStubDomestic(80)
	domestic.failing["equity:601899"] = true
	svc := NewService(domestic, &stubGlobal{}, fastOptions(), common.NewSilentLogger())

	inst := models.Instrument{Name: "Zijin", Code: "601899", Class: models.ClassDomesticEquity}
	series, ok := svc.Fetch(context.Background(), inst)

	assert.False(t, ok)
	assert.Nil(t, series)
	assert.Equal(t, 3, domestic.calls["equity:601899"])
}

func TestFetchAllIsolatesFailures(t *testing.T) {
	domestic := newStubDomestic(80)
	domestic.failing["equity:222222"] = true
	svc := NewService(domestic, &stubGlobal{}, fastOptions(), common.NewSilentLogger())

	instruments := []models.Instrument{
		{Name: "A", Code: "111111", Class: models.ClassDomesticEquity},
		{Name: "B", Code: "222222", Class: models.ClassDomesticEquity},
		{Name: "C", Code: "333333", Class: models.ClassDomesticEquity},
	}

	results := svc.FetchAll(context.Background(), instruments)

	assert.Contains(t, results, "111111")
	assert.NotContains(t, results, "222222")
	assert.Contains(t, results, "333333")
	// the failing instrument consumed its full retry budget without
	// aborting the batch
	assert.Equal(t, 3, domestic.calls["equity:222222"])
	assert.Equal(t, 1, domestic.calls["equity:111111"])
	assert.Equal(t, 1, domestic.calls["equity:333333"])
}
