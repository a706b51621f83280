// Package market routes instruments to their data provider and shields the
// batch from per-instrument failures
package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/bobmcallan/panorama/internal/common"
	"github.com/bobmcallan/panorama/internal/interfaces"
	"github.com/bobmcallan/panorama/internal/models"
)

// ErrNotAvailable indicates the upstream source failed, returned an empty
// series, or could not be normalized
var ErrNotAvailable = errors.New("market data not available")

// Options tunes routing and the retry budget
type Options struct {
	GlobalWindow string        // trailing window for global daily bars
	MaxSessions  int           // domestic history truncation
	Attempts     int           // fetch attempts per instrument
	InitialDelay time.Duration // first retry delay, grows exponentially
}

// DefaultOptions returns the standard routing and retry configuration
func DefaultOptions() Options {
	return Options{
		GlobalWindow: "6mo",
		MaxSessions:  60,
		Attempts:     3,
		InitialDelay: 2 * time.Second,
	}
}

// Service implements MarketService
type Service struct {
	domestic interfaces.DomesticProvider
	global   interfaces.GlobalProvider
	opts     Options
	logger   *common.Logger
}

// NewService creates a new market service
func NewService(domestic interfaces.DomesticProvider, global interfaces.GlobalProvider, opts Options, logger *common.Logger) *Service {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 60
	}
	if opts.GlobalWindow == "" {
		opts.GlobalWindow = "6mo"
	}
	return &Service{
		domestic: domestic,
		global:   global,
		opts:     opts,
		logger:   logger,
	}
}

// FetchSeries performs one routed fetch. Domestic history is truncated to
// the most recent MaxSessions sessions. All failure modes collapse to
// ErrNotAvailable.
func (s *Service) FetchSeries(ctx context.Context, inst models.Instrument) (models.Series, error) {
	var (
		series models.Series
		err    error
	)

	switch inst.Class {
	case models.ClassDomesticIndex:
		series, err = s.domestic.DailyIndex(ctx, inst.Code)
	case models.ClassDomesticETF:
		series, err = s.domestic.DailyFund(ctx, inst.Code)
	case models.ClassDomesticEquity:
		series, err = s.domestic.DailyEquity(ctx, inst.Code)
	case models.ClassGlobal:
		series, err = s.global.Daily(ctx, inst.Code, s.opts.GlobalWindow)
	default:
		return nil, fmt.Errorf("%w: unknown market class %q", ErrNotAvailable, inst.Class)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotAvailable, inst.Code, err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: %s: empty series", ErrNotAvailable, inst.Code)
	}

	if inst.IsDomestic() {
		series = series.Tail(s.opts.MaxSessions)
	}
	return series, nil
}

// Fetch wraps FetchSeries with the bounded retry budget. It never
// propagates the underlying error: exhausted attempts yield ok == false
// and the caller renders the instrument as unavailable.
func (s *Service) Fetch(ctx context.Context, inst models.Instrument) (models.Series, bool) {
	var series models.Series

	operation := func() error {
		var err error
		series, err = s.FetchSeries(ctx, inst)
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.opts.InitialDelay
	policy.MaxElapsedTime = 0

	err := backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(policy, uint64(s.opts.Attempts-1)), ctx))
	if err != nil {
		s.logger.Warn().
			Str("instrument", inst.Name).
			Str("code", inst.Code).
			Int("attempts", s.opts.Attempts).
			Err(err).
			Msg("Fetch failed after retries")
		return nil, false
	}

	return series, true
}

// FetchAll fetches every instrument in registry order. A failure leaves no
// entry for that code and never stops the loop.
func (s *Service) FetchAll(ctx context.Context, instruments []models.Instrument) map[string]models.Series {
	results := make(map[string]models.Series, len(instruments))
	for _, inst := range instruments {
		series, ok := s.Fetch(ctx, inst)
		if !ok {
			continue
		}
		results[inst.Code] = series
		s.logger.Debug().
			Str("instrument", inst.Name).
			Int("sessions", len(series)).
			Msg("Fetched series")
	}
	return results
}

// Ensure Service implements MarketService
var _ interfaces.MarketService = (*Service)(nil)
