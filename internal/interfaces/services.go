package interfaces

import (
	"context"

	"github.com/bobmcallan/panorama/internal/models"
)

// MarketService routes instruments to their data provider and isolates
// per-instrument failures behind bounded retries
type MarketService interface {
	// FetchSeries performs a single routed fetch, returning ErrNotAvailable
	// on any upstream failure
	FetchSeries(ctx context.Context, inst models.Instrument) (models.Series, error)

	// Fetch wraps FetchSeries with the retry budget; ok is false once the
	// budget is exhausted
	Fetch(ctx context.Context, inst models.Instrument) (series models.Series, ok bool)

	// FetchAll fetches every instrument in registry order. A failed
	// instrument yields no map entry and never stops the loop.
	FetchAll(ctx context.Context, instruments []models.Instrument) map[string]models.Series
}

// ReportService runs the full daily pipeline and returns the final report
type ReportService interface {
	Run(ctx context.Context) (*models.Report, error)
}
