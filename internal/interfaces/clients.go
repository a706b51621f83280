// Package interfaces defines service contracts for Panorama
package interfaces

import (
	"context"

	"github.com/bobmcallan/panorama/internal/models"
)

// DomesticProvider serves daily history for domestic instruments. Each
// method returns bars ascending by date in the canonical schema.
type DomesticProvider interface {
	// DailyIndex retrieves daily bars for the market index
	DailyIndex(ctx context.Context, code string) (models.Series, error)

	// DailyFund retrieves forward-adjusted daily bars for an exchange-traded fund
	DailyFund(ctx context.Context, code string) (models.Series, error)

	// DailyEquity retrieves forward-adjusted daily bars for a listed equity
	DailyEquity(ctx context.Context, code string) (models.Series, error)
}

// GlobalProvider serves daily history for global instruments
type GlobalProvider interface {
	// Daily retrieves adjusted daily bars for a trailing window such as "6mo"
	Daily(ctx context.Context, symbol string, window string) (models.Series, error)
}

// NewsProvider serves recent headlines for a symbol
type NewsProvider interface {
	Headlines(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error)
}

// TextGenerator produces analysis text from a prompt. Implementations
// absorb all backend failures: the returned string is either generated text
// or an explicit degraded placeholder, never empty.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) string
}

// Notifier delivers the final document to the notification sink
type Notifier interface {
	Send(ctx context.Context, title, content string) error
}
