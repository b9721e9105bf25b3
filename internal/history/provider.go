// Package history supplies daily closing-price series to the core: two
// upstream providers behind one interface, an optional Redis read-through
// cache, and an optional PostgreSQL archive used as a fallback.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/quantterm/backend/internal/series"
)

// ErrUnavailable is returned for any failed or empty fetch: network
// error, unknown symbol, upstream rejection. Callers surface it as
// "data unavailable"; it never carries partial data.
var ErrUnavailable = errors.New("price history unavailable")

// IsUnavailable reports whether err is a missing-data outcome rather
// than an internal failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// Provider fetches a daily close series for a symbol and date range.
// Implementations map their upstream's symbol and date conventions so the
// returned series looks identical regardless of source.
type Provider interface {
	// FetchDaily returns observations in [from, to], ascending by date.
	FetchDaily(ctx context.Context, symbol string, from, to time.Time) (series.Series, error)
}
