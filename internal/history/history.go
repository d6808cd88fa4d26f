// Package history defines the exchange history store used to record
// completed request/response round trips.
package history

import (
	"context"
	"time"
)

// Exchange is one recorded request/response round trip.
type Exchange struct {
	ID         string
	RequestID  string
	Method     string
	URL        string
	StatusCode int
	BodyBytes  int
	Duration   time.Duration
	Error      string
	CreatedAt  time.Time
}

// Store persists exchanges. Implementations must tolerate best-effort use:
// the pipeline never fails a request because recording failed.
type Store interface {
	SaveExchange(ctx context.Context, ex *Exchange) error
	RecentExchanges(ctx context.Context, limit int) ([]*Exchange, error)
	Close() error
}
