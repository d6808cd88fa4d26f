package ports

import (
	"context"

	"github.com/tjfontaine/resthook/pkg/domain"
)

// Transport performs the actual HTTP exchange. It is the sole blocking point
// of the core; timeout policy lives inside the implementation.
//
// Do consumes the request: the caller must not touch req after the call.
// Non-2xx statuses are returned as responses, not errors; only failures to
// complete the exchange at all produce an error.
type Transport interface {
	Do(ctx context.Context, req *domain.Request) (*domain.Response, error)
}
