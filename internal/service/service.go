// Package service holds the business rules of the API on top of the
// repositories.
package service

import (
	"context"
	"time"

	"socialhub/internal/observability"
	"socialhub/internal/pagination"
)

// DefaultQueryTimeout applies when a service is built without a timeout.
const DefaultQueryTimeout = 5 * time.Second

// op carries what every service method needs before touching storage.
type op struct {
	name    string
	timeout time.Duration
}

func newOp(name string, timeout time.Duration) op {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return op{name: name, timeout: timeout}
}

// start opens a span and bounds ctx by the query timeout. The returned
// func must be deferred with the method's named error.
func (o op) start(ctx context.Context, method string) (context.Context, func(*error)) {
	ctx, span := observability.StartServiceSpan(ctx, o.name, method)
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	return ctx, func(errp *error) {
		cancel()
		var err error
		if errp != nil {
			err = *errp
		}
		observability.EndSpan(span, err)
	}
}

// pageArgs validates the raw paging input of a list call.
func pageArgs(limit int, rawCursor string) (int, *pagination.Cursor, error) {
	cur, err := pagination.ParseCursor(rawCursor)
	if err != nil {
		return 0, nil, err
	}
	return boundLimit(limit), cur, nil
}

func boundLimit(limit int) int {
	switch {
	case limit == 0:
		return pagination.DefaultLimit
	case limit < pagination.MinLimit:
		return pagination.MinLimit
	case limit > pagination.MaxLimit:
		return pagination.MaxLimit
	}
	return limit
}
