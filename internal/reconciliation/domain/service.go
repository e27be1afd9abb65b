package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	// BuildView merges persisted billing periods with virtual projections
	// for the filter window, scoped to what the actor may see.
	BuildView(ctx context.Context, actor string, filter Filter, asOf time.Time) (View, error)

	// AggregatePlanFact computes plan/fact/deviation totals for the window
	// without returning the row detail.
	AggregatePlanFact(ctx context.Context, actor string, filter Filter, asOf time.Time) (PlanFact, error)
}

var (
	ErrInvalidWindow  = errors.New("invalid_window")
	ErrClientNotFound = errors.New("client_not_found")
)

// Validate rejects empty or inverted windows before any data is touched.
func (f Filter) Validate() error {
	if f.From.IsZero() || f.To.IsZero() {
		return ErrInvalidWindow
	}
	if f.To.Before(f.From) {
		return ErrInvalidWindow
	}
	return nil
}

// Contains reports whether d falls inside the inclusive window.
func (f Filter) Contains(d time.Time) bool {
	return !d.Before(f.From) && !d.After(f.To)
}
