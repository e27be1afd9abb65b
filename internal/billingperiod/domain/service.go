package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// MaterializeResult summarizes one materializer pass over a service.
type MaterializeResult struct {
	ServiceID snowflake.ID `json:"service_id"`
	Created   int          `json:"created"`
	Existing  int          `json:"existing"`
	Failed    int          `json:"failed"`
}

type Service interface {
	// Materialize ensures every range projected up to a bounded horizon
	// past asOf has a persisted billing period. Idempotent and safe under
	// concurrent invocation.
	Materialize(ctx context.Context, serviceID snowflake.ID, asOf time.Time) (MaterializeResult, error)

	// MaterializeActive runs Materialize over every active service.
	// Failures are contained per service.
	MaterializeActive(ctx context.Context, asOf time.Time) ([]MaterializeResult, error)

	// Remove deletes a period that has no attached invoice or income.
	Remove(ctx context.Context, periodID snowflake.ID) error
}

var (
	ErrInvalidCadence      = errors.New("invalid_cadence")
	ErrInvalidRange        = errors.New("invalid_range")
	ErrUnboundedProjection = errors.New("unbounded_projection")
	ErrServiceNotFound     = errors.New("service_not_found")
	ErrPeriodNotFound      = errors.New("period_not_found")
	ErrPeriodInUse         = errors.New("period_in_use")
)
