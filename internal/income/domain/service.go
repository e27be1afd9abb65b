package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/paperplanehq/agencydesk/internal/money"
	"github.com/paperplanehq/agencydesk/pkg/db/pagination"
)

// ListRequest filters the income ledger. Results are newest-first with
// cursor pagination.
type ListRequest struct {
	pagination.Pagination

	ClientID  *snowflake.ID
	ServiceID *snowflake.ID
	PeriodID  *snowflake.ID
}

type ListResponse struct {
	Data     []*Income            `json:"data"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}

// RecordRequest captures one received payment.
type RecordRequest struct {
	ClientID   snowflake.ID  `json:"client_id"`
	ServiceID  snowflake.ID  `json:"service_id"`
	PeriodID   *snowflake.ID `json:"period_id,omitempty"`
	Amount     money.Money   `json:"amount"`
	ReceivedAt time.Time     `json:"received_at"`
	Comment    string        `json:"comment,omitempty"`
}

type Service interface {
	// List returns incomes visible to the actor, newest first.
	List(ctx context.Context, actor string, req ListRequest) (*ListResponse, error)

	// Record stores a received payment, optionally attached to a billing
	// period of the same service.
	Record(ctx context.Context, actor string, req RecordRequest) (*Income, error)
}

var (
	ErrInvalidIncome   = errors.New("invalid_income")
	ErrServiceMismatch = errors.New("service_mismatch")
	ErrPeriodMismatch  = errors.New("period_mismatch")
)
