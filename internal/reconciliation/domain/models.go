// Package domain defines the merged persisted-plus-virtual revenue view.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	billingperioddomain "github.com/paperplanehq/agencydesk/internal/billingperiod/domain"
	"github.com/paperplanehq/agencydesk/internal/money"
)

// Row is one billing period in the reconciliation view. Persisted rows carry
// a PeriodID; virtual rows are calendar projections that have not been
// materialized yet and carry none.
type Row struct {
	PeriodID    *snowflake.ID `json:"period_id,omitempty"`
	ClientID    snowflake.ID  `json:"client_id"`
	ClientName  string        `json:"client_name"`
	ServiceID   snowflake.ID  `json:"service_id"`
	ServiceName string        `json:"service_name"`

	DateFrom       time.Time `json:"date_from"`
	DateTo         time.Time `json:"date_to"`
	PaymentDueDate time.Time `json:"payment_due_date"`

	Kind               billingperioddomain.PeriodKind `json:"kind"`
	ExpectedAmount     money.Money                    `json:"expected_amount"`
	CollectedAmount    money.Money                    `json:"collected_amount"`
	Balance            money.Money                    `json:"balance"`
	HasInvoice         bool                           `json:"has_invoice"`
	HasReport          bool                           `json:"has_report"`
	InvoiceNotRequired bool                           `json:"invoice_not_required"`

	IsVirtual        bool `json:"is_virtual"`
	IsOverdue        bool `json:"is_overdue"`
	IsPaymentOverdue bool `json:"is_payment_overdue"`
	IsRisk           bool `json:"is_risk"`
}

// Filter bounds the view to an inclusive date window. With ByPaymentDue set,
// rows are selected by payment due date instead of period intersection.
type Filter struct {
	From time.Time
	To   time.Time

	ClientID     *snowflake.ID
	ByPaymentDue bool
}

// PlanFact compares what the window should have earned against what was
// actually collected. Plan covers every row, virtual included; fact only
// money that really arrived.
type PlanFact struct {
	PlanTotal money.Money `json:"plan_total"`
	FactTotal money.Money `json:"fact_total"`
	Deviation money.Money `json:"deviation"`
}

// View is the assembled reconciliation report.
type View struct {
	Rows     []Row     `json:"rows"`
	PlanFact PlanFact  `json:"plan_fact"`
	AsOf     time.Time `json:"as_of"`
}
