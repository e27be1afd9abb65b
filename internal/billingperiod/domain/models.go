// Package domain contains the billing period model and the pure calendar
// projection it is derived from.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/paperplanehq/agencydesk/internal/money"
	"gorm.io/datatypes"
)

// PeriodKind classifies a billing period.
type PeriodKind string

const (
	KindStandard     PeriodKind = "STANDARD"
	KindExtended     PeriodKind = "EXTENDED"
	KindBonus        PeriodKind = "BONUS"
	KindCompensation PeriodKind = "COMPENSATION"
)

// BillingPeriod is one persisted calendar slice of a service's lifetime.
// The composite unique index on (service_id, date_from, date_to) is the
// natural key that prevents double billing: concurrent materializers race on
// it and the loser treats the collision as "already exists".
type BillingPeriod struct {
	ID                 snowflake.ID      `gorm:"primaryKey" json:"id"`
	ServiceID          snowflake.ID      `gorm:"not null;index;uniqueIndex:ux_billing_period_key,priority:1" json:"service_id"`
	DateFrom           time.Time         `gorm:"not null;uniqueIndex:ux_billing_period_key,priority:2" json:"date_from"`
	DateTo             time.Time         `gorm:"not null;uniqueIndex:ux_billing_period_key,priority:3" json:"date_to"`
	Kind               PeriodKind        `gorm:"type:text;not null;default:'STANDARD'" json:"kind"`
	AmountOverride     *money.Money      `gorm:"" json:"amount_override,omitempty"`
	InvoiceNotRequired bool              `gorm:"not null;default:false" json:"invoice_not_required"`
	Metadata           datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (BillingPeriod) TableName() string { return "billing_periods" }

// Range returns the period's natural-key range.
func (p BillingPeriod) Range() PeriodRange {
	return PeriodRange{DateFrom: p.DateFrom, DateTo: p.DateTo}
}

// ExpectedAmount resolves the override, falling back to the service price.
func (p BillingPeriod) ExpectedAmount(servicePrice money.Money) money.Money {
	if p.AmountOverride != nil {
		return *p.AmountOverride
	}
	return servicePrice
}

// PeriodReport marks that a narrative closeout report exists for a period.
type PeriodReport struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	PeriodID  snowflake.ID `gorm:"not null;uniqueIndex" json:"period_id"`
	AuthorID  snowflake.ID `gorm:"not null" json:"author_id"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (PeriodReport) TableName() string { return "period_reports" }
