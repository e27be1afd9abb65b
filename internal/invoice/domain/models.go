// Package domain contains persistence models for billing documents.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/paperplanehq/agencydesk/internal/money"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft  InvoiceStatus = "DRAFT"
	InvoiceStatusIssued InvoiceStatus = "ISSUED"
	InvoiceStatusPaid   InvoiceStatus = "PAID"
	InvoiceStatusVoid   InvoiceStatus = "VOID"
)

// Invoice is a billing document. Single-period invoices reference the period
// directly; multi-line invoices attach periods through InvoiceLine rows.
type Invoice struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	ServiceID snowflake.ID      `gorm:"not null;index" json:"service_id"`
	PeriodID  *snowflake.ID     `gorm:"index" json:"period_id,omitempty"`
	PublicID  uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex" json:"public_id"`
	Amount    money.Money       `gorm:"not null;default:0" json:"amount"`
	Status    InvoiceStatus     `gorm:"type:text;not null;default:'DRAFT'" json:"status"`
	IssuedAt  *time.Time        `gorm:"" json:"issued_at,omitempty"`
	DueAt     *time.Time        `gorm:"" json:"due_at,omitempty"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceLine attaches one billing period to a multi-period invoice.
type InvoiceLine struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID snowflake.ID `gorm:"not null;index" json:"invoice_id"`
	PeriodID  snowflake.ID `gorm:"not null;index" json:"period_id"`
	Amount    money.Money  `gorm:"not null;default:0" json:"amount"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (InvoiceLine) TableName() string { return "invoice_lines" }
