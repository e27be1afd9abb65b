// Package domain contains persistence models for clients and sold services.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/paperplanehq/agencydesk/internal/money"
	"gorm.io/datatypes"
)

// BillingCadence is how often a service recurs.
type BillingCadence string

const (
	CadenceOneTime   BillingCadence = "ONE_TIME"
	CadenceMonthly   BillingCadence = "MONTHLY"
	CadenceQuarterly BillingCadence = "QUARTERLY"
	CadenceYearly    BillingCadence = "YEARLY"
)

// Months returns the cadence length in months, 0 for one-time.
func (c BillingCadence) Months() int {
	switch c {
	case CadenceMonthly:
		return 1
	case CadenceQuarterly:
		return 3
	case CadenceYearly:
		return 12
	default:
		return 0
	}
}

func (c BillingCadence) Valid() bool {
	switch c {
	case CadenceOneTime, CadenceMonthly, CadenceQuarterly, CadenceYearly:
		return true
	}
	return false
}

// PrepaymentPolicy decides whether payment is due at period start or end.
type PrepaymentPolicy string

const (
	PolicyFullPrepay    PrepaymentPolicy = "FULL_PREPAY"
	PolicyPartialPrepay PrepaymentPolicy = "PARTIAL_PREPAY"
	PolicyPostpay       PrepaymentPolicy = "POSTPAY"
)

// DueAtStart reports whether the policy makes payment due at dateFrom.
func (p PrepaymentPolicy) DueAtStart() bool {
	return p == PolicyFullPrepay || p == PolicyPartialPrepay
}

// ServiceStatus is the lifecycle state of a sold service.
type ServiceStatus string

const (
	ServiceStatusDraft  ServiceStatus = "DRAFT"
	ServiceStatusActive ServiceStatus = "ACTIVE"
	ServiceStatusEnded  ServiceStatus = "ENDED"
)

// Client is a customer of the agency.
type Client struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"not null" json:"name"`
	OwnerUserID snowflake.ID      `gorm:"not null;index" json:"owner_user_id"`
	AgentID     *snowflake.ID     `gorm:"index" json:"agent_id,omitempty"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Client) TableName() string { return "clients" }

// Product is a service type in the catalog; it carries the standard partner
// commission percentage used when an agent has no personal rate.
type Product struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	Name             string       `gorm:"not null" json:"name"`
	PartnerPercentBP int64        `gorm:"not null;default:0" json:"partner_percent_bp"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

// Service is a sold, possibly recurring offering. Periods are always
// re-derived from current values; the engine never assumes immutability.
type Service struct {
	ID           snowflake.ID     `gorm:"primaryKey" json:"id"`
	ClientID     snowflake.ID     `gorm:"not null;index" json:"client_id"`
	ProductID    snowflake.ID     `gorm:"not null;index" json:"product_id"`
	Name         string           `gorm:"not null" json:"name"`
	StartDate    time.Time        `gorm:"not null" json:"start_date"`
	EndDate      *time.Time       `gorm:"" json:"end_date,omitempty"`
	Cadence      BillingCadence   `gorm:"type:text;not null" json:"cadence"`
	PrepayPolicy PrepaymentPolicy `gorm:"type:text;not null;default:'POSTPAY'" json:"prepay_policy"`
	Price        *money.Money     `gorm:"" json:"price,omitempty"`
	Status       ServiceStatus    `gorm:"type:text;not null;default:'ACTIVE'" json:"status"`
	CreatedAt    time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Service) TableName() string { return "services" }

// ExpectedAmount is the service price, or zero when no price is agreed.
func (s Service) ExpectedAmount() money.Money {
	if s.Price == nil {
		return 0
	}
	return *s.Price
}
