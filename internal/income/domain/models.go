// Package domain contains the recorded collection event model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/paperplanehq/agencydesk/internal/money"
)

// Income is money actually received. The sum of incomes linked to a billing
// period is that period's collected amount.
type Income struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	ClientID   snowflake.ID  `gorm:"not null;index" json:"client_id"`
	ServiceID  snowflake.ID  `gorm:"not null;index" json:"service_id"`
	PeriodID   *snowflake.ID `gorm:"index" json:"period_id,omitempty"`
	Amount     money.Money   `gorm:"not null" json:"amount"`
	ReceivedAt time.Time     `gorm:"not null;index" json:"received_at"`
	Comment    string        `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Income) TableName() string { return "incomes" }
