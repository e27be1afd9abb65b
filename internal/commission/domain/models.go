// Package domain defines agents and their commission earnings breakdown.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/paperplanehq/agencydesk/internal/money"
)

// Agent is a referral partner paid a percentage of client revenue.
//
// CommissionInOurAmount means the agent's personal rate applies instead of
// the product's standard partner rate. CommissionOnTop means the commission
// is billed to the client on top of the price rather than carved out of it;
// the engine surfaces the flag, invoicing acts on it.
type Agent struct {
	ID                    snowflake.ID `gorm:"primaryKey" json:"id"`
	Name                  string       `gorm:"not null" json:"name"`
	CommissionOnTop       bool         `gorm:"not null;default:false" json:"commission_on_top"`
	CommissionInOurAmount bool         `gorm:"not null;default:false" json:"commission_in_our_amount"`
	DesiredPercentBP      int64        `gorm:"not null;default:0" json:"desired_percent_bp"`
	CreatedAt             time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt             time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Agent) TableName() string { return "agents" }

// ClientEarnings is one client's contribution to an agent's earnings.
type ClientEarnings struct {
	ClientID           snowflake.ID `json:"client_id"`
	ClientName         string       `json:"client_name"`
	ExpectedCommission money.Money  `json:"expected_commission"`
	PaidCommission     money.Money  `json:"paid_commission"`
}

// EarningsReport is the agent's commission over a payment-due window.
// Expected follows the plan; paid follows money actually collected, so an
// uncollected period contributes zero to paid.
type EarningsReport struct {
	AgentID   snowflake.ID `json:"agent_id"`
	AgentName string       `json:"agent_name"`
	OnTop     bool         `json:"on_top"`

	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	Clients       []ClientEarnings `json:"clients"`
	ExpectedTotal money.Money      `json:"expected_total"`
	PaidTotal     money.Money      `json:"paid_total"`
}
