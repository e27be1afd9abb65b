// Package seed bootstraps a demo agency for local development.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/paperplanehq/agencydesk/internal/authorization"
	catalogdomain "github.com/paperplanehq/agencydesk/internal/catalog/domain"
	commissiondomain "github.com/paperplanehq/agencydesk/internal/commission/domain"
	"github.com/paperplanehq/agencydesk/internal/money"
	"gorm.io/gorm"
)

const (
	demoClientName  = "Demo Client"
	demoProductName = "SEO Retainer"
	demoAgentName   = "Demo Partner"
)

// EnsureDemoAgency seeds an admin user, one agent-linked client and one
// monthly service so a fresh install renders a non-empty reconciliation
// view. Idempotent: an existing demo client short-circuits everything.
func EnsureDemoAgency(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing catalogdomain.Client
		err := tx.Where("name = ?", demoClientName).Limit(1).Find(&existing).Error
		if err != nil {
			return err
		}
		if existing.ID != 0 {
			return nil
		}

		admin := &authorization.UserRole{UserID: node.Generate(), Role: authorization.RoleAdmin}
		if err := tx.Create(admin).Error; err != nil {
			return err
		}

		agent := &commissiondomain.Agent{
			ID:               node.Generate(),
			Name:             demoAgentName,
			DesiredPercentBP: 1_000,
		}
		if err := tx.Create(agent).Error; err != nil {
			return err
		}

		product := &catalogdomain.Product{
			ID:               node.Generate(),
			Name:             demoProductName,
			PartnerPercentBP: 1_000,
		}
		if err := tx.Create(product).Error; err != nil {
			return err
		}

		client := &catalogdomain.Client{
			ID:          node.Generate(),
			Name:        demoClientName,
			OwnerUserID: admin.UserID,
			AgentID:     &agent.ID,
		}
		if err := tx.Create(client).Error; err != nil {
			return err
		}

		price := money.Money(100_000)
		now := time.Now().UTC()
		service := &catalogdomain.Service{
			ID:           node.Generate(),
			ClientID:     client.ID,
			ProductID:    product.ID,
			Name:         demoProductName,
			StartDate:    time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
			Cadence:      catalogdomain.CadenceMonthly,
			PrepayPolicy: catalogdomain.PolicyPostpay,
			Price:        &price,
			Status:       catalogdomain.ServiceStatusActive,
		}
		return tx.Create(service).Error
	})
}
