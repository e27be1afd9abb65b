package migration

import (
	"github.com/paperplanehq/agencydesk/internal/authorization"
	billingperioddomain "github.com/paperplanehq/agencydesk/internal/billingperiod/domain"
	catalogdomain "github.com/paperplanehq/agencydesk/internal/catalog/domain"
	commissiondomain "github.com/paperplanehq/agencydesk/internal/commission/domain"
	"github.com/paperplanehq/agencydesk/internal/config"
	incomedomain "github.com/paperplanehq/agencydesk/internal/income/domain"
	invoicedomain "github.com/paperplanehq/agencydesk/internal/invoice/domain"
	"github.com/paperplanehq/agencydesk/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql development setups skip versioned
			// migrations and let gorm derive the schema.
			if err := autoMigrate(conn); err != nil {
				return err
			}
		}

		if cfg.Environment != "production" {
			return seed.EnsureDemoAgency(conn)
		}
		return nil
	}),
)

func autoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&catalogdomain.Client{},
		&catalogdomain.Product{},
		&catalogdomain.Service{},
		&billingperioddomain.BillingPeriod{},
		&billingperioddomain.PeriodReport{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceLine{},
		&incomedomain.Income{},
		&commissiondomain.Agent{},
		&authorization.UserRole{},
	)
}
