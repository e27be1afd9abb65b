package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/paperplanehq/agencydesk/internal/authorization"
	billingperioddomain "github.com/paperplanehq/agencydesk/internal/billingperiod/domain"
	"github.com/paperplanehq/agencydesk/internal/cache"
	catalogdomain "github.com/paperplanehq/agencydesk/internal/catalog/domain"
	"github.com/paperplanehq/agencydesk/internal/commission/domain"
	incomedomain "github.com/paperplanehq/agencydesk/internal/income/domain"
	invoicedomain "github.com/paperplanehq/agencydesk/internal/invoice/domain"
	"github.com/paperplanehq/agencydesk/internal/money"
	reconservice "github.com/paperplanehq/agencydesk/internal/reconciliation/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const adminActor = "user:11"

func setupTest(t *testing.T) (*gorm.DB, *Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:commission_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&catalogdomain.Client{},
		&catalogdomain.Product{},
		&catalogdomain.Service{},
		&billingperioddomain.BillingPeriod{},
		&billingperioddomain.PeriodReport{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceLine{},
		&incomedomain.Income{},
		&domain.Agent{},
		&authorization.UserRole{},
	)
	require.NoError(t, err)

	require.NoError(t, db.Create(&authorization.UserRole{UserID: 11, Role: authorization.RoleAdmin}).Error)

	enforcer, err := authorization.NewEnforcer(db)
	require.NoError(t, err)
	authz := authorization.NewService(authorization.Params{
		DB:       db,
		Log:      zap.NewNop(),
		Enforcer: enforcer,
	})

	recon := reconservice.NewService(reconservice.ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		Authz: authz,
	})

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:       db,
		Log:      zap.NewNop(),
		Authz:    authz,
		Recon:    recon,
		Products: cache.NewProductCache(),
	}).(*Service)

	return db, svc, node
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	agent   *domain.Agent
	client  *catalogdomain.Client
	product *catalogdomain.Product
	sold    *catalogdomain.Service
}

// seedFixture creates an agent with one client on a monthly 100 000 POSTPAY
// retainer starting 2025-01-15, product partner rate 10%.
func seedFixture(t *testing.T, db *gorm.DB, node *snowflake.Node, agent *domain.Agent) fixture {
	t.Helper()

	agent.ID = node.Generate()
	if agent.Name == "" {
		agent.Name = "jane partner"
	}
	require.NoError(t, db.Create(agent).Error)

	product := &catalogdomain.Product{
		ID:               node.Generate(),
		Name:             "seo",
		PartnerPercentBP: 1_000,
	}
	require.NoError(t, db.Create(product).Error)

	client := &catalogdomain.Client{
		ID:          node.Generate(),
		Name:        "acme",
		OwnerUserID: 11,
		AgentID:     &agent.ID,
	}
	require.NoError(t, db.Create(client).Error)

	price := money.Money(100_000)
	sold := &catalogdomain.Service{
		ID:           node.Generate(),
		ClientID:     client.ID,
		ProductID:    product.ID,
		Name:         "seo retainer",
		StartDate:    date(2025, time.January, 15),
		Cadence:      catalogdomain.CadenceMonthly,
		PrepayPolicy: catalogdomain.PolicyPostpay,
		Price:        &price,
		Status:       catalogdomain.ServiceStatusActive,
	}
	require.NoError(t, db.Create(sold).Error)

	return fixture{agent: agent, client: client, product: product, sold: sold}
}

func seedPaidPeriod(t *testing.T, db *gorm.DB, node *snowflake.Node, f fixture, from, to time.Time, paid money.Money) {
	t.Helper()

	period := &billingperioddomain.BillingPeriod{
		ID:        node.Generate(),
		ServiceID: f.sold.ID,
		DateFrom:  from,
		DateTo:    to,
		Kind:      billingperioddomain.KindStandard,
	}
	require.NoError(t, db.Create(period).Error)

	if paid.IsZero() {
		return
	}
	periodID := period.ID
	require.NoError(t, db.Create(&incomedomain.Income{
		ID:         node.Generate(),
		ClientID:   f.client.ID,
		ServiceID:  f.sold.ID,
		PeriodID:   &periodID,
		Amount:     paid,
		ReceivedAt: to,
	}).Error)
}

// Window covering payments due 2025-02-14 and 2025-03-14: two periods, plan
// 200 000.
var (
	windowFrom = date(2025, time.January, 1)
	windowTo   = date(2025, time.March, 31)
	asOf       = date(2025, time.March, 20)
)

func TestComputeEarningsProratesByCollected(t *testing.T) {
	db, svc, node := setupTest(t)
	f := seedFixture(t, db, node, &domain.Agent{})

	seedPaidPeriod(t, db, node, f, date(2025, time.January, 15), date(2025, time.February, 14), 50_000)

	report, err := svc.ComputeEarnings(context.Background(), adminActor, f.agent.ID, windowFrom, windowTo, asOf)
	require.NoError(t, err)

	assert.Equal(t, money.Money(20_000), report.ExpectedTotal)
	assert.Equal(t, money.Money(5_000), report.PaidTotal)

	require.Len(t, report.Clients, 1)
	assert.Equal(t, f.client.ID, report.Clients[0].ClientID)
	assert.Equal(t, money.Money(20_000), report.Clients[0].ExpectedCommission)
	assert.Equal(t, money.Money(5_000), report.Clients[0].PaidCommission)
}

func TestComputeEarningsZeroCollectedZeroPaid(t *testing.T) {
	db, svc, node := setupTest(t)
	f := seedFixture(t, db, node, &domain.Agent{})

	report, err := svc.ComputeEarnings(context.Background(), adminActor, f.agent.ID, windowFrom, windowTo, asOf)
	require.NoError(t, err)

	assert.Equal(t, money.Money(20_000), report.ExpectedTotal)
	assert.True(t, report.PaidTotal.IsZero())
}

func TestComputeEarningsFullyCollected(t *testing.T) {
	db, svc, node := setupTest(t)
	f := seedFixture(t, db, node, &domain.Agent{})

	seedPaidPeriod(t, db, node, f, date(2025, time.January, 15), date(2025, time.February, 14), 100_000)
	seedPaidPeriod(t, db, node, f, date(2025, time.February, 15), date(2025, time.March, 14), 100_000)

	report, err := svc.ComputeEarnings(context.Background(), adminActor, f.agent.ID, windowFrom, windowTo, asOf)
	require.NoError(t, err)

	assert.Equal(t, report.ExpectedTotal, report.PaidTotal)
	assert.Equal(t, money.Money(20_000), report.PaidTotal)
}

func TestComputeEarningsPersonalRateOverridesProduct(t *testing.T) {
	db, svc, node := setupTest(t)
	f := seedFixture(t, db, node, &domain.Agent{
		CommissionInOurAmount: true,
		DesiredPercentBP:      2_000,
	})

	report, err := svc.ComputeEarnings(context.Background(), adminActor, f.agent.ID, windowFrom, windowTo, asOf)
	require.NoError(t, err)

	assert.Equal(t, money.Money(40_000), report.ExpectedTotal)
}

func TestComputeEarningsNoConfigContributesZero(t *testing.T) {
	db, svc, node := setupTest(t)
	f := seedFixture(t, db, node, &domain.Agent{})

	require.NoError(t, db.Model(f.product).Update("partner_percent_bp", 0).Error)

	report, err := svc.ComputeEarnings(context.Background(), adminActor, f.agent.ID, windowFrom, windowTo, asOf)
	require.NoError(t, err)

	assert.True(t, report.ExpectedTotal.IsZero())
	assert.True(t, report.PaidTotal.IsZero())
	require.Len(t, report.Clients, 1)
}

func TestComputeEarningsUnknownAgent(t *testing.T) {
	_, svc, node := setupTest(t)

	_, err := svc.ComputeEarnings(context.Background(), adminActor, node.Generate(), windowFrom, windowTo, asOf)
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
}

func TestComputeEarningsSurfacesOnTop(t *testing.T) {
	db, svc, node := setupTest(t)
	f := seedFixture(t, db, node, &domain.Agent{CommissionOnTop: true})

	report, err := svc.ComputeEarnings(context.Background(), adminActor, f.agent.ID, windowFrom, windowTo, asOf)
	require.NoError(t, err)
	assert.True(t, report.OnTop)
}
