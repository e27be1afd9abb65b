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
	catalogdomain "github.com/paperplanehq/agencydesk/internal/catalog/domain"
	"github.com/paperplanehq/agencydesk/internal/income/domain"
	"github.com/paperplanehq/agencydesk/internal/money"
	"github.com/paperplanehq/agencydesk/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	adminActor   = "user:11"
	managerActor = "user:22"
)

func setupTest(t *testing.T) (*gorm.DB, *Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:income_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&catalogdomain.Client{},
		&catalogdomain.Product{},
		&catalogdomain.Service{},
		&billingperioddomain.BillingPeriod{},
		&domain.Income{},
		&authorization.UserRole{},
	)
	require.NoError(t, err)

	require.NoError(t, db.Create(&authorization.UserRole{UserID: 11, Role: authorization.RoleAdmin}).Error)
	require.NoError(t, db.Create(&authorization.UserRole{UserID: 22, Role: authorization.RoleManager}).Error)

	enforcer, err := authorization.NewEnforcer(db)
	require.NoError(t, err)
	authz := authorization.NewService(authorization.Params{
		DB:       db,
		Log:      zap.NewNop(),
		Enforcer: enforcer,
	})

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Authz: authz,
	}).(*Service)

	return db, svc, node
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedSold(t *testing.T, db *gorm.DB, node *snowflake.Node, owner snowflake.ID) (*catalogdomain.Client, *catalogdomain.Service) {
	t.Helper()

	client := &catalogdomain.Client{
		ID:          node.Generate(),
		Name:        "acme",
		OwnerUserID: owner,
	}
	require.NoError(t, db.Create(client).Error)

	price := money.Money(100_000)
	sold := &catalogdomain.Service{
		ID:           node.Generate(),
		ClientID:     client.ID,
		ProductID:    node.Generate(),
		Name:         "seo retainer",
		StartDate:    date(2025, time.January, 1),
		Cadence:      catalogdomain.CadenceMonthly,
		PrepayPolicy: catalogdomain.PolicyPostpay,
		Price:        &price,
		Status:       catalogdomain.ServiceStatusActive,
	}
	require.NoError(t, db.Create(sold).Error)
	return client, sold
}

func TestRecordAttachesToPeriod(t *testing.T) {
	db, svc, node := setupTest(t)
	client, sold := seedSold(t, db, node, 11)

	period := &billingperioddomain.BillingPeriod{
		ID:        node.Generate(),
		ServiceID: sold.ID,
		DateFrom:  date(2025, time.January, 1),
		DateTo:    date(2025, time.January, 31),
		Kind:      billingperioddomain.KindStandard,
	}
	require.NoError(t, db.Create(period).Error)

	income, err := svc.Record(context.Background(), adminActor, domain.RecordRequest{
		ClientID:   client.ID,
		ServiceID:  sold.ID,
		PeriodID:   &period.ID,
		Amount:     50_000,
		ReceivedAt: date(2025, time.February, 3),
	})
	require.NoError(t, err)
	require.NotNil(t, income.PeriodID)
	assert.Equal(t, period.ID, *income.PeriodID)
	assert.Equal(t, money.Money(50_000), income.Amount)
}

func TestRecordRejectsForeignPeriod(t *testing.T) {
	db, svc, node := setupTest(t)
	client, sold := seedSold(t, db, node, 11)
	_, other := seedSold(t, db, node, 11)

	period := &billingperioddomain.BillingPeriod{
		ID:        node.Generate(),
		ServiceID: other.ID,
		DateFrom:  date(2025, time.January, 1),
		DateTo:    date(2025, time.January, 31),
		Kind:      billingperioddomain.KindStandard,
	}
	require.NoError(t, db.Create(period).Error)

	_, err := svc.Record(context.Background(), adminActor, domain.RecordRequest{
		ClientID:   client.ID,
		ServiceID:  sold.ID,
		PeriodID:   &period.ID,
		Amount:     50_000,
		ReceivedAt: date(2025, time.February, 3),
	})
	assert.ErrorIs(t, err, domain.ErrPeriodMismatch)
}

func TestRecordValidatesAmount(t *testing.T) {
	db, svc, node := setupTest(t)
	client, sold := seedSold(t, db, node, 11)

	_, err := svc.Record(context.Background(), adminActor, domain.RecordRequest{
		ClientID:   client.ID,
		ServiceID:  sold.ID,
		Amount:     0,
		ReceivedAt: date(2025, time.February, 3),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidIncome)
}

func TestRecordUnknownService(t *testing.T) {
	_, svc, node := setupTest(t)

	_, err := svc.Record(context.Background(), adminActor, domain.RecordRequest{
		ClientID:   node.Generate(),
		ServiceID:  node.Generate(),
		Amount:     10_000,
		ReceivedAt: date(2025, time.February, 3),
	})
	assert.ErrorIs(t, err, billingperioddomain.ErrServiceNotFound)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	db, svc, node := setupTest(t)
	client, sold := seedSold(t, db, node, 11)

	for i := 0; i < 5; i++ {
		require.NoError(t, db.Create(&domain.Income{
			ID:         node.Generate(),
			ClientID:   client.ID,
			ServiceID:  sold.ID,
			Amount:     money.Money(1_000 * (i + 1)),
			ReceivedAt: date(2025, time.January, i+1),
		}).Error)
	}

	first, err := svc.List(context.Background(), adminActor, domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, first.Data, 5)
	assert.False(t, first.PageInfo.HasMore)
	assert.True(t, first.Data[0].ID > first.Data[4].ID)

	page, err := svc.List(context.Background(), adminActor, domain.ListRequest{
		Pagination: pagination.Pagination{PageSize: 2},
	})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.True(t, page.PageInfo.HasMore)
	require.NotEmpty(t, page.PageInfo.NextPageToken)

	rest, err := svc.List(context.Background(), adminActor, domain.ListRequest{
		Pagination: pagination.Pagination{PageSize: 2, PageToken: page.PageInfo.NextPageToken},
	})
	require.NoError(t, err)
	require.Len(t, rest.Data, 2)
	assert.True(t, page.Data[1].ID > rest.Data[0].ID)
}

func TestListScopesManagerToOwnedClients(t *testing.T) {
	db, svc, node := setupTest(t)
	mine, mineSold := seedSold(t, db, node, 22)
	other, otherSold := seedSold(t, db, node, 33)

	require.NoError(t, db.Create(&domain.Income{
		ID: node.Generate(), ClientID: mine.ID, ServiceID: mineSold.ID,
		Amount: 1_000, ReceivedAt: date(2025, time.January, 5),
	}).Error)
	require.NoError(t, db.Create(&domain.Income{
		ID: node.Generate(), ClientID: other.ID, ServiceID: otherSold.ID,
		Amount: 2_000, ReceivedAt: date(2025, time.January, 6),
	}).Error)

	resp, err := svc.List(context.Background(), managerActor, domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, mine.ID, resp.Data[0].ClientID)
}
