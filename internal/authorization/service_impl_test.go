package authorization

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTest(t *testing.T) (*gorm.DB, Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:authz_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&UserRole{}))

	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Enforcer: enforcer,
	})
	return db, svc
}

func TestResolveScopeAdminSeesAll(t *testing.T) {
	db, svc := setupTest(t)
	require.NoError(t, db.Create(&UserRole{UserID: 101, Role: RoleAdmin}).Error)

	scope, err := svc.ResolveScope(context.Background(), "user:101", ObjectReconciliation)
	require.NoError(t, err)
	assert.True(t, scope.All)
}

func TestResolveScopeManagerOwnedOnly(t *testing.T) {
	db, svc := setupTest(t)
	require.NoError(t, db.Create(&UserRole{UserID: 202, Role: RoleManager}).Error)

	scope, err := svc.ResolveScope(context.Background(), "user:202", ObjectReconciliation)
	require.NoError(t, err)
	assert.False(t, scope.All)
	assert.EqualValues(t, 202, scope.OwnerUserID)
}

func TestResolveScopeUnknownUserForbidden(t *testing.T) {
	_, svc := setupTest(t)

	_, err := svc.ResolveScope(context.Background(), "user:999", ObjectReconciliation)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestResolveScopeMalformedActor(t *testing.T) {
	_, svc := setupTest(t)

	_, err := svc.ResolveScope(context.Background(), "robot:1", ObjectReconciliation)
	assert.ErrorIs(t, err, ErrInvalidActor)

	_, err = svc.ResolveScope(context.Background(), "user:not-a-number", ObjectReconciliation)
	assert.ErrorIs(t, err, ErrInvalidActor)
}

func TestAuthorizeManagerCannotDeletePeriods(t *testing.T) {
	db, svc := setupTest(t)
	require.NoError(t, db.Create(&UserRole{UserID: 303, Role: RoleManager}).Error)

	err := svc.Authorize(context.Background(), "user:303", ObjectBillingPeriod, ActionMaterialize)
	assert.NoError(t, err)

	err = svc.Authorize(context.Background(), "user:303", ObjectBillingPeriod, ActionDelete)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthorizeSystemActor(t *testing.T) {
	_, svc := setupTest(t)

	err := svc.Authorize(context.Background(), "system", ObjectBillingPeriod, ActionDelete)
	assert.NoError(t, err)

	scope, err := svc.ResolveScope(context.Background(), "system", ObjectCommission)
	require.NoError(t, err)
	assert.True(t, scope.All)
}
