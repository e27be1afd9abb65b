package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

// Roles known to the billing engine. Admins see every record; managers only
// records owned by them.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		{"role:admin", ObjectReconciliation, ActionView},
		{"role:admin", ObjectReconciliation, ActionViewAll},
		{"role:admin", ObjectCommission, ActionView},
		{"role:admin", ObjectCommission, ActionViewAll},
		{"role:admin", ObjectBillingPeriod, ActionMaterialize},
		{"role:admin", ObjectBillingPeriod, ActionDelete},
		{"role:admin", ObjectIncome, ActionView},
		{"role:admin", ObjectIncome, ActionViewAll},
		{"role:admin", ObjectIncome, ActionRecord},

		{"role:manager", ObjectReconciliation, ActionView},
		{"role:manager", ObjectCommission, ActionView},
		{"role:manager", ObjectBillingPeriod, ActionMaterialize},
		{"role:manager", ObjectIncome, ActionView},
		{"role:manager", ObjectIncome, ActionRecord},
	}
	for _, p := range policies {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return err
		}
	}
	return nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

// UserRole maps a staff user to a role.
type UserRole struct {
	UserID snowflake.ID `gorm:"primaryKey"`
	Role   string       `gorm:"type:text;not null"`
}

func (UserRole) TableName() string { return "user_roles" }

func (s *ServiceImpl) ResolveScope(ctx context.Context, actor string, object string) (Scope, error) {
	subject, userID, err := s.resolveActor(ctx, actor)
	if err != nil {
		return Scope{}, err
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return Scope{}, ErrInvalidObject
	}

	if allowed, err := s.enforcer.Enforce(subject, object, ActionViewAll); err != nil {
		return Scope{}, err
	} else if allowed {
		return ScopeAll(), nil
	}

	if allowed, err := s.enforcer.Enforce(subject, object, ActionView); err != nil {
		return Scope{}, err
	} else if allowed {
		return OwnedOnly(userID), nil
	}

	s.log.Debug("scope denied", zap.String("actor", actor), zap.String("object", object))
	return Scope{}, ErrForbidden
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor string, object string, action string) error {
	subject, _, err := s.resolveActor(ctx, actor)
	if err != nil {
		return err
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("action denied",
			zap.String("actor", actor),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) resolveActor(ctx context.Context, actor string) (string, snowflake.ID, error) {
	actor = strings.TrimSpace(actor)
	if actor == "system" {
		if err := s.ensureGrouping(actor, "role:admin"); err != nil {
			return "", 0, err
		}
		return actor, 0, nil
	}
	if !strings.HasPrefix(actor, "user:") {
		return "", 0, ErrInvalidActor
	}

	userID, err := snowflake.ParseString(strings.TrimPrefix(actor, "user:"))
	if err != nil || userID == 0 {
		return "", 0, ErrInvalidActor
	}

	role, err := s.roleForUser(ctx, userID)
	if err != nil {
		return "", 0, err
	}

	roleName := fmt.Sprintf("role:%s", strings.ToLower(role))
	if err := s.ensureGrouping(actor, roleName); err != nil {
		return "", 0, err
	}
	return actor, userID, nil
}

func (s *ServiceImpl) roleForUser(ctx context.Context, userID snowflake.ID) (string, error) {
	var row UserRole
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return "", err
	}
	if row.Role == "" {
		return "", ErrForbidden
	}
	return row.Role, nil
}

func (s *ServiceImpl) ensureGrouping(subject, roleName string) error {
	has, err := s.enforcer.HasGroupingPolicy(subject, roleName)
	if err != nil {
		return err
	}
	if !has {
		if _, err := s.enforcer.AddGroupingPolicy(subject, roleName); err != nil {
			return err
		}
	}
	return nil
}
