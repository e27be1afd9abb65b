package authorization

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Scope is the visibility granted to an actor for one report object:
// either everything, or only records owned by the actor.
type Scope struct {
	All         bool
	OwnerUserID snowflake.ID
}

func ScopeAll() Scope { return Scope{All: true} }

func OwnedOnly(userID snowflake.ID) Scope { return Scope{OwnerUserID: userID} }

type Service interface {
	// ResolveScope answers "all records" vs "only records owned by this
	// actor" for a report object, or denies access entirely.
	ResolveScope(ctx context.Context, actor string, object string) (Scope, error)

	// Authorize gates a single action on an object.
	Authorize(ctx context.Context, actor string, object string, action string) error
}

// Objects guarded by the billing engine.
const (
	ObjectReconciliation = "reconciliation"
	ObjectCommission     = "commission"
	ObjectBillingPeriod  = "billing_period"
	ObjectIncome         = "income"
)

// Actions.
const (
	ActionView        = "view"
	ActionViewAll     = "view_all"
	ActionMaterialize = "materialize"
	ActionDelete      = "delete"
	ActionRecord      = "record"
)
