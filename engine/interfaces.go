package engine

import (
	"context"

	"rewardkit/core"
	"rewardkit/rewards"
	"rewardkit/user"
)

// Granter performs the in-game effect of one reward action and reports
// success or failure. The core never inspects how an action is granted.
type Granter interface {
	Grant(ctx context.Context, rec *user.Record, action rewards.Action) error
}

// Permissions answers permission checks against the host runtime.
type Permissions interface {
	Has(id core.UserID, permission string) bool
}

// RemindFunc delivers a claim reminder into the synchronous context.
// Implementations should hand off quickly; the sweep runs in the background.
type RemindFunc func(rec *user.Record)

// GranterFunc adapts a function to the Granter interface.
type GranterFunc func(ctx context.Context, rec *user.Record, action rewards.Action) error

func (f GranterFunc) Grant(ctx context.Context, rec *user.Record, action rewards.Action) error {
	return f(ctx, rec, action)
}

// PermissionsFunc adapts a function to the Permissions interface.
type PermissionsFunc func(id core.UserID, permission string) bool

func (f PermissionsFunc) Has(id core.UserID, permission string) bool {
	return f(id, permission)
}
