package session

import (
	"context"
)

var userCtxKey = &contextKey{"user"}
var snapshotCtxKey = &contextKey{"snapshot"}

type contextKey struct {
	name string
}

// WithContext sets the User in the given context
func WithContext(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}

// WithSnapshotContext sets the session Snapshot in the given context
func WithSnapshotContext(ctx context.Context, snap Snapshot) context.Context {
	return context.WithValue(ctx, snapshotCtxKey, snap)
}

// SnapshotFromContext extracts the session Snapshot from the context
func SnapshotFromContext(ctx context.Context) (Snapshot, bool) {
	raw, ok := ctx.Value(snapshotCtxKey).(Snapshot)
	return raw, ok
}

// HasRoleInContext reports whether the context carries an authenticated
// snapshot whose active role matches.
func HasRoleInContext(ctx context.Context, role Role) bool {
	snap, ok := SnapshotFromContext(ctx)
	if !ok || !snap.IsAuthenticated {
		return false
	}
	return snap.CurrentRole == role
}
