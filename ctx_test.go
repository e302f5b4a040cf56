package session_test

import (
	"context"
	"testing"

	session "github.com/farmvine/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContext(t *testing.T) {
	ctx := context.Background()

	_, ok := session.FromContext(ctx)
	assert.False(t, ok)

	user := &session.User{ID: "usr-1"}
	ctx = session.WithContext(ctx, user)

	got, ok := session.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user, got)
}

func TestSnapshotContext(t *testing.T) {
	ctx := context.Background()

	_, ok := session.SnapshotFromContext(ctx)
	assert.False(t, ok)

	snap := session.Snapshot{
		User:            &session.User{ID: "usr-1"},
		CurrentRole:     session.RoleFarmer,
		IsAuthenticated: true,
	}
	ctx = session.WithSnapshotContext(ctx, snap)

	got, ok := session.SnapshotFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, snap, got)
}

func TestHasRoleInContext(t *testing.T) {
	t.Run("no snapshot", func(t *testing.T) {
		assert.False(t, session.HasRoleInContext(context.Background(), session.RoleBuyer))
	})

	t.Run("unauthenticated snapshot", func(t *testing.T) {
		ctx := session.WithSnapshotContext(context.Background(), session.Snapshot{
			CurrentRole: session.RoleBuyer,
		})
		assert.False(t, session.HasRoleInContext(ctx, session.RoleBuyer))
	})

	t.Run("matching active role", func(t *testing.T) {
		ctx := session.WithSnapshotContext(context.Background(), session.Snapshot{
			IsAuthenticated: true,
			CurrentRole:     session.RoleOfficer,
		})
		assert.True(t, session.HasRoleInContext(ctx, session.RoleOfficer))
		assert.False(t, session.HasRoleInContext(ctx, session.RoleFarmer))
	})
}
