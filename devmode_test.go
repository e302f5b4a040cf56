package session_test

import (
	"context"
	"testing"
	"time"

	session "github.com/farmvine/go-session"
	"github.com/farmvine/go-session/fixture"
	"github.com/farmvine/go-session/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The fixture responder slots in as the dispatcher transport; everything
// above the dispatcher runs the same code it runs against a live backend.
func TestDevMode_FullSessionLifecycle(t *testing.T) {
	responder, err := fixture.NewResponder(fixture.WithLatency(0))
	require.NoError(t, err)

	mem := storage.NewMemory()
	tokens := session.NewTokenStore(mem)
	sessions := session.NewSessionStore(mem, nil)

	dispatcher := session.NewDispatcher(&session.Config{
		BaseURL:        "http://localhost:4000",
		APIPrefix:      "/api/v1",
		RequestTimeout: 5 * time.Second,
	}, tokens, session.WithTransport(responder))

	visited := []string{}
	gateway := session.NewGateway(dispatcher, tokens, sessions,
		session.WithNavigator(func(path string) { visited = append(visited, path) }),
	)

	ctx := context.Background()

	user, err := gateway.Register(ctx, session.RegisterPayload{
		FullName: "Kofi Boateng",
		Phone:    "0501234567",
		Password: "longenough",
		Roles:    []session.Role{session.RoleFarmer, session.RoleBuyer},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)

	assert.True(t, gateway.IsAuthenticated())
	assert.Equal(t, session.RoleFarmer, sessions.ActiveRole())
	assert.Equal(t, session.TokenStateValid, gateway.CheckExpiry())

	require.NoError(t, gateway.SwitchRole(ctx, session.RoleBuyer))
	assert.Equal(t, session.RoleBuyer, sessions.ActiveRole())

	updated, err := gateway.UpdateProfile(ctx, session.ProfileUpdate{Region: "Ashanti"})
	require.NoError(t, err)
	assert.Equal(t, "Ashanti", updated.Region)
	assert.Equal(t, "Ashanti", sessions.User().Region)

	fresh, err := gateway.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, fresh.ID)

	gateway.Logout(ctx)
	assert.False(t, gateway.IsAuthenticated())
	assert.Equal(t, []string{session.PathLogin}, visited)
}

func TestDevMode_ResourceCallsThroughDispatcher(t *testing.T) {
	responder, err := fixture.NewResponder(fixture.WithLatency(0))
	require.NoError(t, err)

	mem := storage.NewMemory()
	tokens := session.NewTokenStore(mem)

	dispatcher := session.NewDispatcher(&session.Config{
		BaseURL:        "http://localhost:4000",
		APIPrefix:      "/api/v1",
		RequestTimeout: 5 * time.Second,
	}, tokens, session.WithTransport(responder))

	var page struct {
		Items []map[string]any `json:"items"`
		Total int              `json:"total"`
	}
	require.NoError(t, dispatcher.Get(context.Background(), "/products", &page))
	assert.NotEmpty(t, page.Items)
	assert.Equal(t, page.Total, len(page.Items))

	var created map[string]any
	err = dispatcher.Post(context.Background(), "/orders", map[string]any{"product_id": "prd-1001"}, &created)
	require.NoError(t, err)
	assert.Equal(t, "pending", created["status"])

	err = dispatcher.Get(context.Background(), "/orders/does-not-exist", nil)
	require.Error(t, err)
	assert.Equal(t, session.TextCodeNotFound, session.ClassifyStatus(404, session.ErrorEnvelope{}).TextCode)
}
