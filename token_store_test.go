package session_test

import (
	"testing"
	"time"

	session "github.com/farmvine/go-session"
	"github.com/farmvine/go-session/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return signed
}

func tokenExpiring(t *testing.T, exp time.Time) string {
	t.Helper()

	return signedToken(t, jwt.RegisteredClaims{
		Subject:   "usr-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
}

func TestTokenStore_RoundTrip(t *testing.T) {
	store := session.NewTokenStore(storage.NewMemory())

	assert.Equal(t, "", store.Token())

	require.NoError(t, store.SetToken("opaque-token"))
	assert.Equal(t, "opaque-token", store.Token())

	require.NoError(t, store.Clear())
	assert.Equal(t, "", store.Token())
}

func TestTokenStore_CheckExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	tests := []struct {
		name     string
		token    string
		expected session.TokenState
	}{
		{
			name:     "no token stored",
			token:    "",
			expected: session.TokenStateMissing,
		},
		{
			name:     "garbage token",
			token:    "not-a-jwt",
			expected: session.TokenStateMalformed,
		},
		{
			name:     "token without expiry claim",
			token:    signedToken(t, jwt.RegisteredClaims{Subject: "usr-1"}),
			expected: session.TokenStateMalformed,
		},
		{
			name:     "expired token",
			token:    tokenExpiring(t, now.Add(-time.Minute)),
			expected: session.TokenStateExpired,
		},
		{
			name:     "expiry exactly now",
			token:    tokenExpiring(t, now),
			expected: session.TokenStateExpired,
		},
		{
			name:     "future expiry",
			token:    tokenExpiring(t, now.Add(time.Hour)),
			expected: session.TokenStateValid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.NewTokenStore(storage.NewMemory(), session.WithTokenClock(clock))
			if tt.token != "" {
				require.NoError(t, store.SetToken(tt.token))
			}

			assert.Equal(t, tt.expected, store.CheckExpiry())
			assert.Equal(t, tt.expected == session.TokenStateValid, store.IsValid())
		})
	}
}

func TestTokenStore_CheckExpiryIsPure(t *testing.T) {
	now := time.Now()
	store := session.NewTokenStore(storage.NewMemory())

	expired := tokenExpiring(t, now.Add(-time.Hour))
	require.NoError(t, store.SetToken(expired))

	// Querying expiry must not reap the token; teardown is an explicit,
	// separate operation.
	assert.Equal(t, session.TokenStateExpired, store.CheckExpiry())
	assert.Equal(t, expired, store.Token())
}

func TestTokenStore_ExpiresAt(t *testing.T) {
	store := session.NewTokenStore(storage.NewMemory())

	_, ok := store.ExpiresAt()
	assert.False(t, ok, "no token stored")

	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	require.NoError(t, store.SetToken(tokenExpiring(t, exp)))

	got, ok := store.ExpiresAt()
	require.True(t, ok)
	assert.True(t, got.Equal(exp))
}

func TestTokenStore_SetTokenDoesNotValidate(t *testing.T) {
	store := session.NewTokenStore(storage.NewMemory())

	// Writes are accepted verbatim; the backend owns token validity.
	require.NoError(t, store.SetToken("whatever-the-server-issued"))
	assert.Equal(t, "whatever-the-server-issued", store.Token())
}
