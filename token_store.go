package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenState is the result of a pure expiry check.
type TokenState string

const (
	// TokenStateMissing means no token is stored at all.
	TokenStateMissing TokenState = "missing"
	// TokenStateMalformed means a token is stored but its expiry claim
	// could not be decoded.
	TokenStateMalformed TokenState = "malformed"
	// TokenStateExpired means the decoded expiry is not in the future.
	TokenStateExpired TokenState = "expired"
	// TokenStateValid means the token exists and has not yet expired.
	TokenStateValid TokenState = "valid"
)

// TokenStore reads and writes the bearer token and decodes its embedded
// expiry claim without a network call. The token is opaque to the client:
// it is never verified, only its exp claim is read.
type TokenStore struct {
	storage Storage
	now     Clock
	logger  Logger
}

// TokenStoreOption customizes TokenStore construction.
type TokenStoreOption func(*TokenStore)

// WithTokenClock injects a custom clock (useful for tests).
func WithTokenClock(clock Clock) TokenStoreOption {
	return func(ts *TokenStore) {
		if clock != nil {
			ts.now = clock
		}
	}
}

// WithTokenLogger overrides the logger.
func WithTokenLogger(logger Logger) TokenStoreOption {
	return func(ts *TokenStore) {
		if logger != nil {
			ts.logger = logger
		}
	}
}

// NewTokenStore returns a TokenStore backed by the given storage.
func NewTokenStore(storage Storage, opts ...TokenStoreOption) *TokenStore {
	ts := &TokenStore{
		storage: storage,
		now:     time.Now,
		logger:  defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}
	return ts
}

// SetToken persists the token. No validation is performed at write time:
// the backend is the authority on what it issued.
func (ts *TokenStore) SetToken(token string) error {
	return ts.storage.Set(StorageKeyToken, token)
}

// Token returns the stored token, or "" when none is present.
func (ts *TokenStore) Token() string {
	raw, _ := ts.storage.Get(StorageKeyToken)
	return raw
}

// Clear removes the stored token.
func (ts *TokenStore) Clear() error {
	return ts.storage.Delete(StorageKeyToken)
}

// ExpiresAt decodes the expiry claim of the stored token. The second
// return is false when no token is stored or the claim cannot be read.
func (ts *TokenStore) ExpiresAt() (time.Time, bool) {
	raw := ts.Token()
	if raw == "" {
		return time.Time{}, false
	}
	return decodeExpiry(raw)
}

// CheckExpiry is a pure query over the stored token. It never mutates
// state; reaping an expired session is the Gateway's explicit action.
func (ts *TokenStore) CheckExpiry() TokenState {
	raw := ts.Token()
	if raw == "" {
		return TokenStateMissing
	}

	exp, ok := decodeExpiry(raw)
	if !ok {
		ts.logger.Debug("token store: could not decode expiry claim")
		return TokenStateMalformed
	}

	if !exp.After(ts.now()) {
		return TokenStateExpired
	}
	return TokenStateValid
}

// IsValid reports whether a token is present and its decoded expiry is
// strictly in the future. Decode failures count as invalid; this method
// never returns an error to callers.
func (ts *TokenStore) IsValid() bool {
	return ts.CheckExpiry() == TokenStateValid
}

// decodeExpiry reads the exp claim without verifying the signature; the
// client has no key material and treats the token as opaque otherwise.
func decodeExpiry(raw string) (time.Time, bool) {
	parser := jwt.NewParser()

	claims := &jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
