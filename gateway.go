package session

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
)

// NavigateFunc performs a full navigation to the given path. In a browser
// shell this replaces the location; CLI hosts may simply ignore it.
type NavigateFunc func(path string)

// Gateway performs the auth operations against the Dispatcher and keeps
// TokenStore and SessionStore synchronized as a side effect of each call.
type Gateway struct {
	dispatcher   *Dispatcher
	tokens       *TokenStore
	sessions     *SessionStore
	logger       Logger
	activitySink ActivitySink
	navigate     NavigateFunc
}

// GatewayOption customizes Gateway construction.
type GatewayOption func(*Gateway)

// WithGatewayLogger overrides the logger.
func WithGatewayLogger(logger Logger) GatewayOption {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func WithActivitySink(sink ActivitySink) GatewayOption {
	return func(g *Gateway) {
		g.activitySink = normalizeActivitySink(sink)
	}
}

// WithNavigator sets the navigation hook fired on logout.
func WithNavigator(fn NavigateFunc) GatewayOption {
	return func(g *Gateway) {
		if fn != nil {
			g.navigate = fn
		}
	}
}

// NewGateway returns a Gateway wired to the given dispatcher and stores.
func NewGateway(dispatcher *Dispatcher, tokens *TokenStore, sessions *SessionStore, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		dispatcher:   dispatcher,
		tokens:       tokens,
		sessions:     sessions,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		navigate:     func(string) {},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// Register creates an account, stores the issued token and the returned
// identity, and applies the default-role rule. The payload must carry at
// least one role; beyond presence the server is the validator.
func (g *Gateway) Register(ctx context.Context, payload RegisterPayload) (*User, error) {
	if err := payload.Validate(); err != nil {
		return nil, g.asValidationError(err)
	}

	if normalized, err := NormalizePhone(payload.Phone); err == nil {
		payload.Phone = normalized
	}

	var result AuthResult
	if err := g.dispatcher.Post(ctx, "/auth/register", payload, &result); err != nil {
		g.emit(ctx, ActivityEventRegisterFailure, "", "", map[string]any{"error": err.Error()})
		return nil, err
	}

	if err := g.persistLogin(result); err != nil {
		return nil, err
	}

	g.emit(ctx, ActivityEventRegisterSuccess, result.User.ID, g.sessions.ActiveRole(), nil)
	return result.User, nil
}

// Login authenticates with phone number and password. On success the token
// is stored, then the user; the active role is set to user.Roles[0] unless
// a role the user holds is already persisted, so an earlier choice survives
// re-login but never leaks across accounts.
func (g *Gateway) Login(ctx context.Context, creds Credentials) (*User, error) {
	if err := creds.Validate(); err != nil {
		return nil, g.asValidationError(err)
	}

	if normalized, err := NormalizePhone(creds.Phone); err == nil {
		creds.Phone = normalized
	}

	var result AuthResult
	if err := g.dispatcher.Post(ctx, "/auth/login", creds, &result); err != nil {
		g.logger.Error("login failed: %v", err)
		g.emit(ctx, ActivityEventLoginFailure, "", "", map[string]any{"error": err.Error()})
		return nil, err
	}

	if err := g.persistLogin(result); err != nil {
		return nil, err
	}

	g.emit(ctx, ActivityEventLoginSuccess, result.User.ID, g.sessions.ActiveRole(), nil)
	return result.User, nil
}

// Logout clears token, user, and role, then triggers a full navigation to
// the unauthenticated entry point. Terminal and non-retriable; no network
// call is involved.
func (g *Gateway) Logout(ctx context.Context) {
	userID := ""
	if u := g.sessions.User(); u != nil {
		userID = u.ID
	}

	if err := g.sessions.Clear(); err != nil {
		g.logger.Warn("logout: storage clear reported: %v", err)
	}

	g.emit(ctx, ActivityEventLogout, userID, "", nil)
	g.navigate(PathLogin)
}

// SwitchRole makes one of the user's existing roles the active role. The
// UI should only offer valid roles; membership is still checked here so a
// stale UI cannot persist an unassigned role.
func (g *Gateway) SwitchRole(ctx context.Context, role Role) error {
	if !IsValidRole(role) {
		return ErrInvalidRole
	}

	user := g.sessions.User()
	if user == nil || !user.HasRole(role) {
		clone := ErrRoleNotAssigned.Clone()
		if clone == nil {
			return ErrRoleNotAssigned
		}
		return clone.WithMetadata(map[string]any{"role": role})
	}

	ack := struct {
		Token string `json:"token,omitempty"`
	}{}
	if err := g.dispatcher.Post(ctx, "/auth/switch-role", map[string]any{"role": role}, &ack); err != nil {
		return err
	}

	// The backend may reissue the token scoped to the new role; when it
	// does, the stored token is replaced wholesale, never mutated.
	if ack.Token != "" {
		if err := g.tokens.SetToken(ack.Token); err != nil {
			return err
		}
	}

	if err := g.sessions.SetActiveRole(role); err != nil {
		return err
	}

	g.emit(ctx, ActivityEventRoleSwitched, user.ID, role, nil)
	return nil
}

// UpdateProfile round-trips through the network and overwrites the local
// user with the server's authoritative copy. No optimistic mutation.
func (g *Gateway) UpdateProfile(ctx context.Context, fields ProfileUpdate) (*User, error) {
	if err := fields.Validate(); err != nil {
		return nil, g.asValidationError(err)
	}

	user := &User{}
	if err := g.dispatcher.Put(ctx, "/auth/profile", fields, user); err != nil {
		return nil, err
	}

	if err := g.sessions.SetUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// AddRole extends the user's role set server-side. The response fully
// replaces the local user record.
func (g *Gateway) AddRole(ctx context.Context, payload AddRolePayload) (*User, error) {
	if err := payload.Validate(); err != nil {
		return nil, g.asValidationError(err)
	}

	user := &User{}
	if err := g.dispatcher.Post(ctx, "/auth/add-role", payload, user); err != nil {
		return nil, err
	}

	if err := g.sessions.SetUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// CurrentUser fetches the authoritative identity record and refreshes the
// stored copy.
func (g *Gateway) CurrentUser(ctx context.Context) (*User, error) {
	user := &User{}
	if err := g.dispatcher.Get(ctx, "/auth/me", user); err != nil {
		return nil, err
	}

	if err := g.sessions.SetUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// IsAuthenticated is a pure status read: a user record exists and the
// stored token has not expired. It never mutates session state; expired
// sessions are collected by ReapSessionIfExpired at defined points.
func (g *Gateway) IsAuthenticated() bool {
	return g.sessions.User() != nil && g.tokens.IsValid()
}

// CheckExpiry exposes the token store's pure expiry query.
func (g *Gateway) CheckExpiry() TokenState {
	return g.tokens.CheckExpiry()
}

// ReapSessionIfExpired tears the session down when a token is present but
// no longer usable. Invoked at bootstrap and from the dispatcher's 401
// path rather than from arbitrary status reads.
func (g *Gateway) ReapSessionIfExpired(ctx context.Context) bool {
	state := g.tokens.CheckExpiry()
	if state != TokenStateExpired && state != TokenStateMalformed {
		return false
	}

	userID := ""
	if u := g.sessions.User(); u != nil {
		userID = u.ID
	}

	g.logger.Info("reaping session, token state=%s", state)
	if err := g.sessions.Clear(); err != nil {
		g.logger.Warn("session reap: storage clear reported: %v", err)
	}

	g.emit(ctx, ActivityEventSessionReaped, userID, "", map[string]any{"token_state": string(state)})
	g.navigate(PathLogin)
	return true
}

// TeardownOnUnauthorized returns the hook the Dispatcher fires on any 401:
// unconditional clear plus navigation to the login entry point. It is an
// interrupt, not a queued event; in-flight UI mutations are invalidated.
func (g *Gateway) TeardownOnUnauthorized() func() {
	return func() {
		if err := g.sessions.Clear(); err != nil {
			g.logger.Warn("unauthorized teardown: storage clear reported: %v", err)
		}
		g.navigate(PathLogin)
	}
}

// persistLogin stores token then user, then applies the default-role rule.
func (g *Gateway) persistLogin(result AuthResult) error {
	if result.Token == "" || result.User == nil {
		return errors.New("authentication response missing token or user", errors.CategoryBadInput).
			WithTextCode(TextCodeUnknownError).
			WithCode(errors.CodeInternal)
	}

	if err := g.tokens.SetToken(result.Token); err != nil {
		return err
	}
	if err := g.sessions.SetUser(result.User); err != nil {
		return err
	}

	// An earlier role choice survives only when the user actually holds
	// it; a role left behind by another account falls back to the
	// default so the active role is always one of the user's roles.
	if role := g.sessions.ActiveRole(); role == "" || !result.User.HasRole(role) {
		if err := g.sessions.SetActiveRole(result.User.DefaultRole()); err != nil {
			return err
		}
	}

	return nil
}

// asValidationError normalizes ozzo validation output into the taxonomy's
// ValidationError with a field-keyed error map.
func (g *Gateway) asValidationError(err error) error {
	if err == nil {
		return nil
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return err
	}

	return errors.Wrap(err, ErrValidation.Category, ErrValidation.Message).
		WithTextCode(ErrValidation.TextCode).
		WithCode(ErrValidation.Code).
		WithMetadata(map[string]any{"fields": FormatValidationErrorToMap(err)})
}

func (g *Gateway) emit(ctx context.Context, eventType ActivityEventType, userID string, role Role, metadata map[string]any) {
	sink := normalizeActivitySink(g.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		UserID:    userID,
		Role:      role,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil {
		g.logger.Warn("activity sink record error: %v", err)
	}
}
