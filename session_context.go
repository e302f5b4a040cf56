package session

import (
	"context"
	"sync"
)

// Snapshot is the session state the UI consumes. IsAuthenticated holds
// exactly when a user record exists and the stored token is valid;
// IsLoading is true only during bootstrap and in-flight login/register.
type Snapshot struct {
	User            *User
	CurrentRole     Role
	IsAuthenticated bool
	IsLoading       bool
}

// SessionContext is the process-wide reactive store. It is explicitly
// constructed and dependency-injected rather than an ambient singleton, so
// tests can run isolated instances side by side.
//
// Storage is the source of truth: the in-memory snapshot is refreshed from
// the stores after every mutating call, never computed from call results.
type SessionContext struct {
	mu       sync.RWMutex
	gateway  *Gateway
	tokens   *TokenStore
	sessions *SessionStore
	logger   Logger

	snapshot    Snapshot
	subscribers map[int]func(Snapshot)
	nextSubID   int
}

// SessionContextOption customizes SessionContext construction.
type SessionContextOption func(*SessionContext)

// WithSessionContextLogger overrides the logger.
func WithSessionContextLogger(logger Logger) SessionContextOption {
	return func(sc *SessionContext) {
		if logger != nil {
			sc.logger = logger
		}
	}
}

// NewSessionContext builds the store and runs the bootstrap read: expired
// sessions are reaped, then the snapshot is populated from storage.
// IsLoading drops to false exactly once, here; there is no re-entrant
// loading state afterwards except around login/register calls.
func NewSessionContext(gateway *Gateway, tokens *TokenStore, sessions *SessionStore, opts ...SessionContextOption) *SessionContext {
	sc := &SessionContext{
		gateway:     gateway,
		tokens:      tokens,
		sessions:    sessions,
		logger:      defLogger{},
		snapshot:    Snapshot{IsLoading: true},
		subscribers: map[int]func(Snapshot){},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sc)
		}
	}

	gateway.ReapSessionIfExpired(context.Background())
	sc.refreshFromStorage(false)

	return sc
}

// Snapshot returns the current session snapshot.
func (sc *SessionContext) Snapshot() Snapshot {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.snapshot
}

// Subscribe registers a listener called after every snapshot change. The
// returned function unsubscribes it.
func (sc *SessionContext) Subscribe(fn func(Snapshot)) func() {
	sc.mu.Lock()
	id := sc.nextSubID
	sc.nextSubID++
	sc.subscribers[id] = fn
	sc.mu.Unlock()

	return func() {
		sc.mu.Lock()
		delete(sc.subscribers, id)
		sc.mu.Unlock()
	}
}

// Login authenticates and refreshes the snapshot from storage.
func (sc *SessionContext) Login(ctx context.Context, creds Credentials) (*User, error) {
	sc.setLoading(true)
	user, err := sc.gateway.Login(ctx, creds)
	sc.refreshFromStorage(false)
	return user, err
}

// Register creates an account and refreshes the snapshot from storage.
func (sc *SessionContext) Register(ctx context.Context, payload RegisterPayload) (*User, error) {
	sc.setLoading(true)
	user, err := sc.gateway.Register(ctx, payload)
	sc.refreshFromStorage(false)
	return user, err
}

// Logout tears the session down and refreshes the snapshot.
func (sc *SessionContext) Logout(ctx context.Context) {
	sc.gateway.Logout(ctx)
	sc.refreshFromStorage(false)
}

// SwitchRole changes the active role and refreshes the snapshot.
func (sc *SessionContext) SwitchRole(ctx context.Context, role Role) error {
	err := sc.gateway.SwitchRole(ctx, role)
	sc.refreshFromStorage(false)
	return err
}

// UpdateProfile round-trips the profile and refreshes the snapshot.
func (sc *SessionContext) UpdateProfile(ctx context.Context, fields ProfileUpdate) (*User, error) {
	user, err := sc.gateway.UpdateProfile(ctx, fields)
	sc.refreshFromStorage(false)
	return user, err
}

// AddRole extends the role set and refreshes the snapshot.
func (sc *SessionContext) AddRole(ctx context.Context, payload AddRolePayload) (*User, error) {
	user, err := sc.gateway.AddRole(ctx, payload)
	sc.refreshFromStorage(false)
	return user, err
}

// Refresh re-fetches the identity record and refreshes the snapshot.
func (sc *SessionContext) Refresh(ctx context.Context) (*User, error) {
	user, err := sc.gateway.CurrentUser(ctx)
	sc.refreshFromStorage(false)
	return user, err
}

// Invalidate re-reads storage. The dispatcher's 401 teardown mutates
// storage from outside the mutators; hosts call this from that hook to
// bring the snapshot back in line.
func (sc *SessionContext) Invalidate() {
	sc.refreshFromStorage(false)
}

func (sc *SessionContext) setLoading(loading bool) {
	sc.mu.Lock()
	sc.snapshot.IsLoading = loading
	snapshot := sc.snapshot
	listeners := sc.listeners()
	sc.mu.Unlock()

	notify(listeners, snapshot)
}

// refreshFromStorage rebuilds the snapshot from the stores.
func (sc *SessionContext) refreshFromStorage(loading bool) {
	user := sc.sessions.User()
	authenticated := user != nil && sc.tokens.IsValid()

	role := Role("")
	if authenticated {
		role = sc.sessions.ActiveRole()
		if role == "" {
			role = user.DefaultRole()
		}
	}

	sc.mu.Lock()
	sc.snapshot = Snapshot{
		User:            user,
		CurrentRole:     role,
		IsAuthenticated: authenticated,
		IsLoading:       loading,
	}
	snapshot := sc.snapshot
	listeners := sc.listeners()
	sc.mu.Unlock()

	notify(listeners, snapshot)
}

// listeners must be called with the lock held.
func (sc *SessionContext) listeners() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(sc.subscribers))
	for _, fn := range sc.subscribers {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []func(Snapshot), snapshot Snapshot) {
	for _, fn := range listeners {
		if fn != nil {
			fn(snapshot)
		}
	}
}
