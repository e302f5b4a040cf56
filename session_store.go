package session

import (
	"encoding/json"

	"github.com/goliatone/go-errors"
)

// SessionStore reads and writes the current user record and the active
// role. Both live in their own storage entries so the active role survives
// reloads independently of the identity record.
type SessionStore struct {
	storage Storage
	logger  Logger
}

// NewSessionStore returns a SessionStore backed by the given storage.
func NewSessionStore(storage Storage, logger Logger) *SessionStore {
	if logger == nil {
		logger = defLogger{}
	}
	return &SessionStore{storage: storage, logger: logger}
}

// SetUser persists the user record as JSON.
func (ss *SessionStore) SetUser(user *User) error {
	if user == nil {
		return ss.storage.Delete(StorageKeyUser)
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "unable to serialize user record")
	}
	return ss.storage.Set(StorageKeyUser, string(raw))
}

// User returns the persisted user record, or nil when none is stored or
// the stored JSON cannot be parsed. A corrupt record is not an error the
// caller can act on; it reads as "no session".
func (ss *SessionStore) User() *User {
	raw, ok := ss.storage.Get(StorageKeyUser)
	if !ok || raw == "" {
		return nil
	}

	user := &User{}
	if err := json.Unmarshal([]byte(raw), user); err != nil {
		ss.logger.Warn("session store: discarding unparseable user record: %v", err)
		return nil
	}
	return user
}

// SetActiveRole persists the active role.
func (ss *SessionStore) SetActiveRole(role Role) error {
	return ss.storage.Set(StorageKeyRole, string(role))
}

// ActiveRole returns the persisted active role, or "" when none is set.
func (ss *SessionStore) ActiveRole() Role {
	raw, _ := ss.storage.Get(StorageKeyRole)
	return Role(raw)
}

// Clear removes token, user, and role. Storage is effectively
// single-threaded client state, so three sequential removals stand in for
// a transaction; the intent is all three or none.
func (ss *SessionStore) Clear() error {
	var firstErr error
	for _, key := range []string{StorageKeyToken, StorageKeyUser, StorageKeyRole} {
		if err := ss.storage.Delete(key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
