package session

import (
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Storage is the durable client-side key/value store backing the token,
// user, and active-role entries. Implementations live in the storage
// subpackage: in-memory for tests, a JSON file, and a sqlite-backed store
// for state that must survive process restarts.
type Storage interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
	Delete(key string) error
}

// Clock abstracts time.Now so expiry checks are testable.
type Clock func() time.Time

// Storage keys. Three independent entries, cleared together on logout.
const (
	StorageKeyToken = "farmvine.token"
	StorageKeyUser  = "farmvine.user"
	StorageKeyRole  = "farmvine.active_role"
)

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
