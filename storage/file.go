package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	session "github.com/farmvine/go-session"
	"github.com/goliatone/go-errors"
)

// File is a Storage persisted as a single JSON document on disk, in the
// spirit of CLI credential caches. Every write rewrites the file through a
// temp-file rename so a crash never leaves a half-written store behind.
type File struct {
	mu      sync.Mutex
	path    string
	entries map[string]string
}

var _ session.Storage = (*File)(nil)

// NewFile loads (or initializes) the store at path. A missing file is an
// empty store; an unreadable one is an error the host must deal with.
func NewFile(path string) (*File, error) {
	f := &File{
		path:    path,
		entries: map[string]string{},
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "unable to read storage file")
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &f.entries); err != nil {
			return nil, errors.Wrap(err, errors.CategoryOperation, "storage file is corrupt")
		}
	}

	return f, nil
}

// Get implements session.Storage.
func (f *File) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.entries[key]
	return value, ok
}

// Set implements session.Storage.
func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
	return f.flush()
}

// Delete implements session.Storage.
func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return f.flush()
}

// flush must be called with the lock held.
func (f *File) flush() error {
	raw, err := json.MarshalIndent(f.entries, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "unable to serialize storage")
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".storage-*")
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "unable to create storage temp file")
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, errors.CategoryOperation, "unable to write storage file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, errors.CategoryOperation, "unable to close storage temp file")
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, errors.CategoryOperation, "unable to replace storage file")
	}

	return nil
}
