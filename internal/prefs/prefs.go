// Package prefs persists Otter user settings as string key-value pairs.
// Settings live in ~/.config/otter/settings.toml by default, or in a SQLite
// database when the sqlite backend is selected.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// Store is a durable string key-value store. Get never fails; a missing key
// reports ok=false.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// Backend names a Store implementation.
const (
	BackendTOML   = "toml"
	BackendSQLite = "sqlite"
)

const (
	defaultPrefsPath = "~/.config/otter/settings.toml"
	defaultDBPath    = "~/.config/otter/settings.db"
)

// DefaultPath returns the default settings path for the backend.
func DefaultPath(backend string) string {
	if backend == BackendSQLite {
		return defaultDBPath
	}
	return defaultPrefsPath
}

// Open returns the Store for backend at path. An empty path uses the
// backend default.
func Open(backend, path string) (Store, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath(backend)
	}
	switch backend {
	case BackendTOML, "":
		return OpenFile(path)
	case BackendSQLite:
		return OpenSQL(path)
	default:
		return nil, fmt.Errorf("unknown settings backend %q", backend)
	}
}

// FileStore keeps settings in a flat TOML file and rewrites it on every Set.
type FileStore struct {
	mu          sync.RWMutex
	path        string
	values      map[string]string
	quarantined string
}

var _ Store = (*FileStore)(nil)

// OpenFile loads the TOML file at path. Missing or unreadable files start
// empty so a damaged file never blocks startup. A file that fails to parse is
// renamed to path + ".bad" first so the next Set cannot overwrite it.
func OpenFile(path string) (*FileStore, error) {
	resolved, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	fs := &FileStore{path: resolved, values: make(map[string]string)}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fs, nil
		}
		return fs, nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fs, nil // Graceful degradation
	}

	var raw map[string]any
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		bad := resolved + ".bad"
		if err := os.Rename(resolved, bad); err != nil {
			return nil, fmt.Errorf("set aside unreadable settings %s: %w", resolved, err)
		}
		fs.quarantined = bad
		return fs, nil
	}
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			fs.values[k] = val
		default:
			fs.values[k] = fmt.Sprint(val)
		}
	}
	return fs, nil
}

// Quarantined returns where an unparsable settings file was moved, or "".
func (f *FileStore) Quarantined() string {
	return f.quarantined
}

// Path returns the resolved file path.
func (f *FileStore) Path() string {
	return f.path
}

// Get implements Store.
func (f *FileStore) Get(key string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	return v, ok
}

// Set implements Store.
func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return f.save()
}

// Delete implements Store.
func (f *FileStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; !ok {
		return nil
	}
	delete(f.values, key)
	return f.save()
}

// Close implements Store.
func (f *FileStore) Close() error {
	return nil
}

func (f *FileStore) save() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(f.values)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	// Write then rename so a crash never leaves a half-written file.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, bytes, 0o600); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
