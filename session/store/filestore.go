package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

var _ Store = (*FileStore)(nil)

// FileStore persists slots as a JSON object in a single file, so a session
// survives process restarts. Writes go through on every Set/Delete.
type FileStore struct {
	path  string
	lock  sync.RWMutex
	slots map[string]string
}

// NewFileStore opens (or creates) the store at path. The parent directory
// is created if missing. A corrupt file is an error rather than silently
// starting an empty session.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFileStore] MkdirAll")
	}

	fs := &FileStore{path: path, slots: make(map[string]string)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fs, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[NewFileStore] ReadFile")
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &fs.slots); err != nil {
			return nil, errors.Wrap(err, "[NewFileStore] Unmarshal")
		}
	}
	return fs, nil
}

func (fs *FileStore) Get(key string) (string, bool) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	value, ok := fs.slots[key]
	return value, ok
}

func (fs *FileStore) Set(key, value string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.slots[key] = value
	return fs.flush()
}

func (fs *FileStore) Delete(key string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	if _, ok := fs.slots[key]; !ok {
		return nil
	}
	delete(fs.slots, key)
	return fs.flush()
}

// flush writes the full slot map. Tokens are credentials, so the file is
// kept owner-readable only.
func (fs *FileStore) flush() error {
	data, err := json.MarshalIndent(fs.slots, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileStore.flush] Marshal")
	}
	if err := os.WriteFile(fs.path, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileStore.flush] WriteFile")
	}
	return nil
}
