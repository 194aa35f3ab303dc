package storefakes

import (
	"sync"

	"github.com/prodflow/prodflow-go/session/store"
)

var _ store.Store = (*FakeStore)(nil)

// FakeStore is an in-memory store.Store for tests and for callers that
// want a session scoped to the process lifetime.
type FakeStore struct {
	slots map[string]string
	lock  sync.RWMutex
}

func NewFakeStore() *FakeStore {
	return &FakeStore{slots: make(map[string]string)}
}

func (fs *FakeStore) Get(key string) (string, bool) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	value, ok := fs.slots[key]
	return value, ok
}

func (fs *FakeStore) Set(key, value string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.slots[key] = value
	return nil
}

func (fs *FakeStore) Delete(key string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	delete(fs.slots, key)
	return nil
}

// Len reports how many slots are populated. Handy for idempotency checks.
func (fs *FakeStore) Len() int {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return len(fs.slots)
}
