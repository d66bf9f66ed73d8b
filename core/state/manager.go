package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"

	"passhub/storage"
)

// Manager mediates every engine's access to the key-value store. Writes made
// inside Execute are buffered in an overlay and flushed only when the wrapped
// call succeeds, giving each buy/sell/subscribe call all-or-nothing semantics.
//
// Calls are serialized with a single mutex: the engine has no suspension
// points inside a call, so holding the lock for the duration of one Execute or
// View is enough to give every call a consistent snapshot.
type Manager struct {
	db storage.Database

	mu      sync.Mutex
	overlay map[string][]byte
	deleted map[string]bool
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

// Execute runs fn against the buffered overlay and commits atomically when fn
// succeeds. Any error from fn discards every write fn made.
func (m *Manager) Execute(fn func() error) error {
	if m == nil || m.db == nil {
		return errors.New("state: manager not configured")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overlay = make(map[string][]byte)
	m.deleted = make(map[string]bool)
	defer func() {
		m.overlay = nil
		m.deleted = nil
	}()
	if err := fn(); err != nil {
		return err
	}
	for key := range m.deleted {
		if err := m.db.Delete([]byte(key)); err != nil {
			return fmt.Errorf("state: flush delete: %w", err)
		}
	}
	for key, value := range m.overlay {
		if err := m.db.Put([]byte(key), value); err != nil {
			return fmt.Errorf("state: flush write: %w", err)
		}
	}
	return nil
}

// View runs fn under the same serialization as Execute but discards any
// writes, making it safe for read-only queries.
func (m *Manager) View(fn func() error) error {
	if m == nil || m.db == nil {
		return errors.New("state: manager not configured")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overlay = make(map[string][]byte)
	m.deleted = make(map[string]bool)
	defer func() {
		m.overlay = nil
		m.deleted = nil
	}()
	return fn()
}

func (m *Manager) rawGet(key []byte) ([]byte, bool, error) {
	if m.deleted != nil && m.deleted[string(key)] {
		return nil, false, nil
	}
	if m.overlay != nil {
		if value, ok := m.overlay[string(key)]; ok {
			return value, true, nil
		}
	}
	value, err := m.db.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (m *Manager) rawPut(key []byte, value []byte) error {
	if m.overlay != nil {
		delete(m.deleted, string(key))
		m.overlay[string(key)] = append([]byte{}, value...)
		return nil
	}
	return m.db.Put(key, value)
}

func (m *Manager) rawDelete(key []byte) error {
	if m.overlay != nil {
		delete(m.overlay, string(key))
		m.deleted[string(key)] = true
		return nil
	}
	return m.db.Delete(key)
}

// KVGet decodes the RLP value stored under key into out. The boolean reports
// whether the key was present.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	value, ok, err := m.rawGet(key)
	if err != nil || !ok {
		return false, err
	}
	if err := rlp.DecodeBytes(value, out); err != nil {
		return false, fmt.Errorf("state: decode %q: %w", key, err)
	}
	return true, nil
}

// KVPut stores the RLP encoding of value under key.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode %q: %w", key, err)
	}
	return m.rawPut(key, encoded)
}

// KVDelete removes the key if present.
func (m *Manager) KVDelete(key []byte) error {
	return m.rawDelete(key)
}

// ParamStoreSet persists a raw parameter payload under the supplied name.
func (m *Manager) ParamStoreSet(name string, value []byte) error {
	return m.rawPut(paramKey(name), value)
}

// ParamStoreGet loads a raw parameter payload.
func (m *Manager) ParamStoreGet(name string) ([]byte, bool, error) {
	return m.rawGet(paramKey(name))
}
