// internal/store/persister.go
package store

import (
	"errors"
	"sync"
)

// ErrNoSnapshot is returned by Load when nothing was saved under the key.
var ErrNoSnapshot = errors.New("no saved state")

// Persister is the durable side of a Store: one opaque payload per key.
type Persister interface {
	Load(key string) ([]byte, error)
	Save(key string, payload []byte) error
	Delete(key string) error
}

// MemoryPersister keeps snapshots in process memory.
type MemoryPersister struct {
	mu   sync.Mutex
	data map[string][]byte

	// SaveErr, when set, is returned by every Save.
	SaveErr error
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{data: make(map[string][]byte)}
}

func (p *MemoryPersister) Load(key string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	payload, ok := p.data[key]
	if !ok {
		return nil, ErrNoSnapshot
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func (p *MemoryPersister) Save(key string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.SaveErr != nil {
		return p.SaveErr
	}
	stored := make([]byte, len(payload))
	copy(stored, payload)
	p.data[key] = stored
	return nil
}

func (p *MemoryPersister) Delete(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.data, key)
	return nil
}
