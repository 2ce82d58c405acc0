// internal/store/store.go
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/reelshop/internal/metrics"
)

// KeyPrefix prefixes the snapshot key of every device.
const KeyPrefix = "app-state:"

// SnapshotKey returns the durable key for a device.
func SnapshotKey(deviceID string) string {
	return KeyPrefix + deviceID
}

// Change is emitted to subscribers after every committed update.
type Change struct {
	Version uint64    `json:"version"`
	Reason  string    `json:"reason"`
	At      time.Time `json:"at"`
}

// Store owns one AppState. All writes go through Update, which serializes
// them, persists a snapshot and then notifies subscribers.
type Store struct {
	key       string
	persister Persister
	metrics   *metrics.AppMetrics
	logger    *logrus.Entry

	mu      sync.Mutex
	state   *AppState
	version uint64

	subMu       sync.RWMutex
	nextSubID   uint64
	subscribers map[uint64]func(Change)
}

// Open loads the snapshot stored under key. A missing or unreadable snapshot
// falls back to seed.
func Open(key string, persister Persister, seed func() *AppState, m *metrics.AppMetrics) *Store {
	s := &Store{
		key:         key,
		persister:   persister,
		metrics:     m,
		logger:      logrus.WithField("snapshot_key", key),
		subscribers: make(map[uint64]func(Change)),
	}
	s.state = s.load(seed)
	return s
}

func (s *Store) load(seed func() *AppState) *AppState {
	payload, err := s.persister.Load(s.key)
	if err != nil {
		if !errors.Is(err, ErrNoSnapshot) {
			s.logger.WithError(err).Warn("Failed to read saved state, starting from seed data")
		}
		return seed()
	}

	state, err := Deserialize(payload)
	if err != nil {
		s.logger.WithError(err).Warn("Saved state is corrupt, starting from seed data")
		return seed()
	}
	return state
}

func (s *Store) Key() string {
	return s.key
}

func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// View runs fn with read access to the state. fn must not keep references
// into the tree after it returns.
func (s *Store) View(fn func(*AppState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// Update runs fn with write access to the state. fn must leave the state
// untouched when it returns an error; nothing is saved or announced then.
func (s *Store) Update(reason string, fn func(*AppState) error) error {
	change, err := s.commit(reason, fn)
	if err != nil {
		return err
	}

	s.metrics.RecordCommit(context.Background(), reason)
	s.notify(change)
	return nil
}

// commit applies fn and saves the tree under the lock. The lock is released
// even when fn panics.
func (s *Store) commit(reason string, fn func(*AppState) error) (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.state); err != nil {
		return Change{}, err
	}
	s.version++
	s.persist()
	return Change{Version: s.version, Reason: reason, At: time.Now().UTC()}, nil
}

// persist writes the current tree. Failures are logged and dropped.
func (s *Store) persist() {
	payload, err := Serialize(s.state)
	if err == nil {
		err = s.persister.Save(s.key, payload)
	}
	if err != nil {
		s.logger.WithError(err).Error("Failed to save state snapshot")
		s.metrics.RecordSaveFailure(context.Background())
	}
}

// Purge deletes the durable snapshot. The in-memory tree is left alone.
func (s *Store) Purge() {
	if err := s.persister.Delete(s.key); err != nil {
		s.logger.WithError(err).Error("Failed to purge state snapshot")
	}
}

// Subscribe registers fn for change events and returns its cancel func.
// fn runs on the committing goroutine.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.subscribers[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) notify(change Change) {
	s.subMu.RLock()
	subs := make([]func(Change), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range subs {
		fn(change)
	}
}
