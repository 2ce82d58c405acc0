package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/javajoker/reelshop/internal/ai"
	"github.com/javajoker/reelshop/internal/config"
	"github.com/javajoker/reelshop/internal/models"
	"github.com/javajoker/reelshop/internal/scheduler"
	"github.com/javajoker/reelshop/internal/store"
)

func init() {
	models.PasswordCost = bcrypt.MinCost
}

const testDevice = "device-1"

type fixture struct {
	store     *store.Store
	persister *store.MemoryPersister
	scheduler *scheduler.Scheduler
	ai        *ai.Fake
	svc       *Services

	mu  sync.Mutex
	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		persister: store.NewMemoryPersister(),
		scheduler: scheduler.New(),
		ai:        ai.NewFake(),
		now:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.store = store.Open(store.SnapshotKey(testDevice), f.persister, store.Seed, nil)

	media, err := NewMediaService(&config.Config{
		Media: config.MediaConfig{LocalDir: t.TempDir(), LocalBaseURL: "http://media.test/uploads"},
	})
	require.NoError(t, err)

	f.svc = New(Deps{
		DeviceID:  testDevice,
		Store:     f.store,
		Scheduler: f.scheduler,
		Media:     media,
		AI:        f.ai,
		AIConfig:  config.AIConfig{VideoPollInterval: 1, VideoMaxPollAttempt: 3},
		Clock:     f.clock,
	})
	t.Cleanup(func() {
		f.svc.Close()
		f.scheduler.Stop()
	})
	return f
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fixture) login(t *testing.T, identifier string) *Me {
	t.Helper()
	me, err := f.svc.Session.Login(&LoginRequest{Identifier: identifier, Password: store.SeedPassword})
	require.NoError(t, err)
	return me
}

func (f *fixture) loginOwner(t *testing.T) *Me {
	return f.login(t, "owner@atelier.example")
}

func (f *fixture) loginRep(t *testing.T) *Me {
	return f.login(t, "mert@atelier.example")
}

func (f *fixture) loginCustomer(t *testing.T) *Me {
	return f.login(t, "elif@example.com")
}

// state returns a deep copy of the tree via the codec.
func (f *fixture) state(t *testing.T) *store.AppState {
	t.Helper()
	var data []byte
	var err error
	f.store.View(func(st *store.AppState) { data, err = store.Serialize(st) })
	require.NoError(t, err)
	st, err := store.Deserialize(data)
	require.NoError(t, err)
	return st
}

func (f *fixture) user(t *testing.T, id string) models.User {
	t.Helper()
	var u models.User
	f.store.View(func(st *store.AppState) {
		if found := st.User(id); found != nil {
			u = *found
		}
	})
	require.NotEmpty(t, u.ID, "user %s", id)
	return u
}

func float(v float64) *float64 {
	return &v
}
