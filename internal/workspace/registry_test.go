package workspace

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/javajoker/reelshop/internal/ai"
	"github.com/javajoker/reelshop/internal/models"
	"github.com/javajoker/reelshop/internal/scheduler"
	"github.com/javajoker/reelshop/internal/services"
	"github.com/javajoker/reelshop/internal/store"
)

func init() {
	models.PasswordCost = bcrypt.MinCost
}

func newRegistry(persister store.Persister) *Registry {
	return NewRegistry(Options{Persister: persister, AI: ai.NewFake()})
}

func TestGetReusesLoadedWorkspace(t *testing.T) {
	r := newRegistry(store.NewMemoryPersister())
	defer r.Close()

	first, err := r.Get("device-a")
	require.NoError(t, err)
	again, err := r.Get("device-a")
	require.NoError(t, err)
	other, err := r.Get("device-b")
	require.NoError(t, err)

	assert.Same(t, first, again)
	assert.NotSame(t, first, other)
	assert.Equal(t, store.SnapshotKey("device-a"), first.Store.Key())
	assert.Equal(t, 2, r.Len())
}

func TestEvictReloadsFromSnapshot(t *testing.T) {
	persister := store.NewMemoryPersister()
	r := newRegistry(persister)
	defer r.Close()

	ws, err := r.Get("device-a")
	require.NoError(t, err)
	_, err = ws.Services.Session.Login(&services.LoginRequest{Identifier: "elif@example.com", Password: store.SeedPassword})
	require.NoError(t, err)

	r.Evict("device-a")
	assert.Equal(t, 0, r.Len())
	r.Evict("device-a")

	reloaded, err := r.Get("device-a")
	require.NoError(t, err)
	assert.NotSame(t, ws, reloaded)

	me, err := reloaded.Services.Session.Me()
	require.NoError(t, err)
	assert.Equal(t, store.SeedCustomerID, me.User.ID)
}

func TestWorkspacesAreIsolated(t *testing.T) {
	r := newRegistry(store.NewMemoryPersister())
	defer r.Close()

	a, err := r.Get("device-a")
	require.NoError(t, err)
	b, err := r.Get("device-b")
	require.NoError(t, err)

	_, err = a.Services.Session.Login(&services.LoginRequest{Identifier: "elif@example.com", Password: store.SeedPassword})
	require.NoError(t, err)

	_, err = b.Services.Session.Me()
	assert.ErrorIs(t, err, services.ErrNotLoggedIn)
}

func TestClosedRegistryRejectsGet(t *testing.T) {
	r := newRegistry(store.NewMemoryPersister())
	_, err := r.Get("device-a")
	require.NoError(t, err)

	r.Close()
	r.Close()

	_, err = r.Get("device-a")
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 0, r.Len())
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func startDiscount(t *testing.T, ws *Workspace, duration time.Duration) {
	t.Helper()
	_, err := ws.Services.Session.Login(&services.LoginRequest{Identifier: "owner@atelier.example", Password: store.SeedPassword})
	require.NoError(t, err)
	require.NoError(t, ws.Services.Live.StartStream("ls-summer"))
	_, err = ws.Services.Live.SetDiscount("ls-summer", &services.SetDiscountRequest{
		ProductID:          "p-wrap-dress",
		DiscountPercentage: 10,
		DurationMinutes:    duration.Minutes(),
	})
	require.NoError(t, err)
}

func TestReloadClearsLapsedDiscount(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	r := NewRegistry(Options{Persister: store.NewMemoryPersister(), AI: ai.NewFake(), Clock: clock.Now})
	defer r.Close()

	ws, err := r.Get("device-a")
	require.NoError(t, err)
	startDiscount(t, ws, 10*time.Minute)

	r.Evict("device-a")
	clock.Advance(time.Hour)

	reloaded, err := r.Get("device-a")
	require.NoError(t, err)
	view, err := reloaded.Services.Live.Stream("ls-summer")
	require.NoError(t, err)
	assert.Nil(t, view.ActiveDiscount)
	assert.False(t, r.scheduler.Pending(scheduler.Key("device-a", "ls-summer")))
}

func TestReloadRearmsPendingDiscount(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	r := NewRegistry(Options{Persister: store.NewMemoryPersister(), AI: ai.NewFake(), Clock: clock.Now})
	defer r.Close()

	ws, err := r.Get("device-a")
	require.NoError(t, err)
	startDiscount(t, ws, 200*time.Millisecond)

	r.Evict("device-a")
	reloaded, err := r.Get("device-a")
	require.NoError(t, err)

	view, err := reloaded.Services.Live.Stream("ls-summer")
	require.NoError(t, err)
	require.NotNil(t, view.ActiveDiscount)
	assert.Equal(t, "p-wrap-dress", view.ActiveDiscount.ProductID)
	assert.True(t, r.scheduler.Pending(scheduler.Key("device-a", "ls-summer")))

	assert.Eventually(t, func() bool {
		view, err := reloaded.Services.Live.Stream("ls-summer")
		return err == nil && view.ActiveDiscount == nil
	}, 2*time.Second, 10*time.Millisecond)
}
