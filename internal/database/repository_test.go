package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/reelshop/internal/config"
	"github.com/javajoker/reelshop/internal/store"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Initialize(config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
		LogLevel:   "silent",
	})
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db))
	t.Cleanup(func() { Close(db) })
	return db
}

func TestSnapshotRepositoryUpsert(t *testing.T) {
	repo := NewSnapshotRepository(setupTestDB(t))
	key := store.SnapshotKey("dev-1")

	_, err := repo.Load(key)
	assert.ErrorIs(t, err, store.ErrNoSnapshot)

	require.NoError(t, repo.Save(key, []byte(`{"v":1}`)))
	require.NoError(t, repo.Save(key, []byte(`{"v":2}`)))

	payload, err := repo.Load(key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(payload))

	require.NoError(t, repo.Delete(key))
	_, err = repo.Load(key)
	assert.ErrorIs(t, err, store.ErrNoSnapshot)
}

func TestStoreOnSnapshotRepository(t *testing.T) {
	repo := NewSnapshotRepository(setupTestDB(t))
	key := store.SnapshotKey("dev-1")

	s := store.Open(key, repo, store.Seed, nil)
	require.NoError(t, s.Update("session.login", func(st *store.AppState) error {
		st.CurrentUserID = store.SeedBrandOwnerID
		st.LikedProductIDs.Add("p-knit-top")
		return nil
	}))

	reopened := store.Open(key, repo, store.NewState, nil)
	reopened.View(func(st *store.AppState) {
		assert.Equal(t, store.SeedBrandOwnerID, st.CurrentUserID)
		assert.True(t, st.LikedProductIDs.Has("p-knit-top"))
		assert.Len(t, st.Products, 3)
	})
}

func TestDeviceRepositoryForget(t *testing.T) {
	db := setupTestDB(t)
	devices := NewDeviceRepository(db)
	snapshots := NewSnapshotRepository(db)

	device, err := devices.Create("iPhone", "Mozilla/5.0")
	require.NoError(t, err)
	require.NoError(t, devices.Touch(device.ID))

	found, err := devices.Get(device.ID)
	require.NoError(t, err)
	assert.Equal(t, "iPhone", found.Name)

	require.NoError(t, snapshots.Save(store.SnapshotKey(device.ID), []byte(`{}`)))
	require.NoError(t, devices.Forget(device.ID))

	_, err = devices.Get(device.ID)
	assert.ErrorIs(t, err, ErrDeviceNotFound)
	_, err = snapshots.Load(store.SnapshotKey(device.ID))
	assert.ErrorIs(t, err, store.ErrNoSnapshot)

	assert.ErrorIs(t, devices.Forget(device.ID), ErrDeviceNotFound)
}
