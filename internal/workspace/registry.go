// internal/workspace/registry.go
package workspace

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/reelshop/internal/ai"
	"github.com/javajoker/reelshop/internal/config"
	"github.com/javajoker/reelshop/internal/metrics"
	"github.com/javajoker/reelshop/internal/scheduler"
	"github.com/javajoker/reelshop/internal/services"
	"github.com/javajoker/reelshop/internal/store"
)

var ErrClosed = errors.New("workspace registry is closed")

// Workspace is the loaded state of one device and the services acting on it.
type Workspace struct {
	DeviceID string
	Store    *store.Store
	Services *services.Services
}

type Options struct {
	Persister store.Persister
	Seed      func() *store.AppState
	Media     *services.MediaService
	AI        ai.Client
	AIConfig  config.AIConfig
	Metrics   *metrics.AppMetrics
	Clock     services.Clock
}

// Registry loads device workspaces on first use and keeps them in memory.
// Every workspace shares one scheduler, so discount timers outlive requests.
type Registry struct {
	opts      Options
	scheduler *scheduler.Scheduler

	mu         sync.Mutex
	workspaces map[string]*Workspace
	closed     bool
}

func NewRegistry(opts Options) *Registry {
	if opts.Seed == nil {
		opts.Seed = store.Seed
	}
	return &Registry{
		opts:       opts,
		scheduler:  scheduler.New(),
		workspaces: make(map[string]*Workspace),
	}
}

// Get returns the workspace of deviceID, loading its snapshot if needed.
func (r *Registry) Get(deviceID string) (*Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if ws, ok := r.workspaces[deviceID]; ok {
		return ws, nil
	}

	st := store.Open(store.SnapshotKey(deviceID), r.opts.Persister, r.opts.Seed, r.opts.Metrics)
	ws := &Workspace{
		DeviceID: deviceID,
		Store:    st,
		Services: services.New(services.Deps{
			DeviceID:  deviceID,
			Store:     st,
			Scheduler: r.scheduler,
			Media:     r.opts.Media,
			AI:        r.opts.AI,
			AIConfig:  r.opts.AIConfig,
			Metrics:   r.opts.Metrics,
			Clock:     r.opts.Clock,
		}),
	}
	r.workspaces[deviceID] = ws
	r.opts.Metrics.WorkspaceLoaded(context.Background(), 1)

	logrus.WithFields(logrus.Fields{
		"device_id": deviceID,
		"version":   st.Version(),
	}).Info("Workspace loaded")
	return ws, nil
}

// Evict drops a loaded workspace and stops its background work. The next
// Get reloads it from its snapshot.
func (r *Registry) Evict(deviceID string) {
	r.mu.Lock()
	ws, ok := r.workspaces[deviceID]
	delete(r.workspaces, deviceID)
	r.mu.Unlock()

	if !ok {
		return
	}
	ws.Services.Close()
	r.opts.Metrics.WorkspaceLoaded(context.Background(), -1)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// Close stops every workspace and the shared scheduler.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	loaded := r.workspaces
	r.workspaces = make(map[string]*Workspace)
	r.mu.Unlock()

	for _, ws := range loaded {
		ws.Services.Close()
	}
	r.scheduler.Stop()
	r.opts.Metrics.WorkspaceLoaded(context.Background(), -int64(len(loaded)))
	logrus.WithField("workspaces", len(loaded)).Info("Workspace registry closed")
}
