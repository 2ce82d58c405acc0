// internal/services/services.go
package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/reelshop/internal/ai"
	"github.com/javajoker/reelshop/internal/config"
	"github.com/javajoker/reelshop/internal/metrics"
	"github.com/javajoker/reelshop/internal/models"
	"github.com/javajoker/reelshop/internal/scheduler"
	"github.com/javajoker/reelshop/internal/store"
)

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}

// Deps are the collaborators shared by the services of one workspace.
type Deps struct {
	DeviceID  string
	Store     *store.Store
	Scheduler *scheduler.Scheduler
	Media     *MediaService
	AI        ai.Client
	AIConfig  config.AIConfig
	Metrics   *metrics.AppMetrics
	Clock     Clock
}

// Services groups every operation available on one device workspace.
type Services struct {
	Session    *SessionService
	Navigation *NavigationService
	Cart       *CartService
	Catalog    *CatalogService
	Social     *SocialService
	Chat       *ChatService
	Live       *LiveService
	Sales      *SalesService
	Studio     *StudioService
}

func New(d Deps) *Services {
	if d.Clock == nil {
		d.Clock = SystemClock
	}
	if d.Scheduler == nil {
		d.Scheduler = scheduler.New()
	}

	return &Services{
		Session:    NewSessionService(d.Store),
		Navigation: NewNavigationService(d.Store),
		Cart:       NewCartService(d.Store, d.Metrics, d.Clock),
		Catalog:    NewCatalogService(d.Store, d.Metrics, d.Clock),
		Social:     NewSocialService(d.Store),
		Chat:       NewChatService(d.Store, d.AI, d.Metrics, d.Clock),
		Live:       NewLiveService(d.DeviceID, d.Store, d.Scheduler, d.Metrics, d.Clock),
		Sales:      NewSalesService(d.Store),
		Studio:     NewStudioService(d.Store, d.AI, d.Media, d.AIConfig, d.Metrics, d.Clock),
	}
}

// Close stops background work owned by the workspace.
func (s *Services) Close() {
	s.Live.Close()
	s.Studio.Close()
}

func newID() string {
	return uuid.New().String()
}

// currentUser returns the logged-in user or ErrNotLoggedIn.
func currentUser(st *store.AppState) (*models.User, error) {
	user := st.CurrentUser()
	if user == nil {
		return nil, ErrNotLoggedIn
	}
	return user, nil
}

func userRef(st *store.AppState, userID string) (*models.User, error) {
	user := st.User(userID)
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
