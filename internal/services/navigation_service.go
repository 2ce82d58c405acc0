// internal/services/navigation_service.go
package services

import (
	"github.com/javajoker/reelshop/internal/navigation"
	"github.com/javajoker/reelshop/internal/store"
)

type NavigationService struct {
	store *store.Store
}

// NavigationState is what the client renders: the history and the mode it
// was opened in.
type NavigationState struct {
	Frames     []navigation.Frame  `json:"frames"`
	Current    navigation.Frame    `json:"current"`
	PublicMode bool                `json:"publicMode"`
	Editing    *store.PreOrderEdit `json:"editingPreOrder,omitempty"`
}

func NewNavigationService(s *store.Store) *NavigationService {
	return &NavigationService{store: s}
}

func (s *NavigationService) State() NavigationState {
	var out NavigationState
	s.store.View(func(st *store.AppState) {
		out = snapshotNavigation(st)
	})
	return out
}

func (s *NavigationService) Push(view navigation.View, props navigation.Props) (NavigationState, error) {
	var out NavigationState
	err := s.store.Update("navigation.push", func(st *store.AppState) error {
		st.Navigation.Push(view, props)
		out = snapshotNavigation(st)
		return nil
	})
	return out, err
}

// Back pops the active frame. Leaving the basket abandons a pre-order edit.
func (s *NavigationService) Back() (NavigationState, error) {
	var out NavigationState
	err := s.store.Update("navigation.back", func(st *store.AppState) error {
		frame, ok := st.Navigation.Pop()
		if !ok {
			return errNoChange
		}
		if frame.View == navigation.ViewBasket {
			st.EditingPreOrder = nil
		}
		out = snapshotNavigation(st)
		return nil
	})
	if err == errNoChange {
		return s.State(), nil
	}
	return out, err
}

// Reset returns to a root view. It is a no-op while browsing a shared link.
func (s *NavigationService) Reset(view navigation.View) (NavigationState, error) {
	var out NavigationState
	err := s.store.Update("navigation.reset", func(st *store.AppState) error {
		if !st.Navigation.ResetToRoot(view, st.PublicMode) {
			return errNoChange
		}
		st.EditingPreOrder = nil
		out = snapshotNavigation(st)
		return nil
	})
	if err == errNoChange {
		return s.State(), nil
	}
	return out, err
}

// ApplyDeepLink opens a shared link in public mode. A link is honored once
// per workspace load, and never while someone is logged in.
func (s *NavigationService) ApplyDeepLink(link navigation.DeepLink) (NavigationState, bool, error) {
	var out NavigationState
	err := s.store.Update("navigation.deep_link", func(st *store.AppState) error {
		if st.DeepLinkHandled || st.CurrentUserID != "" {
			return errNoChange
		}
		stack := navigation.FromDeepLink(link)
		if stack == nil {
			return errNoChange
		}
		st.DeepLinkHandled = true
		st.PublicMode = true
		st.Navigation = stack
		out = snapshotNavigation(st)
		return nil
	})
	if err == errNoChange {
		return s.State(), false, nil
	}
	if err != nil {
		return NavigationState{}, false, err
	}
	return out, true, nil
}

// ExitPublicMode leaves a shared link and returns to the feed.
func (s *NavigationService) ExitPublicMode() (NavigationState, error) {
	var out NavigationState
	err := s.store.Update("navigation.exit_public", func(st *store.AppState) error {
		if !st.PublicMode {
			return errNoChange
		}
		st.PublicMode = false
		st.Navigation.Replace(navigation.ViewFeed, nil)
		out = snapshotNavigation(st)
		return nil
	})
	if err == errNoChange {
		return s.State(), nil
	}
	return out, err
}

func snapshotNavigation(st *store.AppState) NavigationState {
	state := NavigationState{
		Frames:     st.Navigation.Frames(),
		Current:    st.Navigation.Current(),
		PublicMode: st.PublicMode,
	}
	if st.EditingPreOrder != nil {
		edit := *st.EditingPreOrder
		state.Editing = &edit
	}
	return state
}
