// internal/store/state.go
package store

import (
	"github.com/javajoker/reelshop/internal/models"
	"github.com/javajoker/reelshop/internal/navigation"
)

// PreOrderEdit points at a pre-order message being edited and resent.
type PreOrderEdit struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
}

// AppState is the root state tree of one device.
type AppState struct {
	Users       []models.User
	Products    []models.Product
	Chats       []models.Chat
	Sales       []models.SaleRecord
	LiveStreams []models.LiveStream

	CurrentUserID string
	Cart          []models.CartItem
	PublicCart    []models.CartItem
	Notifications []models.Notification

	LikedProductIDs models.StringSet
	SavedProductIDs models.StringSet
	ArchivedChatIDs models.StringSet

	Language            models.Language
	LastViewedProductID string
	LiveStreamContextID string

	// Not persisted.
	Navigation      *navigation.Stack
	EditingPreOrder *PreOrderEdit
	PublicMode      bool
	DeepLinkHandled bool
	LocalPins       map[string]int
}

// NewState returns an empty tree positioned at the feed.
func NewState() *AppState {
	return &AppState{
		Language:   models.LanguageEnglish,
		Navigation: navigation.New(),
		LocalPins:  make(map[string]int),
	}
}

func (s *AppState) User(id string) *models.User {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i]
		}
	}
	return nil
}

func (s *AppState) Product(id string) *models.Product {
	for i := range s.Products {
		if s.Products[i].ID == id {
			return &s.Products[i]
		}
	}
	return nil
}

func (s *AppState) Chat(id string) *models.Chat {
	for i := range s.Chats {
		if s.Chats[i].ID == id {
			return &s.Chats[i]
		}
	}
	return nil
}

func (s *AppState) Stream(id string) *models.LiveStream {
	for i := range s.LiveStreams {
		if s.LiveStreams[i].ID == id {
			return &s.LiveStreams[i]
		}
	}
	return nil
}

// CurrentUser returns the logged-in user or nil.
func (s *AppState) CurrentUser() *models.User {
	if s.CurrentUserID == "" {
		return nil
	}
	return s.User(s.CurrentUserID)
}

// ActiveCart returns the cart that add/update operations act on: the parallel
// public cart while browsing a shared link, the session cart otherwise.
func (s *AppState) ActiveCart() *[]models.CartItem {
	if s.PublicMode {
		return &s.PublicCart
	}
	return &s.Cart
}

// ClearSession drops everything bound to the logged-in user.
func (s *AppState) ClearSession() {
	s.CurrentUserID = ""
	s.Cart = nil
	s.LikedProductIDs = models.StringSet{}
	s.SavedProductIDs = models.StringSet{}
	s.ArchivedChatIDs = models.StringSet{}
	s.Notifications = nil
	s.EditingPreOrder = nil
}
