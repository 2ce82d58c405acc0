// internal/store/codec.go
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/javajoker/reelshop/internal/models"
	"github.com/javajoker/reelshop/internal/navigation"
)

// inlineDataPrefix marks base64 media that must never reach the snapshot.
const inlineDataPrefix = "data:"

// persistedState is the durable layout of a device's state.
type persistedState struct {
	AllUsers            []models.User         `json:"allUsers"`
	AllProducts         []models.Product      `json:"allProducts"`
	AllChats            []models.Chat         `json:"allChats"`
	AllSales            []models.SaleRecord   `json:"allSales"`
	AllLiveStreams      []models.LiveStream   `json:"allLiveStreams"`
	CurrentUser         *models.User          `json:"currentUser"`
	Cart                []models.CartItem     `json:"cart"`
	Notifications       []models.Notification `json:"notifications"`
	LikedProductIDs     models.StringSet      `json:"likedProductIds"`
	SavedProductIDs     models.StringSet      `json:"savedProductIds"`
	ArchivedChatIDs     models.StringSet      `json:"archivedChatIds"`
	Language            models.Language       `json:"language"`
	LastViewedProductID *string               `json:"lastViewedProductId"`
	LiveStreamContextID *string               `json:"liveStreamContextId"`
}

// Serialize encodes the persisted part of state. Every string value that
// starts with "data:" is written as "".
func Serialize(state *AppState) ([]byte, error) {
	p := persistedState{
		AllUsers:            nonNil(state.Users),
		AllProducts:         nonNil(state.Products),
		AllChats:            nonNil(state.Chats),
		AllSales:            nonNil(state.Sales),
		AllLiveStreams:      nonNil(state.LiveStreams),
		CurrentUser:         state.CurrentUser(),
		Cart:                nonNil(state.Cart),
		Notifications:       nonNil(state.Notifications),
		LikedProductIDs:     state.LikedProductIDs,
		SavedProductIDs:     state.SavedProductIDs,
		ArchivedChatIDs:     state.ArchivedChatIDs,
		Language:            state.Language,
		LastViewedProductID: optional(state.LastViewedProductID),
		LiveStreamContextID: optional(state.LiveStreamContextID),
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree interface{}
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("failed to re-read state: %w", err)
	}

	out, err := json.Marshal(stripInlineData(tree))
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return out, nil
}

// Deserialize rebuilds a state tree from a snapshot. The session user is
// looked up again in allUsers; a stale or unknown id means logged out.
func Deserialize(data []byte) (*AppState, error) {
	var p persistedState
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}

	state := &AppState{
		Users:           p.AllUsers,
		Products:        p.AllProducts,
		Chats:           p.AllChats,
		Sales:           p.AllSales,
		LiveStreams:     p.AllLiveStreams,
		Cart:            p.Cart,
		Notifications:   p.Notifications,
		LikedProductIDs: p.LikedProductIDs,
		SavedProductIDs: p.SavedProductIDs,
		ArchivedChatIDs: p.ArchivedChatIDs,
		Language:        p.Language,
		Navigation:      navigation.New(),
		LocalPins:       make(map[string]int),
	}
	if p.LastViewedProductID != nil {
		state.LastViewedProductID = *p.LastViewedProductID
	}
	if p.LiveStreamContextID != nil {
		state.LiveStreamContextID = *p.LiveStreamContextID
	}
	if !state.Language.Valid() {
		state.Language = models.LanguageEnglish
	}
	if p.CurrentUser != nil && state.User(p.CurrentUser.ID) != nil {
		state.CurrentUserID = p.CurrentUser.ID
	}
	return state, nil
}

func stripInlineData(v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		if strings.HasPrefix(t, inlineDataPrefix) {
			return ""
		}
		return t
	case map[string]interface{}:
		for k, child := range t {
			t[k] = stripInlineData(child)
		}
		return t
	case []interface{}:
		for i, child := range t {
			t[i] = stripInlineData(child)
		}
		return t
	default:
		return v
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
