// internal/navigation/deeplink.go
package navigation

import "net/url"

// DeepLink holds the query parameters of a shared public link.
type DeepLink struct {
	UserID    string `form:"userId" json:"userId"`
	DeckID    string `form:"deckId" json:"deckId"`
	ProductID string `form:"productId" json:"productId"`
}

func ParseDeepLink(query url.Values) DeepLink {
	return DeepLink{
		UserID:    query.Get("userId"),
		DeckID:    query.Get("deckId"),
		ProductID: query.Get("productId"),
	}
}

func (d DeepLink) Empty() bool {
	return d.UserID == "" && d.DeckID == "" && d.ProductID == ""
}

// FromDeepLink builds the initial history for a shared link. It returns nil
// when the link names nothing.
func FromDeepLink(link DeepLink) *Stack {
	switch {
	case link.ProductID != "":
		return NewAt(ViewFeed, Props{"productId": link.ProductID, "public": true})
	case link.UserID != "" && link.DeckID != "":
		s := NewAt(ViewProfile, Props{"userId": link.UserID, "public": true})
		s.Push(ViewDeck, Props{"userId": link.UserID, "deckId": link.DeckID, "public": true})
		return s
	case link.UserID != "":
		return NewAt(ViewProfile, Props{"userId": link.UserID, "public": true})
	}
	return nil
}
