// internal/models/common.go
package models

import (
	"encoding/json"
	"time"
)

// StateSnapshot is the durable row behind one device's persisted state.
type StateSnapshot struct {
	Key       string    `json:"key" gorm:"primaryKey;size:191"`
	Payload   string    `json:"payload" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Device is a registered client. Each device owns one state snapshot.
type Device struct {
	ID         string    `json:"id" gorm:"primaryKey;size:64"`
	Name       string    `json:"name" gorm:"size:120"`
	UserAgent  string    `json:"userAgent" gorm:"size:255"`
	LastSeenAt time.Time `json:"lastSeenAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Enums
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleSalesRep   Role = "sales_rep"
	RoleBrandOwner Role = "brand_owner"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSalesRep, RoleBrandOwner:
		return true
	}
	return false
}

type Language string

const (
	LanguageTurkish Language = "tr"
	LanguageRussian Language = "ru"
	LanguageEnglish Language = "en"
	LanguageGerman  Language = "de"
)

func (l Language) Valid() bool {
	switch l {
	case LanguageTurkish, LanguageRussian, LanguageEnglish, LanguageGerman:
		return true
	}
	return false
}

type StreamStatus string

const (
	StreamStatusUpcoming StreamStatus = "upcoming"
	StreamStatusLive     StreamStatus = "live"
	StreamStatusEnded    StreamStatus = "ended"
)

func (s StreamStatus) rank() int {
	switch s {
	case StreamStatusUpcoming:
		return 0
	case StreamStatusLive:
		return 1
	case StreamStatusEnded:
		return 2
	}
	return -1
}

type LinkKind string

const (
	LinkKindProduct LinkKind = "product"
	LinkKindDeck    LinkKind = "deck"
)

// StringSet is an insertion-ordered set of ids, encoded as a JSON array.
type StringSet struct {
	items []string
	index map[string]struct{}
}

func NewStringSet(items ...string) StringSet {
	var s StringSet
	for _, item := range items {
		s.Add(item)
	}
	return s
}

func (s *StringSet) Add(item string) bool {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, exists := s.index[item]; exists {
		return false
	}
	s.index[item] = struct{}{}
	s.items = append(s.items, item)
	return true
}

func (s *StringSet) Remove(item string) bool {
	if _, exists := s.index[item]; !exists {
		return false
	}
	delete(s.index, item)
	for i, v := range s.items {
		if v == item {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			break
		}
	}
	return true
}

// Toggle flips membership and reports whether item is now present.
func (s *StringSet) Toggle(item string) bool {
	if s.Remove(item) {
		return false
	}
	s.Add(item)
	return true
}

func (s StringSet) Has(item string) bool {
	_, ok := s.index[item]
	return ok
}

func (s StringSet) Len() int {
	return len(s.items)
}

func (s StringSet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

func (s StringSet) MarshalJSON() ([]byte, error) {
	if s.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.items)
}

func (s *StringSet) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewStringSet(items...)
	return nil
}
