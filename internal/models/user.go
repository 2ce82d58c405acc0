// internal/models/user.go
package models

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used when hashing passwords.
var PasswordCost = bcrypt.DefaultCost

type Contact struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func DefaultAddress() Address {
	return Address{Country: "TR"}
}

type SizeGuideTemplate struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Guide SizeGuide `json:"guide"`
}

type PackTemplate struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Contents map[string]int `json:"contents"`
}

type Deck struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	MediaURLs    []string `json:"mediaUrls"`
	ProductIDs   []string `json:"productIds"`
	ProductCount int      `json:"productCount"`
}

type User struct {
	ID                   string              `json:"id"`
	Username             string              `json:"username"`
	AvatarURL            string              `json:"avatarUrl"`
	OriginalAvatarURL    string              `json:"originalAvatarUrl,omitempty"`
	Bio                  string              `json:"bio"`
	Contact              Contact             `json:"contact"`
	Address              Address             `json:"address"`
	PasswordHash         string              `json:"passwordHash"`
	FollowingIDs         []string            `json:"followingIds"`
	FollowerIDs          []string            `json:"followerIds"`
	Role                 Role                `json:"role"`
	CompanyID            string              `json:"companyId,omitempty"`
	TeamMemberIDs        []string            `json:"teamMemberIds,omitempty"`
	CommissionRate       float64             `json:"commissionRate,omitempty"`
	SizeGuideTemplates   []SizeGuideTemplate `json:"sizeGuideTemplates,omitempty"`
	PackTemplates        []PackTemplate      `json:"packTemplates,omitempty"`
	Decks                []Deck              `json:"decks"`
	Language             Language            `json:"language"`
	VoiceMessagesEnabled bool                `json:"voiceMessagesEnabled"`
	PaymentProviderID    string              `json:"paymentProviderId,omitempty"`
}

// UserSummary is a denormalized snapshot of a user embedded in other entities.
type UserSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
}

type Capabilities struct {
	CanPublish       bool `json:"canPublish"`
	CanManageTeam    bool `json:"canManageTeam"`
	CanHostLive      bool `json:"canHostLive"`
	EarnsCommission  bool `json:"earnsCommission"`
	CanViewSalesData bool `json:"canViewSalesData"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
}

func (u *User) Capabilities() Capabilities {
	switch u.Role {
	case RoleBrandOwner:
		return Capabilities{CanPublish: true, CanManageTeam: true, CanHostLive: true, CanViewSalesData: true}
	case RoleSalesRep:
		return Capabilities{CanHostLive: true, EarnsCommission: true, CanViewSalesData: true}
	default:
		return Capabilities{}
	}
}

func (u *User) IsFollowing(userID string) bool {
	return containsID(u.FollowingIDs, userID)
}

func (u *User) Deck(deckID string) *Deck {
	for i := range u.Decks {
		if u.Decks[i].ID == deckID {
			return &u.Decks[i]
		}
	}
	return nil
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// RemoveID returns ids without id, preserving order.
func RemoveID(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// AppendUnique appends id unless it is already present.
func AppendUnique(ids []string, id string) []string {
	if containsID(ids, id) {
		return ids
	}
	return append(ids, id)
}

// Public returns a copy safe to hand to API clients.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
