// internal/models/live.go
package models

import (
	"fmt"
	"time"
)

type LiveComment struct {
	ID        string      `json:"id"`
	User      UserSummary `json:"user"`
	Text      string      `json:"text"`
	Timestamp time.Time   `json:"timestamp"`
}

type ActiveDiscount struct {
	ProductID          string    `json:"productId"`
	DiscountPercentage float64   `json:"discountPercentage"`
	ExpiresAt          time.Time `json:"expiresAt"`
}

type LiveStream struct {
	ID                     string          `json:"id"`
	HostID                 string          `json:"hostId"`
	Title                  string          `json:"title"`
	Status                 StreamStatus    `json:"status"`
	ScheduledAt            *time.Time      `json:"scheduledAt,omitempty"`
	StartedAt              *time.Time      `json:"startedAt,omitempty"`
	EndedAt                *time.Time      `json:"endedAt,omitempty"`
	ProductShowcaseIDs     []string        `json:"productShowcaseIds"`
	ViewerCount            int             `json:"viewerCount"`
	LikesCount             int             `json:"likesCount"`
	Comments               []LiveComment   `json:"comments"`
	IsHostControlled       bool            `json:"isHostControlled,omitempty"`
	HostPinnedProductIndex *int            `json:"hostPinnedProductIndex,omitempty"`
	ActiveDiscount         *ActiveDiscount `json:"activeDiscount,omitempty"`
}

// Transition moves the stream forward; status never goes back.
func (s *LiveStream) Transition(to StreamStatus, at time.Time) error {
	if to.rank() <= s.Status.rank() {
		return fmt.Errorf("cannot move stream from %s to %s", s.Status, to)
	}
	s.Status = to
	switch to {
	case StreamStatusLive:
		s.StartedAt = &at
	case StreamStatusEnded:
		s.EndedAt = &at
	}
	return nil
}

// DiscountFor returns the active discount percentage for productID at now.
func (s *LiveStream) DiscountFor(productID string, now time.Time) (float64, bool) {
	d := s.ActiveDiscount
	if d == nil || d.ProductID != productID || !now.Before(d.ExpiresAt) {
		return 0, false
	}
	return d.DiscountPercentage, true
}
