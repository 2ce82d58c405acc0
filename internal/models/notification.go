// internal/models/notification.go
package models

import "time"

type NotificationLink struct {
	Kind        LinkKind `json:"kind"`
	ID          string   `json:"id"`
	VariantName string   `json:"variantName,omitempty"`
}

type Notification struct {
	ID          string           `json:"id"`
	RecipientID string           `json:"recipientId"`
	FromUser    UserSummary      `json:"fromUser"`
	Message     string           `json:"message"`
	Link        NotificationLink `json:"link"`
	Timestamp   time.Time        `json:"timestamp"`
	Read        bool             `json:"read"`
}
