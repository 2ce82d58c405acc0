// internal/models/chat.go
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeAudio    MessageType = "audio"
	MessageTypePreOrder MessageType = "pre-order"
)

// MessageBody is the payload of a chat message. Implementations are
// TextBody, AudioBody and PreOrderBody.
type MessageBody interface {
	Type() MessageType
	isMessageBody()
}

type TextBody struct {
	Text string `json:"text"`
}

type AudioBody struct {
	AudioURL        string `json:"audioUrl"`
	DurationSeconds int    `json:"duration"`
}

type PreOrderItem struct {
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	VariantName  string  `json:"variantName"`
	Size         string  `json:"size,omitempty"`
	PackID       string  `json:"packId,omitempty"`
	PackName     string  `json:"packName,omitempty"`
	Quantity     int     `json:"quantity"`
	PricePerUnit float64 `json:"pricePerUnit"`
}

type PreOrder struct {
	CreatorID     string         `json:"creatorId"`
	SalespersonID string         `json:"salespersonId,omitempty"`
	Items         []PreOrderItem `json:"items"`
	TotalAmount   float64        `json:"totalAmount"`
	Note          string         `json:"note,omitempty"`
	UpdatedAt     *time.Time     `json:"updatedAt,omitempty"`
}

// PreOrderBody is the only body that may be rewritten after it was sent.
type PreOrderBody struct {
	PreOrder PreOrder `json:"preOrder"`
}

func (TextBody) Type() MessageType     { return MessageTypeText }
func (AudioBody) Type() MessageType    { return MessageTypeAudio }
func (PreOrderBody) Type() MessageType { return MessageTypePreOrder }

func (TextBody) isMessageBody()     {}
func (AudioBody) isMessageBody()    {}
func (PreOrderBody) isMessageBody() {}

type ChatMessage struct {
	ID        string
	SenderID  string
	Timestamp time.Time
	Body      MessageBody
}

type messageHeader struct {
	ID        string      `json:"id"`
	SenderID  string      `json:"senderId"`
	Timestamp time.Time   `json:"timestamp"`
	Type      MessageType `json:"type"`
}

func (m ChatMessage) MarshalJSON() ([]byte, error) {
	if m.Body == nil {
		return nil, fmt.Errorf("chat message %s has no body", m.ID)
	}
	header, err := json.Marshal(messageHeader{ID: m.ID, SenderID: m.SenderID, Timestamp: m.Timestamp, Type: m.Body.Type()})
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(m.Body)
	if err != nil {
		return nil, err
	}
	// Merge the two objects: header fields first, then the body fields.
	if len(body) <= 2 {
		return header, nil
	}
	merged := make([]byte, 0, len(header)+len(body))
	merged = append(merged, header[:len(header)-1]...)
	merged = append(merged, ',')
	merged = append(merged, body[1:]...)
	return merged, nil
}

func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	var header messageHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return err
	}

	var body MessageBody
	switch header.Type {
	case MessageTypeText:
		var b TextBody
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		body = b
	case MessageTypeAudio:
		var b AudioBody
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		body = b
	case MessageTypePreOrder:
		var b PreOrderBody
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		body = b
	default:
		return fmt.Errorf("unknown chat message type %q", header.Type)
	}

	*m = ChatMessage{ID: header.ID, SenderID: header.SenderID, Timestamp: header.Timestamp, Body: body}
	return nil
}

// Preview is the one-line summary shown in chat lists.
func (m ChatMessage) Preview() string {
	switch b := m.Body.(type) {
	case TextBody:
		return b.Text
	case AudioBody:
		return fmt.Sprintf("voice message (%ds)", b.DurationSeconds)
	case PreOrderBody:
		return fmt.Sprintf("pre-order: %d item(s), %.2f", len(b.PreOrder.Items), b.PreOrder.TotalAmount)
	default:
		return ""
	}
}

type Chat struct {
	ID             string        `json:"id"`
	ParticipantIDs [2]string     `json:"participantIds"`
	ProductID      string        `json:"productId,omitempty"`
	Messages       []ChatMessage `json:"messages"`
}

func (c *Chat) HasParticipant(userID string) bool {
	return c.ParticipantIDs[0] == userID || c.ParticipantIDs[1] == userID
}

// Between reports whether the chat is exactly between a and b.
func (c *Chat) Between(a, b string) bool {
	return (c.ParticipantIDs[0] == a && c.ParticipantIDs[1] == b) ||
		(c.ParticipantIDs[0] == b && c.ParticipantIDs[1] == a)
}

func (c *Chat) Message(messageID string) *ChatMessage {
	for i := range c.Messages {
		if c.Messages[i].ID == messageID {
			return &c.Messages[i]
		}
	}
	return nil
}

func (c *Chat) OtherParticipant(userID string) string {
	if c.ParticipantIDs[0] == userID {
		return c.ParticipantIDs[1]
	}
	return c.ParticipantIDs[0]
}
