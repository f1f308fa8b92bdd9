package models

import "time"

// MessageType tags the content union of a message. Exactly one of the
// type-specific content fields is populated per type.
type MessageType string

const (
	MessageText     MessageType = "text"
	MessageImage    MessageType = "image"
	MessageVideo    MessageType = "video"
	MessageLocation MessageType = "location"
	MessageSystem   MessageType = "system"
)

// MessageLocationContent is the payload of a location message.
type MessageLocationContent struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MessageContent is the content union. Text carries text and system
// messages, MediaURL carries image and video messages.
type MessageContent struct {
	Text     string                  `json:"text,omitempty"`
	MediaURL string                  `json:"mediaUrl,omitempty"`
	Location *MessageLocationContent `json:"location,omitempty"`
}

// Message belongs to the conversation identified by an application ID.
// CreatedAt is server-assigned and authoritative for ordering; DeliveredAt
// is client-stamped and informational only.
type Message struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversationId"`
	SenderID       string         `json:"senderId"`
	ReceiverID     string         `json:"receiverId"`
	Type           MessageType    `json:"type"`
	Content        MessageContent `json:"content"`
	IsRead         bool           `json:"isRead"`
	CreatedAt      time.Time      `json:"createdAt"`
	ReadAt         *time.Time     `json:"readAt,omitempty"`
	DeliveredAt    *time.Time     `json:"deliveredAt,omitempty"`
}
