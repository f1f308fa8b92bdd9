package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/AmauryLAPEYRE/Modelo/internal/gateway"
	"github.com/AmauryLAPEYRE/Modelo/internal/models"
)

type messageRepository struct {
	gw     gateway.Gateway
	blobs  gateway.BlobStore
	logger *zap.Logger
}

// NewMessageRepository returns the conversations repository.
func NewMessageRepository(gw gateway.Gateway, blobs gateway.BlobStore, logger *zap.Logger) MessageRepository {
	return &messageRepository{gw: gw, blobs: blobs, logger: logger}
}

func (r *messageRepository) GetByID(ctx context.Context, messageID string) (*models.Message, error) {
	doc, err := r.gw.GetByID(ctx, messagesCollection, messageID)
	if err != nil {
		if !errors.Is(err, gateway.ErrNotFound) {
			r.logger.Error("get message failed", zap.String("messageId", messageID), zap.Error(err))
		}
		return nil, err
	}
	return decodeMessage(doc), nil
}

// ConversationMessages pages through a thread newest-first on the wire and
// returns each page oldest-first, which is how threads render.
func (r *messageRepository) ConversationMessages(ctx context.Context, conversationID string, pageSize int, startAfter string) (*MessagePage, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	page, err := r.gw.Query(ctx, messagesCollection, gateway.Query{
		Filters:    []gateway.Filter{{Field: "conversationId", Op: gateway.OpEqual, Value: conversationID}},
		Limit:      pageSize,
		StartAfter: startAfter,
	})
	if err != nil {
		r.logger.Error("list messages failed", zap.String("conversationId", conversationID), zap.Error(err))
		return nil, err
	}
	out := &MessagePage{LastID: page.LastID, HasMore: page.HasMore}
	for i := len(page.Items) - 1; i >= 0; i-- {
		out.Messages = append(out.Messages, decodeMessage(&page.Items[i]))
	}
	return out, nil
}

func (r *messageRepository) SendText(ctx context.Context, conversationID, senderID, receiverID, text string) (string, error) {
	return r.send(ctx, &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Type:           models.MessageText,
		Content:        models.MessageContent{Text: text},
	})
}

func (r *messageRepository) SendMedia(ctx context.Context, conversationID, senderID, receiverID string, file Upload, mediaType models.MessageType) (string, error) {
	if mediaType != models.MessageImage && mediaType != models.MessageVideo {
		return "", fmt.Errorf("send media: unsupported message type %q", mediaType)
	}
	ext := "jpg"
	if mediaType == models.MessageVideo {
		ext = "mp4"
	}
	path := fmt.Sprintf("%s/%s/%d.%s", messageMediaPath, conversationID, time.Now().UnixMilli(), ext)
	url, err := r.blobs.Upload(ctx, path, file.ContentType, file.Reader)
	if err != nil {
		r.logger.Error("message media upload failed", zap.String("conversationId", conversationID), zap.Error(err))
		return "", err
	}
	return r.send(ctx, &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Type:           mediaType,
		Content:        models.MessageContent{MediaURL: url},
	})
}

func (r *messageRepository) SendLocation(ctx context.Context, conversationID, senderID, receiverID string, loc models.MessageLocationContent) (string, error) {
	return r.send(ctx, &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Type:           models.MessageLocation,
		Content:        models.MessageContent{Location: &loc},
	})
}

// SendSystem appends a sender-less status message to the thread, such as
// the acceptance notice a professional's decision produces.
func (r *messageRepository) SendSystem(ctx context.Context, conversationID, receiverID, text string) (string, error) {
	return r.send(ctx, &models.Message{
		ConversationID: conversationID,
		ReceiverID:     receiverID,
		Type:           models.MessageSystem,
		Content:        models.MessageContent{Text: text},
	})
}

func (r *messageRepository) send(ctx context.Context, msg *models.Message) (string, error) {
	id, err := r.gw.Add(ctx, messagesCollection, encodeMessage(msg))
	if err != nil {
		r.logger.Error("send message failed", zap.String("conversationId", msg.ConversationID), zap.Error(err))
		return "", err
	}

	// Flag the thread for the receiver; the badge is cleared by MarkAllRead.
	err = r.gw.Update(ctx, applicationsCollection, msg.ConversationID, map[string]any{
		"hasUnreadMessages": true,
	})
	if err != nil && !errors.Is(err, gateway.ErrNotFound) {
		r.logger.Warn("unread flag update failed", zap.String("conversationId", msg.ConversationID), zap.Error(err))
	}
	return id, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, messageID string) error {
	err := r.gw.Update(ctx, messagesCollection, messageID, map[string]any{
		"isRead": true,
		"readAt": time.Now(),
	})
	if err != nil {
		r.logger.Error("mark message read failed", zap.String("messageId", messageID), zap.Error(err))
	}
	return err
}

// MarkAllRead marks every unread message addressed to receiverID in the
// conversation and clears the thread's unread badge.
func (r *messageRepository) MarkAllRead(ctx context.Context, conversationID, receiverID string) error {
	page, err := r.gw.Query(ctx, messagesCollection, gateway.Query{
		Filters: []gateway.Filter{
			{Field: "conversationId", Op: gateway.OpEqual, Value: conversationID},
			{Field: "receiverId", Op: gateway.OpEqual, Value: receiverID},
			{Field: "isRead", Op: gateway.OpEqual, Value: false},
		},
	})
	if err != nil {
		r.logger.Error("list unread messages failed", zap.String("conversationId", conversationID), zap.Error(err))
		return err
	}
	now := time.Now()
	for i := range page.Items {
		err := r.gw.Update(ctx, messagesCollection, page.Items[i].ID, map[string]any{
			"isRead": true,
			"readAt": now,
		})
		if err != nil {
			return err
		}
	}

	err = r.gw.Update(ctx, applicationsCollection, conversationID, map[string]any{
		"hasUnreadMessages": false,
	})
	if err != nil && !errors.Is(err, gateway.ErrNotFound) {
		r.logger.Warn("unread flag clear failed", zap.String("conversationId", conversationID), zap.Error(err))
	}
	return nil
}

func (r *messageRepository) SubscribeToConversation(ctx context.Context, conversationID string, fn func([]*models.Message)) (gateway.Unsubscribe, error) {
	q := gateway.Query{
		Filters: []gateway.Filter{{Field: "conversationId", Op: gateway.OpEqual, Value: conversationID}},
		OrderBy: "createdAt",
	}
	return r.gw.Subscribe(ctx, messagesCollection, q, func(docs []gateway.Document) {
		msgs := make([]*models.Message, 0, len(docs))
		for i := range docs {
			msgs = append(msgs, decodeMessage(&docs[i]))
		}
		fn(msgs)
	})
}

func encodeMessage(m *models.Message) map[string]any {
	data := map[string]any{
		"conversationId": m.ConversationID,
		"senderId":       m.SenderID,
		"receiverId":     m.ReceiverID,
		"type":           string(m.Type),
		"isRead":         false,
		"deliveredAt":    time.Now(),
	}
	content := map[string]any{}
	if m.Content.Text != "" {
		content["text"] = m.Content.Text
	}
	if m.Content.MediaURL != "" {
		content["mediaUrl"] = m.Content.MediaURL
	}
	if m.Content.Location != nil {
		content["location"] = map[string]any{
			"address":   m.Content.Location.Address,
			"latitude":  m.Content.Location.Latitude,
			"longitude": m.Content.Location.Longitude,
		}
	}
	data["content"] = content
	return data
}

func decodeMessage(doc *gateway.Document) *models.Message {
	d := doc.Data
	m := &models.Message{
		ID:             doc.ID,
		ConversationID: docString(d, "conversationId"),
		SenderID:       docString(d, "senderId"),
		ReceiverID:     docString(d, "receiverId"),
		Type:           models.MessageType(docString(d, "type")),
		IsRead:         docBool(d, "isRead"),
		CreatedAt:      docTime(d, "createdAt"),
		ReadAt:         docTimePtr(d, "readAt"),
		DeliveredAt:    docTimePtr(d, "deliveredAt"),
	}
	if c := docMap(d, "content"); c != nil {
		m.Content = models.MessageContent{
			Text:     docString(c, "text"),
			MediaURL: docString(c, "mediaUrl"),
		}
		if loc := docMap(c, "location"); loc != nil {
			m.Content.Location = &models.MessageLocationContent{
				Address:   docString(loc, "address"),
				Latitude:  docFloat(loc, "latitude"),
				Longitude: docFloat(loc, "longitude"),
			}
		}
	}
	return m
}
