package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmauryLAPEYRE/Modelo/internal/models"
)

func textMessage(id, convID string, at time.Time) *models.Message {
	return &models.Message{
		ID:             id,
		ConversationID: convID,
		SenderID:       "m1",
		ReceiverID:     "p1",
		Type:           models.MessageText,
		Content:        models.MessageContent{Text: "msg " + id},
		CreatedAt:      at,
	}
}

func TestMessageStoreInboxOrder(t *testing.T) {
	s := NewMessageStore()
	s.SetConversations([]*Conversation{
		{ID: "old", LastMessage: textMessage("1", "old", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))},
		{ID: "empty"},
		{ID: "recent", LastMessage: textMessage("2", "recent", time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC))},
	})

	got := s.Conversations()
	require.Len(t, got, 3)
	assert.Equal(t, "recent", got[0].ID)
	assert.Equal(t, "old", got[1].ID)
	assert.Equal(t, "empty", got[2].ID, "threads without messages sort last")
}

func TestMessageStoreAppendDedupesAndRefreshesPreview(t *testing.T) {
	s := NewMessageStore()
	s.SetConversations([]*Conversation{{ID: "c1"}})

	first := textMessage("m-1", "c1", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	second := textMessage("m-2", "c1", time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC))
	s.AppendMessage(first)
	s.AppendMessage(second)
	s.AppendMessage(second) // subscription replay
	assert.Len(t, s.Messages("c1"), 2)

	conv := s.Conversation("c1")
	require.NotNil(t, conv)
	require.NotNil(t, conv.LastMessage)
	assert.Equal(t, "m-2", conv.LastMessage.ID)
}

func TestMessageStoreUnreadCounters(t *testing.T) {
	s := NewMessageStore()
	s.SetConversations([]*Conversation{
		{ID: "c1", Unread: 2},
		{ID: "c2", Unread: 1},
	})
	assert.Equal(t, 3, s.TotalUnread())

	s.MarkConversationRead("c1")
	assert.Equal(t, 1, s.TotalUnread())

	s.SetUnread("c2", 4)
	assert.Equal(t, 4, s.TotalUnread())
}

func TestMessageStoreCurrentAndClear(t *testing.T) {
	s := NewMessageStore()
	s.SetConversations([]*Conversation{{ID: "c1"}})
	s.AppendMessage(textMessage("m-1", "c1", time.Now()))
	s.SetCurrent("c1")
	assert.Equal(t, "c1", s.Current())

	s.Clear()
	assert.Empty(t, s.Current())
	assert.Empty(t, s.Conversations())
	assert.Empty(t, s.Messages("c1"))
}
