package store

import (
	"sort"
	"sync"

	"github.com/AmauryLAPEYRE/Modelo/internal/models"
)

// Conversation is one inbox row: an accepted candidacy's message thread
// seen from the signed-in user's side.
type Conversation struct {
	ID            string
	PartnerID     string
	PartnerName   string
	PartnerAvatar string
	ServiceID     string
	ServiceTitle  string
	LastMessage   *models.Message
	Unread        int
}

// MessageStore caches the inbox and the per-conversation message slices.
type MessageStore struct {
	mu            sync.Mutex
	conversations []*Conversation
	messages      map[string][]*models.Message
	currentID     string
}

func NewMessageStore() *MessageStore {
	return &MessageStore{messages: make(map[string][]*models.Message)}
}

// SetConversations replaces the inbox.
func (s *MessageStore) SetConversations(convs []*Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = append([]*Conversation(nil), convs...)
}

// Conversations returns the inbox sorted by last activity, newest first.
// Threads with no messages yet sort after every thread that has some.
func (s *MessageStore) Conversations() []*Conversation {
	s.mu.Lock()
	out := append([]*Conversation(nil), s.conversations...)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].LastMessage, out[j].LastMessage
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
	return out
}

// Conversation returns one inbox row, or nil.
func (s *MessageStore) Conversation(conversationID string) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conversations {
		if c.ID == conversationID {
			return c
		}
	}
	return nil
}

// SetMessages replaces one thread's messages, oldest first.
func (s *MessageStore) SetMessages(conversationID string, msgs []*models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[conversationID] = append([]*models.Message(nil), msgs...)
	s.refreshLastMessage(conversationID)
}

// AppendMessage adds one message to its thread, skipping IDs already held.
func (s *MessageStore) AppendMessage(msg *models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages[msg.ConversationID] {
		if m.ID == msg.ID {
			return
		}
	}
	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], msg)
	s.refreshLastMessage(msg.ConversationID)
}

// refreshLastMessage recomputes the inbox row's preview and unread count
// from the thread. Callers hold the lock.
func (s *MessageStore) refreshLastMessage(conversationID string) {
	msgs := s.messages[conversationID]
	for _, c := range s.conversations {
		if c.ID != conversationID {
			continue
		}
		if len(msgs) > 0 {
			c.LastMessage = msgs[len(msgs)-1]
		}
		return
	}
}

// Messages returns one thread's cached messages, oldest first.
func (s *MessageStore) Messages(conversationID string) []*models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Message(nil), s.messages[conversationID]...)
}

// SetCurrent records which thread is open on screen; "" when none.
func (s *MessageStore) SetCurrent(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentID = conversationID
}

func (s *MessageStore) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// SetUnread sets one inbox row's unread counter.
func (s *MessageStore) SetUnread(conversationID string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conversations {
		if c.ID == conversationID {
			c.Unread = n
			return
		}
	}
}

// MarkConversationRead zeroes one inbox row's unread counter.
func (s *MessageStore) MarkConversationRead(conversationID string) {
	s.SetUnread(conversationID, 0)
}

// TotalUnread sums unread counters across the inbox, for the tab badge.
func (s *MessageStore) TotalUnread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, c := range s.conversations {
		total += c.Unread
	}
	return total
}

// Clear wipes the container on logout.
func (s *MessageStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = nil
	s.messages = make(map[string][]*models.Message)
	s.currentID = ""
}
