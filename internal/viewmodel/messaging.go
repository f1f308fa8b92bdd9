package viewmodel

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/AmauryLAPEYRE/Modelo/internal/gateway"
	"github.com/AmauryLAPEYRE/Modelo/internal/models"
	"github.com/AmauryLAPEYRE/Modelo/internal/repository"
	"github.com/AmauryLAPEYRE/Modelo/internal/store"
)

// MessagingViewModel drives the inbox and the conversation screen. A
// conversation exists for every accepted or completed candidacy the
// signed-in user is party to; its ID is the candidacy's ID.
type MessagingViewModel struct {
	applications repository.ApplicationRepository
	messages     repository.MessageRepository
	services     repository.ServiceRepository
	users        repository.UserRepository

	authStore *store.AuthStore
	msgStore  *store.MessageStore
	ui        *store.UIStore
	nav       Navigator
	logger    *zap.Logger

	mu     sync.Mutex
	unsubs map[string]gateway.Unsubscribe
}

func NewMessagingViewModel(
	applications repository.ApplicationRepository,
	messages repository.MessageRepository,
	services repository.ServiceRepository,
	users repository.UserRepository,
	authStore *store.AuthStore,
	msgStore *store.MessageStore,
	ui *store.UIStore,
	nav Navigator,
	logger *zap.Logger,
) *MessagingViewModel {
	if nav == nil {
		nav = NoopNavigator()
	}
	return &MessagingViewModel{
		applications: applications,
		messages:     messages,
		services:     services,
		users:        users,
		authStore:    authStore,
		msgStore:     msgStore,
		ui:           ui,
		nav:          nav,
		logger:       logger,
		unsubs:       make(map[string]gateway.Unsubscribe),
	}
}

// LoadInbox builds the conversation list: every accepted or completed
// candidacy the user is party to, joined with the partner's profile, the
// listing title, the last message and the unread count.
func (vm *MessagingViewModel) LoadInbox(ctx context.Context) error {
	user := vm.authStore.User()
	if user == nil {
		return ErrNotSignedIn
	}
	statuses := []models.ApplicationStatus{models.ApplicationAccepted, models.ApplicationCompleted}

	var page *repository.ApplicationPage
	var err error
	if user.Role == models.RoleModel {
		page, err = vm.applications.ForModel(ctx, user.ID, statuses, 100, "")
	} else {
		page, err = vm.applications.ForProfessional(ctx, user.ID, statuses, 100, "")
	}
	if err != nil {
		vm.logger.Error("inbox load failed", zap.String("uid", user.ID), zap.Error(err))
		vm.ui.Push(store.ToastError, "Messagerie indisponible")
		return err
	}

	convs := make([]*store.Conversation, 0, len(page.Applications))
	for _, app := range page.Applications {
		conv := &store.Conversation{
			ID:        app.ID,
			PartnerID: app.PartnerOf(user.ID),
			ServiceID: app.ServiceID,
		}
		if partner, err := vm.users.GetByID(ctx, conv.PartnerID); err == nil {
			conv.PartnerName = partner.FullName
			conv.PartnerAvatar = partner.ProfilePicture
		} else {
			vm.logger.Warn("partner profile fetch failed", zap.String("partnerId", conv.PartnerID), zap.Error(err))
		}
		if service, err := vm.services.GetByID(ctx, app.ServiceID); err == nil {
			conv.ServiceTitle = service.Title
		}
		if mp, err := vm.messages.ConversationMessages(ctx, app.ID, 1, ""); err == nil && len(mp.Messages) > 0 {
			conv.LastMessage = mp.Messages[len(mp.Messages)-1]
		}
		if app.HasUnreadMessages {
			conv.Unread = 1
		}
		convs = append(convs, conv)
	}
	vm.msgStore.SetConversations(convs)
	return nil
}

// OpenConversation verifies membership, loads the thread, marks the
// user's side read and attaches a live listener. The listener stays tied
// to this conversation ID until CloseConversation or Close.
func (vm *MessagingViewModel) OpenConversation(ctx context.Context, conversationID string) error {
	uid := vm.authStore.UID()
	if uid == "" {
		return ErrNotSignedIn
	}
	app, err := vm.applications.GetByID(ctx, conversationID)
	if err != nil {
		vm.logger.Error("conversation load failed", zap.String("conversationId", conversationID), zap.Error(err))
		return err
	}
	if !app.Participant(uid) {
		return ErrPermissionDenied
	}

	page, err := vm.messages.ConversationMessages(ctx, conversationID, 50, "")
	if err != nil {
		vm.ui.Push(store.ToastError, "Conversation indisponible")
		return err
	}
	vm.msgStore.SetMessages(conversationID, page.Messages)
	vm.msgStore.SetCurrent(conversationID)

	if err := vm.messages.MarkAllRead(ctx, conversationID, uid); err != nil {
		vm.logger.Warn("mark-all-read failed", zap.String("conversationId", conversationID), zap.Error(err))
	}
	vm.msgStore.MarkConversationRead(conversationID)

	unsub, err := vm.messages.SubscribeToConversation(ctx, conversationID, func(msgs []*models.Message) {
		vm.msgStore.SetMessages(conversationID, msgs)
	})
	if err != nil {
		return err
	}
	vm.mu.Lock()
	if old, ok := vm.unsubs[conversationID]; ok {
		old()
	}
	vm.unsubs[conversationID] = unsub
	vm.mu.Unlock()
	return nil
}

// SendText posts a text message to the open conversation.
func (vm *MessagingViewModel) SendText(ctx context.Context, conversationID, text string) error {
	if text == "" {
		return nil
	}
	return vm.send(ctx, conversationID, func(receiverID string) error {
		_, err := vm.messages.SendText(ctx, conversationID, vm.authStore.UID(), receiverID, text)
		return err
	})
}

// SendImage uploads the image and posts it to the conversation.
func (vm *MessagingViewModel) SendImage(ctx context.Context, conversationID string, file repository.Upload) error {
	return vm.send(ctx, conversationID, func(receiverID string) error {
		_, err := vm.messages.SendMedia(ctx, conversationID, vm.authStore.UID(), receiverID, file, models.MessageImage)
		return err
	})
}

// SendLocation posts a map pin to the conversation.
func (vm *MessagingViewModel) SendLocation(ctx context.Context, conversationID string, loc models.MessageLocationContent) error {
	return vm.send(ctx, conversationID, func(receiverID string) error {
		_, err := vm.messages.SendLocation(ctx, conversationID, vm.authStore.UID(), receiverID, loc)
		return err
	})
}

func (vm *MessagingViewModel) send(ctx context.Context, conversationID string, post func(receiverID string) error) error {
	uid := vm.authStore.UID()
	if uid == "" {
		return ErrNotSignedIn
	}
	app, err := vm.applications.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !app.Participant(uid) {
		return ErrPermissionDenied
	}
	if err := post(app.PartnerOf(uid)); err != nil {
		vm.logger.Error("send failed", zap.String("conversationId", conversationID), zap.Error(err))
		vm.ui.Push(store.ToastError, "Message non envoye")
		return err
	}
	return nil
}

// CloseConversation releases the one thread's listener and clears the
// current-conversation marker.
func (vm *MessagingViewModel) CloseConversation(conversationID string) {
	vm.mu.Lock()
	unsub, ok := vm.unsubs[conversationID]
	delete(vm.unsubs, conversationID)
	vm.mu.Unlock()
	if ok {
		unsub()
	}
	if vm.msgStore.Current() == conversationID {
		vm.msgStore.SetCurrent("")
	}
}

// Close releases every live listener the viewmodel holds.
func (vm *MessagingViewModel) Close() {
	vm.mu.Lock()
	unsubs := vm.unsubs
	vm.unsubs = make(map[string]gateway.Unsubscribe)
	vm.mu.Unlock()
	for _, u := range unsubs {
		u()
	}
	vm.msgStore.SetCurrent("")
}

// Conversations returns the inbox, most recent activity first.
func (vm *MessagingViewModel) Conversations() []*store.Conversation {
	return vm.msgStore.Conversations()
}

// TotalUnread feeds the tab badge.
func (vm *MessagingViewModel) TotalUnread() int {
	return vm.msgStore.TotalUnread()
}
