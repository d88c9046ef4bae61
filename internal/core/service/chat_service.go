package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

const (
	defaultMessageLimit = 10
	maxMessageLimit     = 100
)

// ChatService implements chat use cases for the authenticated caller.
type ChatService struct {
	contacts *ContactService
	chats    ports.ChatRepository
	messages ports.MessageRepository
	log      zerolog.Logger
	now      func() time.Time
}

func NewChatService(contacts *ContactService, chats ports.ChatRepository, messages ports.MessageRepository, log zerolog.Logger) *ChatService {
	return &ChatService{contacts: contacts, chats: chats, messages: messages, log: log, now: time.Now}
}

func (s *ChatService) self(ctx context.Context, accountID int64) (*domain.Contact, error) {
	return s.contacts.ResolveOrCreate(ctx, domain.ContactIdentity{AccountID: accountID})
}

// List returns every chat the caller participates in.
func (s *ChatService) List(ctx context.Context, accountID int64) ([]*domain.Chat, error) {
	me, err := s.self(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.chats.ListByParticipant(ctx, me.ID)
}

// Create opens a chat between the caller and the given identities.
func (s *ChatService) Create(ctx context.Context, accountID int64, participants []domain.ContactIdentity) (*ports.ChatDetail, error) {
	me, err := s.self(ctx, accountID)
	if err != nil {
		return nil, err
	}
	ids, err := s.participantIDs(ctx, me.ID, participants)
	if err != nil {
		return nil, err
	}

	chat, err := s.chats.Create(ctx, &domain.Chat{Participants: ids, CreatedAt: s.now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	s.log.Info().Int64("chat_id", chat.ID).Int("participants", len(ids)).Msg("chat created")
	return s.detail(ctx, chat)
}

// participantIDs resolves identities to contact ids, always including the
// caller and dropping duplicates while keeping first-seen order.
func (s *ChatService) participantIDs(ctx context.Context, selfID int64, participants []domain.ContactIdentity) ([]int64, error) {
	ids := []int64{selfID}
	seen := map[int64]struct{}{selfID: {}}
	for _, p := range participants {
		c, err := s.contacts.ResolveOrCreate(ctx, p)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// authorize loads the chat and checks the caller takes part in it.
func (s *ChatService) authorize(ctx context.Context, accountID, chatID int64) (*domain.Contact, *domain.Chat, error) {
	me, err := s.self(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}
	if !chat.HasParticipant(me.ID) {
		return nil, nil, domain.ErrForbidden
	}
	return me, chat, nil
}

func (s *ChatService) Get(ctx context.Context, accountID, chatID int64) (*ports.ChatDetail, error) {
	_, chat, err := s.authorize(ctx, accountID, chatID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, chat)
}

func (s *ChatService) detail(ctx context.Context, chat *domain.Chat) (*ports.ChatDetail, error) {
	participants, err := s.contacts.Contacts(ctx, chat.Participants)
	if err != nil {
		return nil, fmt.Errorf("chat participants: %w", err)
	}
	messages, err := s.messages.Latest(ctx, chat.Messages, defaultMessageLimit)
	if err != nil {
		return nil, fmt.Errorf("chat messages: %w", err)
	}
	return &ports.ChatDetail{Chat: chat, Participants: participants, Messages: messages}, nil
}

// UpdateParticipants replaces the participant set. The caller stays in the chat.
func (s *ChatService) UpdateParticipants(ctx context.Context, accountID, chatID int64, participants []domain.ContactIdentity) (*ports.ChatDetail, error) {
	me, _, err := s.authorize(ctx, accountID, chatID)
	if err != nil {
		return nil, err
	}
	ids, err := s.participantIDs(ctx, me.ID, participants)
	if err != nil {
		return nil, err
	}
	chat, err := s.chats.UpdateParticipants(ctx, chatID, ids)
	if err != nil {
		return nil, fmt.Errorf("update chat: %w", err)
	}
	return s.detail(ctx, chat)
}

func (s *ChatService) Delete(ctx context.Context, accountID, chatID int64) error {
	if _, _, err := s.authorize(ctx, accountID, chatID); err != nil {
		return err
	}
	if err := s.chats.Delete(ctx, chatID); err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	s.log.Info().Int64("chat_id", chatID).Int64("account_id", accountID).Msg("chat deleted")
	return nil
}

// PostMessage stores a message from the caller and appends it to the chat.
func (s *ChatService) PostMessage(ctx context.Context, accountID, chatID int64, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message content is empty", domain.ErrInvalidInput)
	}
	me, _, err := s.authorize(ctx, accountID, chatID)
	if err != nil {
		return nil, err
	}

	msg, err := s.messages.Create(ctx, &domain.Message{
		ContactID: me.ID,
		Content:   content,
		Timestamp: s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("post message: %w", err)
	}
	if err := s.chats.AppendMessage(ctx, chatID, msg.ID); err != nil {
		return nil, fmt.Errorf("post message: append to chat: %w", err)
	}
	return msg, nil
}

// Messages returns up to limit messages, newest first.
func (s *ChatService) Messages(ctx context.Context, accountID, chatID int64, limit int) ([]*domain.Message, error) {
	_, chat, err := s.authorize(ctx, accountID, chatID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultMessageLimit
	}
	if limit > maxMessageLimit {
		limit = maxMessageLimit
	}
	return s.messages.Latest(ctx, chat.Messages, limit)
}
