package ports

import (
	"context"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
)

// ContactRepository persists chat contacts. user_id is unique.
type ContactRepository interface {
	// FindOrCreateByUserID returns the contact of userID, creating it in the same
	// atomic store operation when absent. created reports which branch ran.
	FindOrCreateByUserID(ctx context.Context, userID int64) (contact *domain.Contact, created bool, err error)
	FindByID(ctx context.Context, id int64) (*domain.Contact, error)
	FindByIDs(ctx context.Context, ids []int64) ([]*domain.Contact, error)
	AddFriend(ctx context.Context, contactID, friendID int64) (*domain.Contact, error)
	RemoveFriend(ctx context.Context, contactID, friendID int64) (*domain.Contact, error)
}

// ChatRepository persists chats.
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error)
	FindByID(ctx context.Context, id int64) (*domain.Chat, error)
	ListByParticipant(ctx context.Context, contactID int64) ([]*domain.Chat, error)
	UpdateParticipants(ctx context.Context, id int64, participants []int64) (*domain.Chat, error)
	AppendMessage(ctx context.Context, chatID, messageID int64) error
	Delete(ctx context.Context, id int64) error
}

// MessageRepository persists chat messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) (*domain.Message, error)
	// Latest returns up to limit messages among ids, newest first.
	Latest(ctx context.Context, ids []int64, limit int) ([]*domain.Message, error)
}
