package ports

import (
	"context"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
)

// ContactService resolves accounts to chat contacts.
type ContactService interface {
	ResolveOrCreate(ctx context.Context, identity domain.ContactIdentity) (*domain.Contact, error)
	AddFriend(ctx context.Context, accountID int64, friend domain.ContactIdentity) (*domain.Contact, error)
	RemoveFriend(ctx context.Context, accountID int64, friend domain.ContactIdentity) (*domain.Contact, error)
}

// ChatDetail is a chat with its participant contacts and recent messages.
type ChatDetail struct {
	Chat         *domain.Chat
	Participants []*domain.Contact
	Messages     []*domain.Message
}

// ChatService operates on chats on behalf of an authenticated account.
// Every operation is scoped to the caller's own contact.
type ChatService interface {
	List(ctx context.Context, accountID int64) ([]*domain.Chat, error)
	Create(ctx context.Context, accountID int64, participants []domain.ContactIdentity) (*ChatDetail, error)
	Get(ctx context.Context, accountID, chatID int64) (*ChatDetail, error)
	UpdateParticipants(ctx context.Context, accountID, chatID int64, participants []domain.ContactIdentity) (*ChatDetail, error)
	Delete(ctx context.Context, accountID, chatID int64) error
	PostMessage(ctx context.Context, accountID, chatID int64, content string) (*domain.Message, error)
	Messages(ctx context.Context, accountID, chatID int64, limit int) ([]*domain.Message, error)
}
