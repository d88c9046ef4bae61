package ports

import (
	"context"
	"time"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
)

// AccountRepository persists accounts. Username and email are backed by
// unique indexes; a collision surfaces as domain.ErrDuplicateIdentity.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)

	// The update methods below touch only the named fields.
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	MarkEmailVerified(ctx context.Context, id int64) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
	UpdateProfile(ctx context.Context, id int64, username, email string) (*domain.Account, error)

	Delete(ctx context.Context, id int64) error
}
