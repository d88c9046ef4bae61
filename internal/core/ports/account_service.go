package ports

import (
	"context"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
)

// RegisterInput carries the fields a new account is created from.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// UpdateProfileInput holds the optional profile fields; nil leaves a field as is.
type UpdateProfileInput struct {
	Username *string
	Email    *string
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult is returned on successful login or refresh.
type AuthResult struct {
	Tokens  TokenPair
	Account *domain.Account
}

// AccountService covers the account lifecycle: registration, email
// verification, authentication and self-service profile management.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Account, error)
	Verify(ctx context.Context, accountID int64, hash string) error
	ResendVerification(ctx context.Context, email string) error
	Authenticate(ctx context.Context, identifier, password string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)

	Get(ctx context.Context, accountID int64) (*domain.Account, error)
	UpdateProfile(ctx context.Context, accountID int64, in UpdateProfileInput) (*domain.Account, error)
	ChangePassword(ctx context.Context, accountID int64, oldPassword, newPassword string) error
	Delete(ctx context.Context, accountID int64) error
}

// TokenIssuer signs and parses the JWTs handed to clients.
type TokenIssuer interface {
	Issue(account *domain.Account) (TokenPair, error)
	ParseAccess(token string) (int64, error)
	ParseRefresh(token string) (int64, error)
}

// VerificationSender dispatches the "confirm your email" message for an account.
type VerificationSender interface {
	SendVerification(ctx context.Context, account *domain.Account) error
}

// ResendThrottle limits how often a verification email can be re-sent.
type ResendThrottle interface {
	// Allow reports whether a resend may happen now and, if so, starts the cooldown.
	Allow(ctx context.Context, accountID int64) (bool, error)
}
