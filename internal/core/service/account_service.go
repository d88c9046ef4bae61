package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

// AccountService implements registration, email verification, login and
// self-service account management.
type AccountService struct {
	repo        ports.AccountRepository
	credentials *CredentialManager
	tokens      ports.TokenIssuer
	mailer      ports.VerificationSender
	throttle    ports.ResendThrottle
	log         zerolog.Logger
	now         func() time.Time
}

// NewAccountService wires the account use cases. throttle may be nil, in
// which case verification emails can be re-sent without a cooldown.
func NewAccountService(
	repo ports.AccountRepository,
	credentials *CredentialManager,
	tokens ports.TokenIssuer,
	mailer ports.VerificationSender,
	throttle ports.ResendThrottle,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		repo:        repo,
		credentials: credentials,
		tokens:      tokens,
		mailer:      mailer,
		throttle:    throttle,
		log:         log,
		now:         time.Now,
	}
}

func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	username := strings.TrimSpace(in.Username)
	email := domain.NormalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrInvalidInput)
	}

	if err := s.ensureAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := randomString(verificationHashLength)
	if err != nil {
		return nil, fmt.Errorf("register: generate verification hash: %w", err)
	}

	account := &domain.Account{
		Username:              username,
		Email:                 email,
		Active:                true,
		EmailVerificationHash: hash,
		DateJoined:            s.now().UTC(),
	}
	if err := s.credentials.Set(account, in.Password); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Int64("account_id", created.ID).Str("username", created.Username).Msg("account registered")

	// The account stays usable for a later resend even if this dispatch fails.
	if err := s.mailer.SendVerification(ctx, created); err != nil {
		s.log.Error().Err(err).Int64("account_id", created.ID).Msg("failed to dispatch verification email")
	}

	return created, nil
}

// ensureAvailable rejects usernames and emails already in use. The unique
// indexes still catch a concurrent registration that slips past this check.
func (s *AccountService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return domain.ErrDuplicateIdentity
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("register: lookup username: %w", err)
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return domain.ErrDuplicateIdentity
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("register: lookup email: %w", err)
	}
	return nil
}

// Verify marks the email as verified when hash matches the stored one. The
// hash is left in place, so repeating a successful verification succeeds again.
func (s *AccountService) Verify(ctx context.Context, accountID int64, hash string) error {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	if account.EmailVerificationHash == "" ||
		subtle.ConstantTimeCompare([]byte(hash), []byte(account.EmailVerificationHash)) != 1 {
		return domain.ErrInvalidToken
	}

	if account.EmailVerified {
		return nil
	}
	if err := s.repo.MarkEmailVerified(ctx, account.ID); err != nil {
		return fmt.Errorf("verify email: %w", err)
	}

	s.log.Info().Int64("account_id", account.ID).Msg("email verified")
	return nil
}

func (s *AccountService) ResendVerification(ctx context.Context, email string) error {
	account, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if account.EmailVerified {
		return domain.ErrAlreadyVerified
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, account.ID)
		if err != nil {
			s.log.Warn().Err(err).Int64("account_id", account.ID).Msg("resend throttle unavailable, sending anyway")
		} else if !allowed {
			return domain.ErrResendThrottled
		}
	}

	if err := s.mailer.SendVerification(ctx, account); err != nil {
		return fmt.Errorf("resend verification: %w", err)
	}
	return nil
}

// Authenticate accepts either an email or a username. Every failure mode
// collapses into domain.ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, identifier, password string) (*ports.AuthResult, error) {
	account, err := s.lookup(ctx, strings.TrimSpace(identifier))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !s.credentials.Verify(account, password) || !account.Active {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.repo.TouchLastLogin(ctx, account.ID, now); err != nil {
		return nil, fmt.Errorf("authenticate: update last login: %w", err)
	}
	account.LastLogin = &now

	tokens, err := s.tokens.Issue(account)
	if err != nil {
		return nil, fmt.Errorf("authenticate: issue tokens: %w", err)
	}

	s.log.Info().Int64("account_id", account.ID).Msg("account logged in")
	return &ports.AuthResult{Tokens: tokens, Account: account}, nil
}

// lookup tries the identifier as an email first, then as a username.
func (s *AccountService) lookup(ctx context.Context, identifier string) (*domain.Account, error) {
	if identifier == "" {
		return nil, domain.ErrAccountNotFound
	}
	account, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(identifier))
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return s.repo.FindByUsername(ctx, identifier)
}

func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
	accountID, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, domain.ErrInvalidJWT
	}

	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidJWT
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if !account.Active {
		return nil, domain.ErrInvalidJWT
	}

	tokens, err := s.tokens.Issue(account)
	if err != nil {
		return nil, fmt.Errorf("refresh: issue tokens: %w", err)
	}
	return &ports.AuthResult{Tokens: tokens, Account: account}, nil
}

func (s *AccountService) Get(ctx context.Context, accountID int64) (*domain.Account, error) {
	return s.repo.FindByID(ctx, accountID)
}

func (s *AccountService) UpdateProfile(ctx context.Context, accountID int64, in ports.UpdateProfileInput) (*domain.Account, error) {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	username, email := account.Username, account.Email
	if in.Username != nil {
		username = strings.TrimSpace(*in.Username)
	}
	if in.Email != nil {
		email = domain.NormalizeEmail(*in.Email)
	}
	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username and email cannot be empty", domain.ErrInvalidInput)
	}
	if username == account.Username && email == account.Email {
		return account, nil
	}

	updated, err := s.repo.UpdateProfile(ctx, account.ID, username, email)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return updated, nil
}

// ChangePassword checks the old password before the new one is validated; a
// mismatch returns domain.ErrWrongCredential and changes nothing.
func (s *AccountService) ChangePassword(ctx context.Context, accountID int64, oldPassword, newPassword string) error {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	if !s.credentials.Verify(account, oldPassword) {
		return domain.ErrWrongCredential
	}
	if err := s.credentials.Set(account, newPassword); err != nil {
		return err
	}

	if err := s.repo.UpdatePasswordHash(ctx, account.ID, account.PasswordHash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	s.log.Info().Int64("account_id", account.ID).Msg("password changed")
	return nil
}

func (s *AccountService) Delete(ctx context.Context, accountID int64) error {
	if err := s.repo.Delete(ctx, accountID); err != nil {
		return err
	}
	s.log.Info().Int64("account_id", accountID).Msg("account deleted")
	return nil
}
