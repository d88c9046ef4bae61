package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

// ContactService maps accounts to chat contacts, creating them on first use.
type ContactService struct {
	accounts ports.AccountRepository
	contacts ports.ContactRepository
	log      zerolog.Logger
}

func NewContactService(accounts ports.AccountRepository, contacts ports.ContactRepository, log zerolog.Logger) *ContactService {
	return &ContactService{accounts: accounts, contacts: contacts, log: log}
}

// ResolveOrCreate returns the single contact of the identified account. The
// find-or-create happens in one repository call, so concurrent resolutions of
// the same identity never produce two contacts.
func (s *ContactService) ResolveOrCreate(ctx context.Context, identity domain.ContactIdentity) (*domain.Contact, error) {
	accountID, err := s.accountID(ctx, identity)
	if err != nil {
		return nil, err
	}

	contact, created, err := s.contacts.FindOrCreateByUserID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("resolve contact %s: %w", identity, err)
	}
	if created {
		s.log.Debug().Int64("account_id", accountID).Int64("contact_id", contact.ID).Msg("contact created")
	}
	return contact, nil
}

func (s *ContactService) accountID(ctx context.Context, identity domain.ContactIdentity) (int64, error) {
	var (
		account *domain.Account
		err     error
	)
	switch {
	case identity.AccountID != 0:
		account, err = s.accounts.FindByID(ctx, identity.AccountID)
	case identity.Username != "":
		account, err = s.accounts.FindByUsername(ctx, identity.Username)
	default:
		return 0, fmt.Errorf("%w: empty contact identity", domain.ErrInvalidInput)
	}
	if err != nil {
		return 0, err
	}
	return account.ID, nil
}

// Contacts loads the contacts with the given ids.
func (s *ContactService) Contacts(ctx context.Context, ids []int64) ([]*domain.Contact, error) {
	if len(ids) == 0 {
		return []*domain.Contact{}, nil
	}
	return s.contacts.FindByIDs(ctx, ids)
}

// AddFriend adds friend to the caller's friend set. The relation is one-way.
func (s *ContactService) AddFriend(ctx context.Context, accountID int64, friend domain.ContactIdentity) (*domain.Contact, error) {
	self, other, err := s.pair(ctx, accountID, friend)
	if err != nil {
		return nil, err
	}
	return s.contacts.AddFriend(ctx, self.ID, other.ID)
}

func (s *ContactService) RemoveFriend(ctx context.Context, accountID int64, friend domain.ContactIdentity) (*domain.Contact, error) {
	self, other, err := s.pair(ctx, accountID, friend)
	if err != nil {
		return nil, err
	}
	return s.contacts.RemoveFriend(ctx, self.ID, other.ID)
}

func (s *ContactService) pair(ctx context.Context, accountID int64, friend domain.ContactIdentity) (*domain.Contact, *domain.Contact, error) {
	self, err := s.ResolveOrCreate(ctx, domain.ContactIdentity{AccountID: accountID})
	if err != nil {
		return nil, nil, err
	}
	other, err := s.ResolveOrCreate(ctx, friend)
	if err != nil {
		return nil, nil, err
	}
	if self.ID == other.ID {
		return nil, nil, fmt.Errorf("%w: cannot befriend yourself", domain.ErrInvalidReference)
	}
	return self, other, nil
}
