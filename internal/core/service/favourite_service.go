package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

// FavouriteService records and lists favourites. The acting account is always
// the owner of the row; no operation accepts another user's id.
type FavouriteService struct {
	favourites ports.FavouriteRepository
	listings   ports.ListingRepository
	jobs       ports.JobListingRepository
	log        zerolog.Logger
	now        func() time.Time
}

func NewFavouriteService(
	favourites ports.FavouriteRepository,
	listings ports.ListingRepository,
	jobs ports.JobListingRepository,
	log zerolog.Logger,
) *FavouriteService {
	return &FavouriteService{favourites: favourites, listings: listings, jobs: jobs, log: log, now: time.Now}
}

// Add favourites itemID for the caller. A repeated pair is refused with
// domain.ErrAlreadyFavourited by the store's unique index.
func (s *FavouriteService) Add(ctx context.Context, kind domain.FavouriteKind, accountID, itemID int64) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown favourite kind %q", domain.ErrInvalidInput, kind)
	}
	if err := s.itemExists(ctx, kind, itemID); err != nil {
		return err
	}

	err := s.favourites.Add(ctx, &domain.Favourite{
		Kind:      kind,
		UserID:    accountID,
		ItemID:    itemID,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return err
	}

	s.log.Debug().Str("kind", string(kind)).Int64("account_id", accountID).Int64("item_id", itemID).Msg("favourite added")
	return nil
}

func (s *FavouriteService) itemExists(ctx context.Context, kind domain.FavouriteKind, itemID int64) error {
	var err error
	switch kind {
	case domain.FavouriteListing:
		_, err = s.listings.FindByID(ctx, itemID)
	case domain.FavouriteJobListing:
		_, err = s.jobs.FindByID(ctx, itemID)
	}
	return err
}

// Remove deletes the caller's own favourite only.
func (s *FavouriteService) Remove(ctx context.Context, kind domain.FavouriteKind, accountID, itemID int64) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown favourite kind %q", domain.ErrInvalidInput, kind)
	}
	return s.favourites.Remove(ctx, kind, accountID, itemID)
}

// List returns the items the caller favourited, in no particular order.
func (s *FavouriteService) List(ctx context.Context, kind domain.FavouriteKind, accountID int64) (*ports.FavouriteList, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown favourite kind %q", domain.ErrInvalidInput, kind)
	}

	ids, err := s.favourites.ItemIDs(ctx, kind, accountID)
	if err != nil {
		return nil, fmt.Errorf("list favourites: %w", err)
	}

	out := &ports.FavouriteList{Kind: kind}
	switch kind {
	case domain.FavouriteListing:
		out.Listings = []*domain.Listing{}
		if len(ids) > 0 {
			if out.Listings, err = s.listings.FindByIDs(ctx, ids); err != nil {
				return nil, fmt.Errorf("list favourites: %w", err)
			}
		}
	case domain.FavouriteJobListing:
		out.JobListings = []*domain.JobListing{}
		if len(ids) > 0 {
			if out.JobListings, err = s.jobs.FindByIDs(ctx, ids); err != nil {
				return nil, fmt.Errorf("list favourites: %w", err)
			}
		}
	}
	return out, nil
}
