package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

var errImageStorageDisabled = errors.New("image storage is not configured")

// ListingService implements classified listing CRUD, search and images.
type ListingService struct {
	listings   ports.ListingRepository
	favourites ports.FavouriteRepository
	refs       referenceChecker
	images     ports.ImageStore
	log        zerolog.Logger
	now        func() time.Time
}

// NewListingService builds the service. images may be nil when object
// storage is not configured; image operations then fail.
func NewListingService(
	listings ports.ListingRepository,
	favourites ports.FavouriteRepository,
	geo ports.GeoRepository,
	categories ports.CategoryRepository,
	images ports.ImageStore,
	log zerolog.Logger,
) *ListingService {
	return &ListingService{
		listings:   listings,
		favourites: favourites,
		refs:       referenceChecker{geo: geo, categories: categories},
		images:     images,
		log:        log,
		now:        time.Now,
	}
}

func (s *ListingService) Create(ctx context.Context, accountID int64, in ports.ListingInput) (*domain.Listing, error) {
	if in.CityID == nil || in.CategoryID == nil || in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("%w: city_id, category_id and name are required", domain.ErrInvalidInput)
	}

	l := &domain.Listing{UserID: accountID, CreationDate: s.now().UTC()}
	if err := s.apply(ctx, l, in, true); err != nil {
		return nil, err
	}

	created, err := s.listings.Create(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	s.log.Info().Int64("listing_id", created.ID).Int64("account_id", accountID).Msg("listing created")
	return created, nil
}

// apply copies the non-nil input fields onto l and re-checks references when
// they changed.
func (s *ListingService) apply(ctx context.Context, l *domain.Listing, in ports.ListingInput, isNew bool) error {
	refsChanged := isNew
	if in.CityID != nil && *in.CityID != l.CityID {
		l.CityID = *in.CityID
		refsChanged = true
	}
	if in.CategoryID != nil && *in.CategoryID != l.CategoryID {
		l.CategoryID = *in.CategoryID
		refsChanged = true
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
		}
		l.Name = name
	}
	if in.ClearPrice {
		l.Price = nil
	} else if in.Price != nil {
		if *in.Price < 0 {
			return fmt.Errorf("%w: price cannot be negative", domain.ErrInvalidInput)
		}
		price := *in.Price
		l.Price = &price
	}
	if in.Description != nil {
		l.Description = *in.Description
	}

	if refsChanged {
		return s.refs.check(ctx, domain.CategoryListing, l.CityID, l.CategoryID)
	}
	return nil
}

func (s *ListingService) Get(ctx context.Context, id int64) (*domain.Listing, error) {
	return s.listings.FindByID(ctx, id)
}

func (s *ListingService) List(ctx context.Context, f ports.ListingFilter) (*ports.ListingPage, error) {
	if !validOrdering(f.Ordering, "price", "creation_date") {
		return nil, fmt.Errorf("%w: unsupported ordering %q", domain.ErrInvalidInput, f.Ordering)
	}
	f.Limit, f.Offset = normalizePage(f.Limit, f.Offset)

	items, total, err := s.listings.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return &ports.ListingPage{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

// owned loads the listing and checks the caller published it.
func (s *ListingService) owned(ctx context.Context, accountID, id int64) (*domain.Listing, error) {
	l, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.UserID != accountID {
		return nil, domain.ErrForbidden
	}
	return l, nil
}

func (s *ListingService) Update(ctx context.Context, accountID, id int64, in ports.ListingInput) (*domain.Listing, error) {
	l, err := s.owned(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, l, in, false); err != nil {
		return nil, err
	}
	updated, err := s.listings.Update(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}
	return updated, nil
}

// Delete removes the listing and every favourite pointing at it.
func (s *ListingService) Delete(ctx context.Context, accountID, id int64) error {
	if _, err := s.owned(ctx, accountID, id); err != nil {
		return err
	}
	if err := s.listings.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if err := s.favourites.RemoveItem(ctx, domain.FavouriteListing, id); err != nil {
		s.log.Warn().Err(err).Int64("listing_id", id).Msg("failed to clean up favourites of deleted listing")
	}
	s.log.Info().Int64("listing_id", id).Int64("account_id", accountID).Msg("listing deleted")
	return nil
}

// RequestImageUpload assigns a new storage key to the listing and returns a
// presigned URL the owner uploads the image to.
func (s *ListingService) RequestImageUpload(ctx context.Context, accountID, id int64) (*ports.ImageUpload, error) {
	if s.images == nil {
		return nil, errImageStorageDisabled
	}
	if _, err := s.owned(ctx, accountID, id); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("listings/%d/%s", id, uuid.NewString())
	url, err := s.images.PresignUpload(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("presign image upload: %w", err)
	}
	if err := s.listings.SetImageKey(ctx, id, key); err != nil {
		return nil, fmt.Errorf("store image key: %w", err)
	}
	return &ports.ImageUpload{Key: key, UploadURL: url}, nil
}

func (s *ListingService) ImageURL(ctx context.Context, id int64) (string, error) {
	if s.images == nil {
		return "", errImageStorageDisabled
	}
	l, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if l.ImageKey == "" {
		return "", domain.ErrImageNotFound
	}
	return s.images.PresignDownload(ctx, l.ImageKey)
}
