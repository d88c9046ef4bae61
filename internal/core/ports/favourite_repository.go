package ports

import (
	"context"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
)

// FavouriteRepository stores favourite rows, one collection per kind, with a
// unique (user_id, item_id) index.
type FavouriteRepository interface {
	// Add inserts the row; an existing pair yields domain.ErrAlreadyFavourited.
	Add(ctx context.Context, fav *domain.Favourite) error
	// Remove deletes the caller's row; domain.ErrFavouriteNotFound when none matched.
	Remove(ctx context.Context, kind domain.FavouriteKind, userID, itemID int64) error
	ItemIDs(ctx context.Context, kind domain.FavouriteKind, userID int64) ([]int64, error)
	// RemoveItem drops every favourite pointing at itemID.
	RemoveItem(ctx context.Context, kind domain.FavouriteKind, itemID int64) error
}

// FavouriteList holds the favourited items; only the slice matching Kind is set.
type FavouriteList struct {
	Kind        domain.FavouriteKind
	Listings    []*domain.Listing
	JobListings []*domain.JobListing
}

// FavouriteService guards favourite uniqueness and scopes rows to the caller.
type FavouriteService interface {
	Add(ctx context.Context, kind domain.FavouriteKind, accountID, itemID int64) error
	Remove(ctx context.Context, kind domain.FavouriteKind, accountID, itemID int64) error
	List(ctx context.Context, kind domain.FavouriteKind, accountID int64) (*FavouriteList, error)
}
