package domain

import "time"

// FavouriteKind selects which item collection a favourite points at.
type FavouriteKind string

const (
	FavouriteListing    FavouriteKind = "listing"
	FavouriteJobListing FavouriteKind = "job_listing"
)

// Valid reports whether k is one of the known kinds.
func (k FavouriteKind) Valid() bool {
	return k == FavouriteListing || k == FavouriteJobListing
}

// Favourite records that a user bookmarked an item of a given kind.
type Favourite struct {
	Kind      FavouriteKind
	UserID    int64
	ItemID    int64
	CreatedAt time.Time
}
