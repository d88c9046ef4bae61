package ports

import (
	"context"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
)

// ListingFilter carries the query parameters of the listing search.
type ListingFilter struct {
	CityID     *int64
	UserID     *int64
	CategoryID *int64
	Search     string // case-insensitive substring of the name
	Ordering   string // price, -price, creation_date, -creation_date
	Limit      int
	Offset     int
}

// ListingRepository persists classified listings.
type ListingRepository interface {
	Create(ctx context.Context, l *domain.Listing) (*domain.Listing, error)
	FindByID(ctx context.Context, id int64) (*domain.Listing, error)
	FindByIDs(ctx context.Context, ids []int64) ([]*domain.Listing, error)
	List(ctx context.Context, f ListingFilter) ([]*domain.Listing, int64, error)
	Update(ctx context.Context, l *domain.Listing) (*domain.Listing, error)
	SetImageKey(ctx context.Context, id int64, key string) error
	Delete(ctx context.Context, id int64) error
}

// JobListingFilter carries the query parameters of the job listing search.
type JobListingFilter struct {
	CityID     *int64
	UserID     *int64
	CategoryID *int64
	Search     string // case-insensitive substring of the title
	Ordering   string // salary_min, salary_max, creation_date, each optionally prefixed with "-"
	Limit      int
	Offset     int
}

// JobListingRepository persists job listings.
type JobListingRepository interface {
	Create(ctx context.Context, j *domain.JobListing) (*domain.JobListing, error)
	FindByID(ctx context.Context, id int64) (*domain.JobListing, error)
	FindByIDs(ctx context.Context, ids []int64) ([]*domain.JobListing, error)
	List(ctx context.Context, f JobListingFilter) ([]*domain.JobListing, int64, error)
	Update(ctx context.Context, j *domain.JobListing) (*domain.JobListing, error)
	Delete(ctx context.Context, id int64) error
}

// ImageStore hands out presigned URLs for listing images kept in object storage.
type ImageStore interface {
	PresignUpload(ctx context.Context, key string) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
}

// GeoRepository reads the region/city reference data.
type GeoRepository interface {
	ListRegions(ctx context.Context) ([]domain.Region, error)
	FindRegionByName(ctx context.Context, name string) (*domain.Region, error)
	// ListCities returns cities ordered by name; regionID nil means all regions.
	ListCities(ctx context.Context, regionID *int64) ([]domain.City, error)
	CityExists(ctx context.Context, id int64) (bool, error)
}

// CategoryRepository reads listing and job listing categories.
type CategoryRepository interface {
	List(ctx context.Context, kind domain.CategoryKind) ([]domain.Category, error)
	Exists(ctx context.Context, kind domain.CategoryKind, id int64) (bool, error)
}
