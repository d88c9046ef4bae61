package ports

import (
	"context"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
)

// ListingInput holds the writable listing fields. For updates nil pointers
// leave the stored value untouched.
type ListingInput struct {
	CityID      *int64
	CategoryID  *int64
	Name        *string
	Price       *float64
	ClearPrice  bool
	Description *string
}

// ListingPage is one page of listing search results.
type ListingPage struct {
	Items  []*domain.Listing
	Total  int64
	Limit  int
	Offset int
}

// ImageUpload tells the client where to PUT the image bytes.
type ImageUpload struct {
	Key       string
	UploadURL string
}

// ListingService manages classified listings.
type ListingService interface {
	Create(ctx context.Context, accountID int64, in ListingInput) (*domain.Listing, error)
	Get(ctx context.Context, id int64) (*domain.Listing, error)
	List(ctx context.Context, f ListingFilter) (*ListingPage, error)
	Update(ctx context.Context, accountID, id int64, in ListingInput) (*domain.Listing, error)
	Delete(ctx context.Context, accountID, id int64) error
	RequestImageUpload(ctx context.Context, accountID, id int64) (*ImageUpload, error)
	ImageURL(ctx context.Context, id int64) (string, error)
}

// JobListingInput holds the writable job listing fields.
type JobListingInput struct {
	CityID         *int64
	CategoryID     *int64
	Title          *string
	SalaryMin      *float64
	ClearSalaryMin bool
	SalaryMax      *float64
	ClearSalaryMax bool
	Description    *string
}

// JobListingPage is one page of job listing search results.
type JobListingPage struct {
	Items  []*domain.JobListing
	Total  int64
	Limit  int
	Offset int
}

// JobListingService manages job listings.
type JobListingService interface {
	Create(ctx context.Context, accountID int64, in JobListingInput) (*domain.JobListing, error)
	Get(ctx context.Context, id int64) (*domain.JobListing, error)
	List(ctx context.Context, f JobListingFilter) (*JobListingPage, error)
	Update(ctx context.Context, accountID, id int64, in JobListingInput) (*domain.JobListing, error)
	Delete(ctx context.Context, accountID, id int64) error
}

// GeoService exposes the reference data used by listing forms.
type GeoService interface {
	RegionsWithCities(ctx context.Context) ([]domain.RegionWithCities, error)
	Cities(ctx context.Context, regionName string) ([]domain.City, error)
	Categories(ctx context.Context, kind domain.CategoryKind) ([]domain.Category, error)
}
