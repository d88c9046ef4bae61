package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

// JobListingService implements job listing CRUD and search.
type JobListingService struct {
	jobs       ports.JobListingRepository
	favourites ports.FavouriteRepository
	refs       referenceChecker
	log        zerolog.Logger
	now        func() time.Time
}

func NewJobListingService(
	jobs ports.JobListingRepository,
	favourites ports.FavouriteRepository,
	geo ports.GeoRepository,
	categories ports.CategoryRepository,
	log zerolog.Logger,
) *JobListingService {
	return &JobListingService{
		jobs:       jobs,
		favourites: favourites,
		refs:       referenceChecker{geo: geo, categories: categories},
		log:        log,
		now:        time.Now,
	}
}

func (s *JobListingService) Create(ctx context.Context, accountID int64, in ports.JobListingInput) (*domain.JobListing, error) {
	if in.CityID == nil || in.CategoryID == nil || in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, fmt.Errorf("%w: city_id, category_id and title are required", domain.ErrInvalidInput)
	}

	j := &domain.JobListing{UserID: accountID, CreationDate: s.now().UTC()}
	if err := s.apply(ctx, j, in, true); err != nil {
		return nil, err
	}

	created, err := s.jobs.Create(ctx, j)
	if err != nil {
		return nil, fmt.Errorf("create job listing: %w", err)
	}
	s.log.Info().Int64("job_listing_id", created.ID).Int64("account_id", accountID).Msg("job listing created")
	return created, nil
}

func (s *JobListingService) apply(ctx context.Context, j *domain.JobListing, in ports.JobListingInput, isNew bool) error {
	refsChanged := isNew
	if in.CityID != nil && *in.CityID != j.CityID {
		j.CityID = *in.CityID
		refsChanged = true
	}
	if in.CategoryID != nil && *in.CategoryID != j.CategoryID {
		j.CategoryID = *in.CategoryID
		refsChanged = true
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidInput)
		}
		j.Title = title
	}
	if in.ClearSalaryMin {
		j.SalaryMin = nil
	} else if in.SalaryMin != nil {
		v := *in.SalaryMin
		j.SalaryMin = &v
	}
	if in.ClearSalaryMax {
		j.SalaryMax = nil
	} else if in.SalaryMax != nil {
		v := *in.SalaryMax
		j.SalaryMax = &v
	}
	if in.Description != nil {
		j.Description = *in.Description
	}

	if (j.SalaryMin != nil && *j.SalaryMin < 0) || (j.SalaryMax != nil && *j.SalaryMax < 0) {
		return fmt.Errorf("%w: salary cannot be negative", domain.ErrInvalidInput)
	}
	if j.SalaryMin != nil && j.SalaryMax != nil && *j.SalaryMin > *j.SalaryMax {
		return fmt.Errorf("%w: salary_min cannot exceed salary_max", domain.ErrInvalidInput)
	}

	if refsChanged {
		return s.refs.check(ctx, domain.CategoryJobListing, j.CityID, j.CategoryID)
	}
	return nil
}

func (s *JobListingService) Get(ctx context.Context, id int64) (*domain.JobListing, error) {
	return s.jobs.FindByID(ctx, id)
}

func (s *JobListingService) List(ctx context.Context, f ports.JobListingFilter) (*ports.JobListingPage, error) {
	if !validOrdering(f.Ordering, "salary_min", "salary_max", "creation_date") {
		return nil, fmt.Errorf("%w: unsupported ordering %q", domain.ErrInvalidInput, f.Ordering)
	}
	f.Limit, f.Offset = normalizePage(f.Limit, f.Offset)

	items, total, err := s.jobs.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list job listings: %w", err)
	}
	return &ports.JobListingPage{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func (s *JobListingService) owned(ctx context.Context, accountID, id int64) (*domain.JobListing, error) {
	j, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.UserID != accountID {
		return nil, domain.ErrForbidden
	}
	return j, nil
}

func (s *JobListingService) Update(ctx context.Context, accountID, id int64, in ports.JobListingInput) (*domain.JobListing, error) {
	j, err := s.owned(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, j, in, false); err != nil {
		return nil, err
	}
	updated, err := s.jobs.Update(ctx, j)
	if err != nil {
		return nil, fmt.Errorf("update job listing: %w", err)
	}
	return updated, nil
}

func (s *JobListingService) Delete(ctx context.Context, accountID, id int64) error {
	if _, err := s.owned(ctx, accountID, id); err != nil {
		return err
	}
	if err := s.jobs.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete job listing: %w", err)
	}
	if err := s.favourites.RemoveItem(ctx, domain.FavouriteJobListing, id); err != nil {
		s.log.Warn().Err(err).Int64("job_listing_id", id).Msg("failed to clean up favourites of deleted job listing")
	}
	return nil
}
