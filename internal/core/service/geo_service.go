package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

// GeoService serves regions, cities and categories.
type GeoService struct {
	geo        ports.GeoRepository
	categories ports.CategoryRepository
}

func NewGeoService(geo ports.GeoRepository, categories ports.CategoryRepository) *GeoService {
	return &GeoService{geo: geo, categories: categories}
}

// RegionsWithCities nests each region's cities under it; both levels are
// ordered by name.
func (s *GeoService) RegionsWithCities(ctx context.Context) ([]domain.RegionWithCities, error) {
	regions, err := s.geo.ListRegions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	cities, err := s.geo.ListCities(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}

	byRegion := make(map[int64][]domain.City, len(regions))
	for _, c := range cities {
		byRegion[c.RegionID] = append(byRegion[c.RegionID], c)
	}

	out := make([]domain.RegionWithCities, len(regions))
	for i, r := range regions {
		cs := byRegion[r.ID]
		if cs == nil {
			cs = []domain.City{}
		}
		out[i] = domain.RegionWithCities{Region: r, Cities: cs}
	}
	return out, nil
}

// Cities lists cities, restricted to the named region when regionName is set.
func (s *GeoService) Cities(ctx context.Context, regionName string) ([]domain.City, error) {
	regionName = strings.TrimSpace(regionName)
	if regionName == "" {
		return s.geo.ListCities(ctx, nil)
	}
	region, err := s.geo.FindRegionByName(ctx, regionName)
	if err != nil {
		return nil, err
	}
	return s.geo.ListCities(ctx, &region.ID)
}

func (s *GeoService) Categories(ctx context.Context, kind domain.CategoryKind) ([]domain.Category, error) {
	if kind != domain.CategoryListing && kind != domain.CategoryJobListing {
		return nil, fmt.Errorf("%w: unknown category kind %q", domain.ErrInvalidInput, kind)
	}
	return s.categories.List(ctx, kind)
}
