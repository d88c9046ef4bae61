package service

import (
	"context"
	"fmt"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// referenceChecker verifies the city and category ids a listing points at.
type referenceChecker struct {
	geo        ports.GeoRepository
	categories ports.CategoryRepository
}

func (r referenceChecker) check(ctx context.Context, kind domain.CategoryKind, cityID, categoryID int64) error {
	ok, err := r.geo.CityExists(ctx, cityID)
	if err != nil {
		return fmt.Errorf("check city: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: city %d does not exist", domain.ErrInvalidReference, cityID)
	}

	ok, err = r.categories.Exists(ctx, kind, categoryID)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: category %d does not exist", domain.ErrInvalidReference, categoryID)
	}
	return nil
}

// normalizePage clamps limit into [1, maxPageLimit] and offset to >= 0.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// validOrdering reports whether ordering is empty or one of the allowed
// fields, optionally prefixed with "-" for descending order.
func validOrdering(ordering string, allowed ...string) bool {
	if ordering == "" {
		return true
	}
	field := ordering
	if field[0] == '-' {
		field = field[1:]
	}
	for _, a := range allowed {
		if field == a {
			return true
		}
	}
	return false
}
