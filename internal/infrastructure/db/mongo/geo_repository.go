package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
)

var byName = options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

type GeoRepository struct {
	regions *mongo.Collection
	cities  *mongo.Collection
}

func NewGeoRepository(db *mongo.Database) *GeoRepository {
	return &GeoRepository{
		regions: db.Collection(collectionRegions),
		cities:  db.Collection(collectionCities),
	}
}

func (r *GeoRepository) ListRegions(ctx context.Context) ([]domain.Region, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cur, err := r.regions.Find(ctx, bson.M{}, byName)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	out := []domain.Region{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode regions: %w", err)
	}
	return out, nil
}

func (r *GeoRepository) FindRegionByName(ctx context.Context, name string) (*domain.Region, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var region domain.Region
	if err := r.regions.FindOne(ctx, bson.M{"name": name}).Decode(&region); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRegionNotFound
		}
		return nil, fmt.Errorf("find region: %w", err)
	}
	return &region, nil
}

func (r *GeoRepository) ListCities(ctx context.Context, regionID *int64) ([]domain.City, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if regionID != nil {
		filter["region_id"] = *regionID
	}
	cur, err := r.cities.Find(ctx, filter, byName)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	out := []domain.City{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode cities: %w", err)
	}
	return out, nil
}

func (r *GeoRepository) CityExists(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	n, err := r.cities.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count cities: %w", err)
	}
	return n > 0, nil
}

// CategoryRepository keeps listing and job categories in separate collections
// so their ids are independent.
type CategoryRepository struct {
	cols map[domain.CategoryKind]*mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{cols: map[domain.CategoryKind]*mongo.Collection{
		domain.CategoryListing:    db.Collection(collectionListingCategories),
		domain.CategoryJobListing: db.Collection(collectionJobCategories),
	}}
}

func (r *CategoryRepository) col(kind domain.CategoryKind) (*mongo.Collection, error) {
	c, ok := r.cols[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown category kind %q", domain.ErrInvalidInput, kind)
	}
	return c, nil
}

func (r *CategoryRepository) List(ctx context.Context, kind domain.CategoryKind) ([]domain.Category, error) {
	col, err := r.col(kind)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cur, err := col.Find(ctx, bson.M{}, byName)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := []domain.Category{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	for i := range out {
		out[i].Kind = kind
	}
	return out, nil
}

func (r *CategoryRepository) Exists(ctx context.Context, kind domain.CategoryKind, id int64) (bool, error) {
	col, err := r.col(kind)
	if err != nil {
		return false, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	n, err := col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count categories: %w", err)
	}
	return n > 0, nil
}
