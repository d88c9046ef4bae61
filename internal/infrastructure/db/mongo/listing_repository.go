package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

type ListingRepository struct {
	col *mongo.Collection
	ids IDSource
}

func NewListingRepository(db *mongo.Database, ids IDSource) *ListingRepository {
	return &ListingRepository{col: db.Collection(collectionListings), ids: ids}
}

type listingDoc struct {
	ID           int64     `bson:"_id"`
	UserID       int64     `bson:"user_id"`
	CityID       int64     `bson:"city_id"`
	CategoryID   int64     `bson:"category_id"`
	Name         string    `bson:"name"`
	Price        *float64  `bson:"price"`
	Description  string    `bson:"description"`
	ImageKey     string    `bson:"image_key,omitempty"`
	CreationDate time.Time `bson:"creation_date"`
}

func (d listingDoc) toDomain() *domain.Listing {
	return &domain.Listing{
		ID:           d.ID,
		UserID:       d.UserID,
		CityID:       d.CityID,
		CategoryID:   d.CategoryID,
		Name:         d.Name,
		Price:        d.Price,
		Description:  d.Description,
		ImageKey:     d.ImageKey,
		CreationDate: d.CreationDate,
	}
}

func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) (*domain.Listing, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	doc := listingDoc{
		ID:           r.ids.Next(),
		UserID:       l.UserID,
		CityID:       l.CityID,
		CategoryID:   l.CategoryID,
		Name:         l.Name,
		Price:        l.Price,
		Description:  l.Description,
		CreationDate: l.CreationDate,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert listing: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id int64) (*domain.Listing, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var doc listingDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("find listing: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ListingRepository) FindByIDs(ctx context.Context, ids []int64) ([]*domain.Listing, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetSort(bson.D{{Key: "creation_date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}
	return decodeListings(ctx, cur)
}

// List returns one page matching f and the total number of matches.
func (r *ListingRepository) List(ctx context.Context, f ports.ListingFilter) ([]*domain.Listing, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := searchFilter(f.CityID, f.UserID, f.CategoryID, "name", f.Search)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	cur, err := r.col.Find(ctx, filter, pageOptions(f.Ordering, f.Limit, f.Offset))
	if err != nil {
		return nil, 0, fmt.Errorf("list listings: %w", err)
	}
	items, err := decodeListings(ctx, cur)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func decodeListings(ctx context.Context, cur *mongo.Cursor) ([]*domain.Listing, error) {
	defer cur.Close(ctx)

	var docs []listingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}
	out := make([]*domain.Listing, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// Update writes the mutable fields; owner, image and creation date stay.
func (r *ListingRepository) Update(ctx context.Context, l *domain.Listing) (*domain.Listing, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	set := bson.M{
		"city_id":     l.CityID,
		"category_id": l.CategoryID,
		"name":        l.Name,
		"price":       l.Price,
		"description": l.Description,
	}
	var doc listingDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": l.ID}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("update listing: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ListingRepository) SetImageKey(ctx context.Context, id int64, key string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"image_key": key}})
	if err != nil {
		return fmt.Errorf("set image key: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}
