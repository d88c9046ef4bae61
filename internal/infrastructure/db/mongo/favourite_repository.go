package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
)

// FavouriteRepository keeps one collection per favourite kind, each with a
// unique (user_id, item_id) index.
type FavouriteRepository struct {
	cols map[domain.FavouriteKind]*mongo.Collection
}

func NewFavouriteRepository(db *mongo.Database) *FavouriteRepository {
	return &FavouriteRepository{cols: map[domain.FavouriteKind]*mongo.Collection{
		domain.FavouriteListing:    db.Collection(collectionFavouriteListings),
		domain.FavouriteJobListing: db.Collection(collectionFavouriteJobs),
	}}
}

type favouriteDoc struct {
	UserID    int64     `bson:"user_id"`
	ItemID    int64     `bson:"item_id"`
	CreatedAt time.Time `bson:"created_at"`
}

func (r *FavouriteRepository) col(kind domain.FavouriteKind) (*mongo.Collection, error) {
	c, ok := r.cols[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown favourite kind %q", domain.ErrInvalidInput, kind)
	}
	return c, nil
}

func (r *FavouriteRepository) Add(ctx context.Context, fav *domain.Favourite) error {
	col, err := r.col(fav.Kind)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err = col.InsertOne(ctx, favouriteDoc{UserID: fav.UserID, ItemID: fav.ItemID, CreatedAt: fav.CreatedAt})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyFavourited
		}
		return fmt.Errorf("insert favourite: %w", err)
	}
	return nil
}

func (r *FavouriteRepository) Remove(ctx context.Context, kind domain.FavouriteKind, userID, itemID int64) error {
	col, err := r.col(kind)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := col.DeleteOne(ctx, bson.M{"user_id": userID, "item_id": itemID})
	if err != nil {
		return fmt.Errorf("delete favourite: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrFavouriteNotFound
	}
	return nil
}

func (r *FavouriteRepository) ItemIDs(ctx context.Context, kind domain.FavouriteKind, userID int64) ([]int64, error) {
	col, err := r.col(kind)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetProjection(bson.M{"item_id": 1}).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find favourites: %w", err)
	}
	defer cur.Close(ctx)

	var docs []favouriteDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode favourites: %w", err)
	}
	ids := make([]int64, len(docs))
	for i, d := range docs {
		ids[i] = d.ItemID
	}
	return ids, nil
}

func (r *FavouriteRepository) RemoveItem(ctx context.Context, kind domain.FavouriteKind, itemID int64) error {
	col, err := r.col(kind)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := col.DeleteMany(ctx, bson.M{"item_id": itemID}); err != nil {
		return fmt.Errorf("delete item favourites: %w", err)
	}
	return nil
}
