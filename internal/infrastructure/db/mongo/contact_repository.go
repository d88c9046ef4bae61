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

type ContactRepository struct {
	col *mongo.Collection
	ids IDSource
}

func NewContactRepository(db *mongo.Database, ids IDSource) *ContactRepository {
	return &ContactRepository{col: db.Collection(collectionContacts), ids: ids}
}

type contactDoc struct {
	ID      int64   `bson:"_id"`
	UserID  int64   `bson:"user_id"`
	Friends []int64 `bson:"friends"`
}

func (d contactDoc) toDomain() *domain.Contact {
	friends := d.Friends
	if friends == nil {
		friends = []int64{}
	}
	return &domain.Contact{ID: d.ID, UserID: d.UserID, Friends: friends}
}

// FindOrCreateByUserID upserts on the unique user_id index. Two upserts racing
// on a missing contact can both attempt the insert; the loser sees a duplicate
// key error and reads the winner's document.
func (r *ContactRepository) FindOrCreateByUserID(ctx context.Context, userID int64) (*domain.Contact, bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	newID := r.ids.Next()
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc contactDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"user_id": userID},
		bson.M{"$setOnInsert": bson.M{"_id": newID, "friends": bson.A{}}},
		opts,
	).Decode(&doc)
	if err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			return nil, false, fmt.Errorf("upsert contact: %w", err)
		}
		if err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc); err != nil {
			return nil, false, fmt.Errorf("reload contact: %w", err)
		}
		return doc.toDomain(), false, nil
	}
	return doc.toDomain(), doc.ID == newID, nil
}

func (r *ContactRepository) FindByID(ctx context.Context, id int64) (*domain.Contact, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var doc contactDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrContactNotFound
		}
		return nil, fmt.Errorf("find contact: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ContactRepository) FindByIDs(ctx context.Context, ids []int64) ([]*domain.Contact, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find contacts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []contactDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode contacts: %w", err)
	}
	out := make([]*domain.Contact, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *ContactRepository) AddFriend(ctx context.Context, contactID, friendID int64) (*domain.Contact, error) {
	return r.modifyFriends(ctx, contactID, bson.M{"$addToSet": bson.M{"friends": friendID}})
}

func (r *ContactRepository) RemoveFriend(ctx context.Context, contactID, friendID int64) (*domain.Contact, error) {
	return r.modifyFriends(ctx, contactID, bson.M{"$pull": bson.M{"friends": friendID}})
}

func (r *ContactRepository) modifyFriends(ctx context.Context, contactID int64, update bson.M) (*domain.Contact, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var doc contactDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": contactID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrContactNotFound
		}
		return nil, fmt.Errorf("update friends: %w", err)
	}
	return doc.toDomain(), nil
}
