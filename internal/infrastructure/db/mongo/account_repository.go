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
)

type AccountRepository struct {
	col *mongo.Collection
	ids IDSource
}

func NewAccountRepository(db *mongo.Database, ids IDSource) *AccountRepository {
	return &AccountRepository{col: db.Collection(collectionAccounts), ids: ids}
}

type accountDoc struct {
	ID                    int64      `bson:"_id"`
	Username              string     `bson:"username"`
	Email                 string     `bson:"email"`
	PasswordHash          string     `bson:"password_hash"`
	Active                bool       `bson:"is_active"`
	Staff                 bool       `bson:"is_staff"`
	Superuser             bool       `bson:"is_superuser"`
	EmailVerified         bool       `bson:"email_verified"`
	EmailVerificationHash string     `bson:"email_verification_hash"`
	DateJoined            time.Time  `bson:"date_joined"`
	LastLogin             *time.Time `bson:"last_login,omitempty"`
}

func toAccountDoc(a *domain.Account) accountDoc {
	return accountDoc{
		ID:                    a.ID,
		Username:              a.Username,
		Email:                 a.Email,
		PasswordHash:          a.PasswordHash,
		Active:                a.Active,
		Staff:                 a.Staff,
		Superuser:             a.Superuser,
		EmailVerified:         a.EmailVerified,
		EmailVerificationHash: a.EmailVerificationHash,
		DateJoined:            a.DateJoined,
		LastLogin:             a.LastLogin,
	}
}

func (d accountDoc) toDomain() *domain.Account {
	return &domain.Account{
		ID:                    d.ID,
		Username:              d.Username,
		Email:                 d.Email,
		PasswordHash:          d.PasswordHash,
		Active:                d.Active,
		Staff:                 d.Staff,
		Superuser:             d.Superuser,
		EmailVerified:         d.EmailVerified,
		EmailVerificationHash: d.EmailVerificationHash,
		DateJoined:            d.DateJoined,
		LastLogin:             d.LastLogin,
	}
}

// Create inserts the account under a fresh id. The unique username and email
// indexes reject duplicates with domain.ErrDuplicateIdentity.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	doc := toAccountDoc(a)
	doc.ID = r.ids.Next()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var doc accountDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *AccountRepository) set(ctx context.Context, id int64, fields bson.M) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return r.set(ctx, id, bson.M{"password_hash": hash})
}

func (r *AccountRepository) MarkEmailVerified(ctx context.Context, id int64) error {
	return r.set(ctx, id, bson.M{"email_verified": true})
}

func (r *AccountRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.set(ctx, id, bson.M{"last_login": at})
}

func (r *AccountRepository) UpdateProfile(ctx context.Context, id int64, username, email string) (*domain.Account, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc accountDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"username": username, "email": email}},
		opts,
	).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, domain.ErrAccountNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, domain.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
