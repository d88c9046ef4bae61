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

type JobListingRepository struct {
	col *mongo.Collection
	ids IDSource
}

func NewJobListingRepository(db *mongo.Database, ids IDSource) *JobListingRepository {
	return &JobListingRepository{col: db.Collection(collectionJobListings), ids: ids}
}

type jobListingDoc struct {
	ID           int64     `bson:"_id"`
	UserID       int64     `bson:"user_id"`
	CityID       int64     `bson:"city_id"`
	CategoryID   int64     `bson:"category_id"`
	Title        string    `bson:"title"`
	SalaryMin    *float64  `bson:"salary_min"`
	SalaryMax    *float64  `bson:"salary_max"`
	Description  string    `bson:"description"`
	CreationDate time.Time `bson:"creation_date"`
}

func (d jobListingDoc) toDomain() *domain.JobListing {
	return &domain.JobListing{
		ID:           d.ID,
		UserID:       d.UserID,
		CityID:       d.CityID,
		CategoryID:   d.CategoryID,
		Title:        d.Title,
		SalaryMin:    d.SalaryMin,
		SalaryMax:    d.SalaryMax,
		Description:  d.Description,
		CreationDate: d.CreationDate,
	}
}

func (r *JobListingRepository) Create(ctx context.Context, j *domain.JobListing) (*domain.JobListing, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	doc := jobListingDoc{
		ID:           r.ids.Next(),
		UserID:       j.UserID,
		CityID:       j.CityID,
		CategoryID:   j.CategoryID,
		Title:        j.Title,
		SalaryMin:    j.SalaryMin,
		SalaryMax:    j.SalaryMax,
		Description:  j.Description,
		CreationDate: j.CreationDate,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert job listing: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *JobListingRepository) FindByID(ctx context.Context, id int64) (*domain.JobListing, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var doc jobListingDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrJobListingNotFound
		}
		return nil, fmt.Errorf("find job listing: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *JobListingRepository) FindByIDs(ctx context.Context, ids []int64) ([]*domain.JobListing, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetSort(bson.D{{Key: "creation_date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find job listings: %w", err)
	}
	return decodeJobListings(ctx, cur)
}

func (r *JobListingRepository) List(ctx context.Context, f ports.JobListingFilter) ([]*domain.JobListing, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := searchFilter(f.CityID, f.UserID, f.CategoryID, "title", f.Search)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count job listings: %w", err)
	}

	cur, err := r.col.Find(ctx, filter, pageOptions(f.Ordering, f.Limit, f.Offset))
	if err != nil {
		return nil, 0, fmt.Errorf("list job listings: %w", err)
	}
	items, err := decodeJobListings(ctx, cur)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func decodeJobListings(ctx context.Context, cur *mongo.Cursor) ([]*domain.JobListing, error) {
	defer cur.Close(ctx)

	var docs []jobListingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode job listings: %w", err)
	}
	out := make([]*domain.JobListing, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *JobListingRepository) Update(ctx context.Context, j *domain.JobListing) (*domain.JobListing, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	set := bson.M{
		"city_id":     j.CityID,
		"category_id": j.CategoryID,
		"title":       j.Title,
		"salary_min":  j.SalaryMin,
		"salary_max":  j.SalaryMax,
		"description": j.Description,
	}
	var doc jobListingDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": j.ID}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrJobListingNotFound
		}
		return nil, fmt.Errorf("update job listing: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *JobListingRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete job listing: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrJobListingNotFound
	}
	return nil
}
