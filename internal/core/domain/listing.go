package domain

import "time"

// CategoryKind separates listing categories from job categories.
type CategoryKind string

const (
	CategoryListing    CategoryKind = "listing"
	CategoryJobListing CategoryKind = "job_listing"
)

// Category groups listings; Icon names the icon the frontend renders.
type Category struct {
	ID   int64        `json:"id" bson:"_id"`
	Kind CategoryKind `json:"kind" bson:"kind"`
	Name string       `json:"name" bson:"name"`
	Icon string       `json:"icon" bson:"icon"`
}

// Listing is a classified offer published by a user.
type Listing struct {
	ID           int64
	UserID       int64
	CityID       int64
	CategoryID   int64
	Name         string
	Price        *float64
	Description  string
	ImageKey     string
	CreationDate time.Time
}

// JobListing is a job offer published by a user.
type JobListing struct {
	ID           int64
	UserID       int64
	CityID       int64
	CategoryID   int64
	Title        string
	SalaryMin    *float64
	SalaryMax    *float64
	Description  string
	CreationDate time.Time
}
