package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
)

type listingResponse struct {
	ID           int64    `json:"id"`
	UserID       int64    `json:"user_id"`
	CityID       int64    `json:"city_id"`
	CategoryID   int64    `json:"category_id"`
	Name         string   `json:"name"`
	Price        *float64 `json:"price"`
	Description  string   `json:"description"`
	HasImage     bool     `json:"has_image"`
	CreationDate string   `json:"creation_date"`
}

type jobListingResponse struct {
	ID           int64    `json:"id"`
	UserID       int64    `json:"user_id"`
	CityID       int64    `json:"city_id"`
	CategoryID   int64    `json:"category_id"`
	Title        string   `json:"title"`
	SalaryMin    *float64 `json:"salary_min"`
	SalaryMax    *float64 `json:"salary_max"`
	Description  string   `json:"description"`
	CreationDate string   `json:"creation_date"`
}

func toListingResponse(l *domain.Listing) listingResponse {
	return listingResponse{
		ID:           l.ID,
		UserID:       l.UserID,
		CityID:       l.CityID,
		CategoryID:   l.CategoryID,
		Name:         l.Name,
		Price:        l.Price,
		Description:  l.Description,
		HasImage:     l.ImageKey != "",
		CreationDate: l.CreationDate.UTC().Format(time.RFC3339),
	}
}

func toListingResponses(items []*domain.Listing) []listingResponse {
	out := make([]listingResponse, 0, len(items))
	for _, l := range items {
		out = append(out, toListingResponse(l))
	}
	return out
}

func toJobListingResponse(j *domain.JobListing) jobListingResponse {
	return jobListingResponse{
		ID:           j.ID,
		UserID:       j.UserID,
		CityID:       j.CityID,
		CategoryID:   j.CategoryID,
		Title:        j.Title,
		SalaryMin:    j.SalaryMin,
		SalaryMax:    j.SalaryMax,
		Description:  j.Description,
		CreationDate: j.CreationDate.UTC().Format(time.RFC3339),
	}
}

func toJobListingResponses(items []*domain.JobListing) []jobListingResponse {
	out := make([]jobListingResponse, 0, len(items))
	for _, j := range items {
		out = append(out, toJobListingResponse(j))
	}
	return out
}

// nullableFloat tells an absent JSON field apart from an explicit null.
type nullableFloat struct {
	Set   bool
	Value *float64
}

func (n *nullableFloat) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// listQuery holds the query parameters shared by the listing searches.
type listQuery struct {
	CityID     *int64
	UserID     *int64
	CategoryID *int64
	Search     string
	Ordering   string
	Limit      int
	Offset     int
}

func parseListQuery(c echo.Context) (listQuery, error) {
	var q listQuery
	var err error
	if q.CityID, err = optionalInt64(c, "city_id"); err != nil {
		return q, err
	}
	if q.UserID, err = optionalInt64(c, "user_id"); err != nil {
		return q, err
	}
	if q.CategoryID, err = optionalInt64(c, "category_id"); err != nil {
		return q, err
	}

	err = echo.QueryParamsBinder(c).
		String("search", &q.Search).
		String("ordering", &q.Ordering).
		Int("limit", &q.Limit).
		Int("offset", &q.Offset).
		BindError()
	if err != nil {
		return q, echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	return q, nil
}

func optionalInt64(c echo.Context, name string) (*int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &v, nil
}
