package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onlinemarketplace/marketplace-api/internal/api/metrics"
	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

// ListingHandler serves classified listings and their images.
type ListingHandler struct {
	listings ports.ListingService
}

func NewListingHandler(listings ports.ListingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

type createListingRequest struct {
	CityID      int64    `json:"city_id" validate:"required,gt=0"`
	CategoryID  int64    `json:"category_id" validate:"required,gt=0"`
	Name        string   `json:"name" validate:"required,max=30"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Description string   `json:"description" validate:"max=1500"`
}

type updateListingRequest struct {
	CityID      *int64        `json:"city_id" validate:"omitempty,gt=0"`
	CategoryID  *int64        `json:"category_id" validate:"omitempty,gt=0"`
	Name        *string       `json:"name" validate:"omitempty,min=1,max=30"`
	Price       nullableFloat `json:"price"`
	Description *string       `json:"description" validate:"omitempty,max=1500"`
}

type imageUploadResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
}

type imageURLResponse struct {
	URL string `json:"url"`
}

// List searches listings.
//
// @Summary      Search listings
// @Tags         listings
// @Produce      json
// @Param        city_id      query     int     false  "City id"
// @Param        user_id      query     int     false  "Owner account id"
// @Param        category_id  query     int     false  "Category id"
// @Param        search       query     string  false  "Substring of the name"
// @Param        ordering     query     string  false  "price, -price, creation_date, -creation_date"
// @Param        limit        query     int     false  "Page size (max 100)"
// @Param        offset       query     int     false  "Page offset"
// @Success      200          {object}  pageResponse[listingResponse]
// @Failure      400          {object}  errorBody
// @Router       /listings [get]
func (h *ListingHandler) List(c echo.Context) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}

	page, err := h.listings.List(c.Request().Context(), ports.ListingFilter{
		CityID:     q.CityID,
		UserID:     q.UserID,
		CategoryID: q.CategoryID,
		Search:     q.Search,
		Ordering:   q.Ordering,
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, pageResponse[listingResponse]{
		Count:   page.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		Results: toListingResponses(page.Items),
	})
}

// Get returns a single listing.
//
// @Summary      Get a listing
// @Tags         listings
// @Produce      json
// @Param        id   path      int  true  "Listing id"
// @Success      200  {object}  listingResponse
// @Failure      404  {object}  errorBody
// @Router       /listings/{id} [get]
func (h *ListingHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	l, err := h.listings.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListingResponse(l))
}

// Create publishes a listing owned by the caller.
//
// @Summary      Create a listing
// @Tags         listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createListingRequest  true  "Listing"
// @Success      201   {object}  listingResponse
// @Failure      400   {object}  errorBody
// @Failure      422   {object}  errorBody
// @Router       /listings [post]
func (h *ListingHandler) Create(c echo.Context) error {
	accountID, err := actorID(c)
	if err != nil {
		return err
	}

	var req createListingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	l, err := h.listings.Create(c.Request().Context(), accountID, ports.ListingInput{
		CityID:      &req.CityID,
		CategoryID:  &req.CategoryID,
		Name:        &req.Name,
		Price:       req.Price,
		Description: &req.Description,
	})
	if err != nil {
		return err
	}

	metrics.ListingsCreatedTotal.WithLabelValues(string(domain.FavouriteListing)).Inc()
	return c.JSON(http.StatusCreated, toListingResponse(l))
}

// Update changes a listing owned by the caller. An explicit "price": null clears the price.
//
// @Summary      Update a listing
// @Tags         listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                   true  "Listing id"
// @Param        body  body      updateListingRequest  true  "Fields to change"
// @Success      200   {object}  listingResponse
// @Failure      403   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Router       /listings/{id} [patch]
func (h *ListingHandler) Update(c echo.Context) error {
	accountID, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req updateListingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := ports.ListingInput{
		CityID:      req.CityID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Price.Set {
		in.Price = req.Price.Value
		in.ClearPrice = req.Price.Value == nil
	}

	l, err := h.listings.Update(c.Request().Context(), accountID, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListingResponse(l))
}

// Delete removes a listing owned by the caller.
//
// @Summary      Delete a listing
// @Tags         listings
// @Security     BearerAuth
// @Param        id   path  int  true  "Listing id"
// @Success      204
// @Failure      403  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /listings/{id} [delete]
func (h *ListingHandler) Delete(c echo.Context) error {
	accountID, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.listings.Delete(c.Request().Context(), accountID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RequestImageUpload returns a presigned URL the owner PUTs the image to.
//
// @Summary      Request an image upload URL
// @Tags         listings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Listing id"
// @Success      201  {object}  imageUploadResponse
// @Failure      403  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /listings/{id}/image [post]
func (h *ListingHandler) RequestImageUpload(c echo.Context) error {
	accountID, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	upload, err := h.listings.RequestImageUpload(c.Request().Context(), accountID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, imageUploadResponse{Key: upload.Key, UploadURL: upload.UploadURL})
}

// Image returns a presigned download URL for the listing image.
//
// @Summary      Get the listing image URL
// @Tags         listings
// @Produce      json
// @Param        id   path      int  true  "Listing id"
// @Success      200  {object}  imageURLResponse
// @Failure      404  {object}  errorBody
// @Router       /listings/{id}/image [get]
func (h *ListingHandler) Image(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	url, err := h.listings.ImageURL(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, imageURLResponse{URL: url})
}
