package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

// GeoHandler serves the region, city and category reference data.
type GeoHandler struct {
	geo ports.GeoService
}

func NewGeoHandler(geo ports.GeoService) *GeoHandler {
	return &GeoHandler{geo: geo}
}

// Regions lists every region with its cities.
//
// @Summary      Regions with cities
// @Tags         geo
// @Produce      json
// @Success      200  {array}  domain.RegionWithCities
// @Router       /regions [get]
func (h *GeoHandler) Regions(c echo.Context) error {
	regions, err := h.geo.RegionsWithCities(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, regions)
}

// Cities lists cities, optionally limited to one region by name.
//
// @Summary      Cities
// @Tags         geo
// @Produce      json
// @Param        region  query     string  false  "Region name"
// @Success      200     {array}   domain.City
// @Failure      404     {object}  errorBody
// @Router       /cities [get]
func (h *GeoHandler) Cities(c echo.Context) error {
	cities, err := h.geo.Cities(c.Request().Context(), c.QueryParam("region"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cities)
}

// ListingCategories lists the categories of classified listings.
//
// @Summary      Listing categories
// @Tags         geo
// @Produce      json
// @Success      200  {array}  domain.Category
// @Router       /categories/listings [get]
func (h *GeoHandler) ListingCategories(c echo.Context) error {
	return h.categories(c, domain.CategoryListing)
}

// JobListingCategories lists the categories of job listings.
//
// @Summary      Job listing categories
// @Tags         geo
// @Produce      json
// @Success      200  {array}  domain.Category
// @Router       /categories/job-listings [get]
func (h *GeoHandler) JobListingCategories(c echo.Context) error {
	return h.categories(c, domain.CategoryJobListing)
}

func (h *GeoHandler) categories(c echo.Context, kind domain.CategoryKind) error {
	categories, err := h.geo.Categories(c.Request().Context(), kind)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categories)
}
