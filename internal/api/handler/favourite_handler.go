package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onlinemarketplace/marketplace-api/internal/api/metrics"
	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

// FavouriteHandler serves the caller's favourites. Each method returns the
// handler for one favourite kind, so the same code backs both route groups.
type FavouriteHandler struct {
	favourites ports.FavouriteService
}

func NewFavouriteHandler(favourites ports.FavouriteService) *FavouriteHandler {
	return &FavouriteHandler{favourites: favourites}
}

// addFavouriteRequest ignores any user id in the body; the owner is always the caller.
type addFavouriteRequest struct {
	ItemID int64 `json:"item_id" validate:"required,gt=0"`
}

type favouriteResponse struct {
	ItemID int64  `json:"item_id"`
	Kind   string `json:"kind"`
}

// List returns the caller's favourite items of the given kind.
//
// @Summary      List favourites
// @Tags         favourites
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  listingResponse
// @Router       /favourites/listings [get]
// @Router       /favourites/job-listings [get]
func (h *FavouriteHandler) List(kind domain.FavouriteKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		accountID, err := actorID(c)
		if err != nil {
			return err
		}

		list, err := h.favourites.List(c.Request().Context(), kind, accountID)
		if err != nil {
			return err
		}
		if kind == domain.FavouriteJobListing {
			return c.JSON(http.StatusOK, toJobListingResponses(list.JobListings))
		}
		return c.JSON(http.StatusOK, toListingResponses(list.Listings))
	}
}

// Add bookmarks an item for the caller.
//
// @Summary      Add a favourite
// @Tags         favourites
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addFavouriteRequest  true  "Item to bookmark"
// @Success      201   {object}  favouriteResponse
// @Failure      400   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Router       /favourites/listings [post]
// @Router       /favourites/job-listings [post]
func (h *FavouriteHandler) Add(kind domain.FavouriteKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		accountID, err := actorID(c)
		if err != nil {
			return err
		}

		var req addFavouriteRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}

		if err := h.favourites.Add(c.Request().Context(), kind, accountID, req.ItemID); err != nil {
			return err
		}

		metrics.FavouritesAddedTotal.WithLabelValues(string(kind)).Inc()
		return c.JSON(http.StatusCreated, favouriteResponse{ItemID: req.ItemID, Kind: string(kind)})
	}
}

// Remove drops one of the caller's favourites.
//
// @Summary      Remove a favourite
// @Tags         favourites
// @Security     BearerAuth
// @Param        item_id  path  int  true  "Item id"
// @Success      204
// @Failure      404  {object}  errorBody
// @Router       /favourites/listings/{item_id} [delete]
// @Router       /favourites/job-listings/{item_id} [delete]
func (h *FavouriteHandler) Remove(kind domain.FavouriteKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		accountID, err := actorID(c)
		if err != nil {
			return err
		}
		itemID, err := pathID(c, "item_id")
		if err != nil {
			return err
		}

		if err := h.favourites.Remove(c.Request().Context(), kind, accountID, itemID); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}
