package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

// AccountHandler serves the authenticated caller's own account.
type AccountHandler struct {
	accounts ports.AccountService
}

func NewAccountHandler(accounts ports.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type updateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,min=1,max=15"`
	Email    *string `json:"email" validate:"omitempty,email,max=320"`
}

// Get returns the caller's public account data.
//
// @Summary      Current account
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.AccountView
// @Failure      401  {object}  errorBody
// @Router       /current-user [get]
func (h *AccountHandler) Get(c echo.Context) error {
	accountID, err := actorID(c)
	if err != nil {
		return err
	}

	account, err := h.accounts.Get(c.Request().Context(), accountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account.Public())
}

// Update changes the caller's username and/or email.
//
// @Summary      Update current account
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  domain.AccountView
// @Failure      400   {object}  errorBody
// @Failure      409   {object}  errorBody
// @Router       /current-user [patch]
func (h *AccountHandler) Update(c echo.Context) error {
	accountID, err := actorID(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.accounts.UpdateProfile(c.Request().Context(), accountID, ports.UpdateProfileInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account.Public())
}

// Delete removes the caller's account.
//
// @Summary      Delete current account
// @Tags         account
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorBody
// @Router       /current-user [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	accountID, err := actorID(c)
	if err != nil {
		return err
	}

	if err := h.accounts.Delete(c.Request().Context(), accountID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
