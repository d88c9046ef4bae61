package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

// ContactHandler resolves chat contacts and edits the caller's friend set.
type ContactHandler struct {
	contacts ports.ContactService
}

func NewContactHandler(contacts ports.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// friendRequest names the friend by account id ("42") or username.
type friendRequest struct {
	Identity string `json:"identity" validate:"required"`
}

func contactResponse(ct *domain.Contact) *domain.Contact {
	if ct.Friends == nil {
		ct.Friends = []int64{}
	}
	return ct
}

// Me returns the caller's contact, creating it on first use.
//
// @Summary      Caller's contact
// @Tags         contacts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Contact
// @Router       /contacts/me [get]
func (h *ContactHandler) Me(c echo.Context) error {
	accountID, err := actorID(c)
	if err != nil {
		return err
	}

	ct, err := h.contacts.ResolveOrCreate(c.Request().Context(), domain.ContactIdentity{AccountID: accountID})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contactResponse(ct))
}

// Resolve returns the contact of an account given by id or username.
//
// @Summary      Resolve a contact
// @Tags         contacts
// @Produce      json
// @Security     BearerAuth
// @Param        identity  path      string  true  "Account id or username"
// @Success      200       {object}  domain.Contact
// @Failure      404       {object}  errorBody
// @Router       /contacts/{identity} [get]
func (h *ContactHandler) Resolve(c echo.Context) error {
	if _, err := actorID(c); err != nil {
		return err
	}

	ct, err := h.contacts.ResolveOrCreate(c.Request().Context(), domain.ParseContactIdentity(c.Param("identity")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contactResponse(ct))
}

// AddFriend adds a contact to the caller's friend set.
//
// @Summary      Add a friend
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      friendRequest  true  "Friend identity"
// @Success      200   {object}  domain.Contact
// @Failure      404   {object}  errorBody
// @Failure      422   {object}  errorBody
// @Router       /contacts/me/friends [post]
func (h *ContactHandler) AddFriend(c echo.Context) error {
	accountID, err := actorID(c)
	if err != nil {
		return err
	}

	var req friendRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ct, err := h.contacts.AddFriend(c.Request().Context(), accountID, domain.ParseContactIdentity(req.Identity))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contactResponse(ct))
}

// RemoveFriend drops a contact from the caller's friend set.
//
// @Summary      Remove a friend
// @Tags         contacts
// @Produce      json
// @Security     BearerAuth
// @Param        identity  path      string  true  "Account id or username"
// @Success      200       {object}  domain.Contact
// @Failure      404       {object}  errorBody
// @Router       /contacts/me/friends/{identity} [delete]
func (h *ContactHandler) RemoveFriend(c echo.Context) error {
	accountID, err := actorID(c)
	if err != nil {
		return err
	}

	ct, err := h.contacts.RemoveFriend(c.Request().Context(), accountID, domain.ParseContactIdentity(c.Param("identity")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contactResponse(ct))
}
