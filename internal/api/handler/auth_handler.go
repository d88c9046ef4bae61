package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onlinemarketplace/marketplace-api/internal/api/metrics"
	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

// AuthHandler serves registration, login, token refresh, email verification
// and password change.
type AuthHandler struct {
	accounts ports.AccountService
}

func NewAuthHandler(accounts ports.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,max=15"`
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required"`
}

type tokenRequest struct {
	UsernameOrEmail string `json:"username_or_email" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type tokenResponse struct {
	Access  string             `json:"access"`
	Refresh string             `json:"refresh"`
	User    domain.AccountView `json:"user"`
}

type verifyRequest struct {
	ID   int64  `query:"id" validate:"required,gt=0"`
	Hash string `query:"hash" validate:"required"`
}

type sendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

// Register creates a new, unverified account and queues the verification email.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  domain.AccountView
// @Failure      400   {object}  errorBody
// @Failure      409   {object}  errorBody
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	account, err := h.accounts.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registrationResult(err)).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, account.Public())
}

func registrationResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateIdentity):
		return "duplicate"
	case errors.Is(err, domain.ErrWeakCredential):
		return "weak_password"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}

// Token exchanges a username or email plus password for a token pair.
//
// @Summary      Obtain tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      tokenRequest  true  "Credentials"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorBody
// @Failure      401   {object}  errorBody
// @Router       /auth/token [post]
func (h *AuthHandler) Token(c echo.Context) error {
	var req tokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.accounts.Authenticate(c.Request().Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, newTokenResponse(res))
}

// Refresh issues a new token pair for a valid refresh token.
//
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  tokenResponse
// @Failure      401   {object}  errorBody
// @Router       /auth/token/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.accounts.Refresh(c.Request().Context(), req.Refresh)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newTokenResponse(res))
}

func newTokenResponse(res *ports.AuthResult) tokenResponse {
	return tokenResponse{
		Access:  res.Tokens.AccessToken,
		Refresh: res.Tokens.RefreshToken,
		User:    res.Account.Public(),
	}
}

// VerifyEmail confirms the address an account registered with.
//
// @Summary      Verify email
// @Tags         auth
// @Produce      json
// @Param        id    query     int     true  "Account id"
// @Param        hash  query     string  true  "Verification hash"
// @Success      200   {object}  detailResponse
// @Failure      400   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Router       /auth/email-verification/verify/ [get]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req verifyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.accounts.Verify(c.Request().Context(), req.ID, req.Hash); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detailResponse{Detail: "email verified"})
}

// SendVerification re-sends the verification email.
//
// @Summary      Re-send verification email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      sendVerificationRequest  true  "Registered email"
// @Success      200   {object}  detailResponse
// @Failure      400   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Failure      429   {object}  errorBody
// @Router       /auth/email-verification/send/ [post]
func (h *AuthHandler) SendVerification(c echo.Context) error {
	var req sendVerificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.accounts.ResendVerification(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detailResponse{Detail: "verification email sent"})
}

// ChangePassword replaces the caller's password after checking the old one.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Old and new password"
// @Success      200   {object}  detailResponse
// @Failure      400   {object}  errorBody
// @Failure      401   {object}  errorBody
// @Router       /auth/password/change/ [put]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	accountID, err := actorID(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.accounts.ChangePassword(c.Request().Context(), accountID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detailResponse{Detail: "password changed"})
}
