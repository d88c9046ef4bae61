package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/onlinemarketplace/marketplace-api/internal/api/middleware"
	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

// Stubs embed the port interface so tests only implement what they call;
// anything else panics on the nil embedded value.

type stubAccountService struct {
	ports.AccountService
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*domain.Account, error)
	authenticateFn   func(ctx context.Context, identifier, password string) (*ports.AuthResult, error)
	verifyFn         func(ctx context.Context, id int64, hash string) error
	changePasswordFn func(ctx context.Context, id int64, oldPassword, newPassword string) error
	updateProfileFn  func(ctx context.Context, id int64, in ports.UpdateProfileInput) (*domain.Account, error)
}

func (s *stubAccountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAccountService) Authenticate(ctx context.Context, identifier, password string) (*ports.AuthResult, error) {
	return s.authenticateFn(ctx, identifier, password)
}

func (s *stubAccountService) Verify(ctx context.Context, id int64, hash string) error {
	return s.verifyFn(ctx, id, hash)
}

func (s *stubAccountService) ChangePassword(ctx context.Context, id int64, oldPassword, newPassword string) error {
	return s.changePasswordFn(ctx, id, oldPassword, newPassword)
}

func (s *stubAccountService) UpdateProfile(ctx context.Context, id int64, in ports.UpdateProfileInput) (*domain.Account, error) {
	return s.updateProfileFn(ctx, id, in)
}

type stubListingService struct {
	ports.ListingService
	listFn   func(ctx context.Context, f ports.ListingFilter) (*ports.ListingPage, error)
	createFn func(ctx context.Context, accountID int64, in ports.ListingInput) (*domain.Listing, error)
	updateFn func(ctx context.Context, accountID, id int64, in ports.ListingInput) (*domain.Listing, error)
}

func (s *stubListingService) List(ctx context.Context, f ports.ListingFilter) (*ports.ListingPage, error) {
	return s.listFn(ctx, f)
}

func (s *stubListingService) Create(ctx context.Context, accountID int64, in ports.ListingInput) (*domain.Listing, error) {
	return s.createFn(ctx, accountID, in)
}

func (s *stubListingService) Update(ctx context.Context, accountID, id int64, in ports.ListingInput) (*domain.Listing, error) {
	return s.updateFn(ctx, accountID, id, in)
}

type stubJobListingService struct {
	ports.JobListingService
	updateFn func(ctx context.Context, accountID, id int64, in ports.JobListingInput) (*domain.JobListing, error)
}

func (s *stubJobListingService) Update(ctx context.Context, accountID, id int64, in ports.JobListingInput) (*domain.JobListing, error) {
	return s.updateFn(ctx, accountID, id, in)
}

type stubFavouriteService struct {
	ports.FavouriteService
	addFn    func(ctx context.Context, kind domain.FavouriteKind, accountID, itemID int64) error
	removeFn func(ctx context.Context, kind domain.FavouriteKind, accountID, itemID int64) error
	listFn   func(ctx context.Context, kind domain.FavouriteKind, accountID int64) (*ports.FavouriteList, error)
}

func (s *stubFavouriteService) Add(ctx context.Context, kind domain.FavouriteKind, accountID, itemID int64) error {
	return s.addFn(ctx, kind, accountID, itemID)
}

func (s *stubFavouriteService) Remove(ctx context.Context, kind domain.FavouriteKind, accountID, itemID int64) error {
	return s.removeFn(ctx, kind, accountID, itemID)
}

func (s *stubFavouriteService) List(ctx context.Context, kind domain.FavouriteKind, accountID int64) (*ports.FavouriteList, error) {
	return s.listFn(ctx, kind, accountID)
}

type stubContactService struct {
	ports.ContactService
	resolveFn func(ctx context.Context, identity domain.ContactIdentity) (*domain.Contact, error)
}

func (s *stubContactService) ResolveOrCreate(ctx context.Context, identity domain.ContactIdentity) (*domain.Contact, error) {
	return s.resolveFn(ctx, identity)
}

type stubChatService struct {
	ports.ChatService
	createFn   func(ctx context.Context, accountID int64, participants []domain.ContactIdentity) (*ports.ChatDetail, error)
	messagesFn func(ctx context.Context, accountID, chatID int64, limit int) ([]*domain.Message, error)
}

func (s *stubChatService) Create(ctx context.Context, accountID int64, participants []domain.ContactIdentity) (*ports.ChatDetail, error) {
	return s.createFn(ctx, accountID, participants)
}

func (s *stubChatService) Messages(ctx context.Context, accountID, chatID int64, limit int) ([]*domain.Message, error) {
	return s.messagesFn(ctx, accountID, chatID, limit)
}

// request builds an echo context with the validator installed. accountID 0
// means the request is anonymous.
type request struct {
	method    string
	target    string
	body      string
	accountID int64
	params    map[string]string
}

func (r request) context(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	// Reserve path parameter slots so SetParamValues keeps every value.
	e.GET("/_/:p1/:p2", func(echo.Context) error { return nil })

	var body io.Reader
	if r.body != "" {
		body = strings.NewReader(r.body)
	}
	req := httptest.NewRequest(r.method, r.target, body)
	if r.body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if r.accountID != 0 {
		c.Set(middleware.AccountIDKey, r.accountID)
	}
	if len(r.params) > 0 {
		names := make([]string, 0, len(r.params))
		values := make([]string, 0, len(r.params))
		for k, v := range r.params {
			names = append(names, k)
			values = append(values, v)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	return c, rec
}

func float64Ptr(v float64) *float64 { return &v }
