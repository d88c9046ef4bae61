package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

type accountFixture struct {
	repo     *stubAccountRepo
	mailer   *stubMailer
	throttle *stubThrottle
	svc      *AccountService
}

func newAccountFixture() *accountFixture {
	f := &accountFixture{
		repo:     newStubAccountRepo(),
		mailer:   &stubMailer{},
		throttle: &stubThrottle{},
	}
	f.svc = NewAccountService(f.repo, newTestCredentials(), stubTokens{}, f.mailer, f.throttle, nopLogger)
	return f
}

func TestAccountService_Register_Success(t *testing.T) {
	f := newAccountFixture()

	account, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Username: " jan ",
		Email:    "Jan.Kowalski@Example.COM",
		Password: "zielona-herbata-42",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if account.Username != "jan" {
		t.Fatalf("expected trimmed username, got %q", account.Username)
	}
	if account.Email != "Jan.Kowalski@example.com" {
		t.Fatalf("expected normalized email, got %q", account.Email)
	}
	if account.EmailVerified {
		t.Fatalf("new account must start unverified")
	}
	if len(account.EmailVerificationHash) != verificationHashLength {
		t.Fatalf("unexpected verification hash %q", account.EmailVerificationHash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("zielona-herbata-42")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if got := f.mailer.count(); got != 1 {
		t.Fatalf("expected one verification email, got %d", got)
	}
}

func TestAccountService_Register_Duplicate(t *testing.T) {
	f := newAccountFixture()
	f.repo.seed("jan", "jan@example.com", "whatever-secret")

	cases := []ports.RegisterInput{
		{Username: "jan", Email: "other@example.com", Password: "zielona-herbata-42"},
		{Username: "other", Email: "jan@EXAMPLE.com", Password: "zielona-herbata-42"},
	}
	for _, in := range cases {
		if _, err := f.svc.Register(context.Background(), in); !errors.Is(err, domain.ErrDuplicateIdentity) {
			t.Fatalf("Register(%s, %s): expected ErrDuplicateIdentity, got %v", in.Username, in.Email, err)
		}
	}
	if got := f.mailer.count(); got != 0 {
		t.Fatalf("no email expected for rejected registrations, got %d", got)
	}
}

func TestAccountService_Register_WeakPassword(t *testing.T) {
	f := newAccountFixture()

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Username: "jan", Email: "jan@example.com", Password: "1234",
	})
	var weak *domain.WeakCredentialError
	if !errors.As(err, &weak) {
		t.Fatalf("expected *WeakCredentialError, got %v", err)
	}
	if len(weak.Fields["password"]) == 0 {
		t.Fatalf("expected violations under the password field")
	}
	if _, err := f.repo.FindByUsername(context.Background(), "jan"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("account must not be stored, got %v", err)
	}
}

func TestAccountService_Register_Validation(t *testing.T) {
	f := newAccountFixture()

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{Username: "", Email: "a@b.c", Password: "x"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAccountService_Register_MailFailureIsNotFatal(t *testing.T) {
	f := newAccountFixture()
	f.mailer.err = errors.New("smtp down")

	account, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Username: "jan", Email: "jan@example.com", Password: "zielona-herbata-42",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if account.ID == 0 {
		t.Fatalf("expected a stored account")
	}
}

func TestAccountService_Register_ConcurrentSameUsername(t *testing.T) {
	f := newAccountFixture()

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.Register(context.Background(), ports.RegisterInput{
				Username: "jan",
				Email:    "jan" + string(rune('a'+i)) + "@example.com",
				Password: "zielona-herbata-42",
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrDuplicateIdentity) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("expected exactly one registration to win, got %d", succeeded)
	}
}

func TestAccountService_Verify(t *testing.T) {
	f := newAccountFixture()
	account := f.repo.seed("jan", "jan@example.com", "whatever-secret")
	ctx := context.Background()

	if err := f.svc.Verify(ctx, account.ID, "wrong-hash-value"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if stored, _ := f.repo.FindByID(ctx, account.ID); stored.EmailVerified {
		t.Fatalf("wrong hash must not verify the email")
	}
	if err := f.svc.Verify(ctx, 999, account.EmailVerificationHash); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	if err := f.svc.Verify(ctx, account.ID, account.EmailVerificationHash); err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	stored, _ := f.repo.FindByID(ctx, account.ID)
	if !stored.EmailVerified {
		t.Fatalf("expected email to be verified")
	}

	// repeating the link is harmless
	if err := f.svc.Verify(ctx, account.ID, account.EmailVerificationHash); err != nil {
		t.Fatalf("second Verify returned error: %v", err)
	}
}

func TestAccountService_ResendVerification(t *testing.T) {
	f := newAccountFixture()
	account := f.repo.seed("jan", "jan@example.com", "whatever-secret")
	ctx := context.Background()

	if err := f.svc.ResendVerification(ctx, "jan@example.com"); err != nil {
		t.Fatalf("first resend returned error: %v", err)
	}
	if err := f.svc.ResendVerification(ctx, "jan@example.com"); !errors.Is(err, domain.ErrResendThrottled) {
		t.Fatalf("expected ErrResendThrottled, got %v", err)
	}
	if got := f.mailer.count(); got != 1 {
		t.Fatalf("expected one email, got %d", got)
	}

	if err := f.svc.ResendVerification(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_ = f.repo.MarkEmailVerified(ctx, account.ID)
	if err := f.svc.ResendVerification(ctx, "jan@example.com"); !errors.Is(err, domain.ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
}

func TestAccountService_ResendVerification_ThrottleDown(t *testing.T) {
	f := newAccountFixture()
	f.repo.seed("jan", "jan@example.com", "whatever-secret")
	f.throttle.err = errors.New("redis unavailable")

	if err := f.svc.ResendVerification(context.Background(), "jan@example.com"); err != nil {
		t.Fatalf("expected resend to proceed, got %v", err)
	}
	if got := f.mailer.count(); got != 1 {
		t.Fatalf("expected one email, got %d", got)
	}
}

func TestAccountService_Authenticate(t *testing.T) {
	f := newAccountFixture()
	account := f.repo.seed("jan", "jan@example.com", "whatever-secret")
	ctx := context.Background()

	for _, identifier := range []string{"jan@example.com", "jan@EXAMPLE.com", "jan"} {
		res, err := f.svc.Authenticate(ctx, identifier, "whatever-secret")
		if err != nil {
			t.Fatalf("Authenticate(%q) returned error: %v", identifier, err)
		}
		if res.Account.ID != account.ID || res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" {
			t.Fatalf("unexpected result for %q: %+v", identifier, res)
		}
	}

	stored, _ := f.repo.FindByID(ctx, account.ID)
	if stored.LastLogin == nil {
		t.Fatalf("expected last login to be recorded")
	}
}

func TestAccountService_Authenticate_FailuresLookAlike(t *testing.T) {
	f := newAccountFixture()
	account := f.repo.seed("jan", "jan@example.com", "whatever-secret")
	ctx := context.Background()

	if _, err := f.svc.Authenticate(ctx, "jan", "bad-password"); err != domain.ErrInvalidCredentials {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, "ghost", "whatever-secret"); err != domain.ErrInvalidCredentials {
		t.Fatalf("unknown account: expected ErrInvalidCredentials, got %v", err)
	}

	_ = f.repo.update(account.ID, func(a *domain.Account) { a.Active = false })
	if _, err := f.svc.Authenticate(ctx, "jan", "whatever-secret"); err != domain.ErrInvalidCredentials {
		t.Fatalf("inactive account: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAccountService_Authenticate_StoreError(t *testing.T) {
	f := newAccountFixture()
	f.repo.findErr = errors.New("connection reset")

	_, err := f.svc.Authenticate(context.Background(), "jan", "whatever-secret")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected the store error to surface, got %v", err)
	}
}

func TestAccountService_Refresh(t *testing.T) {
	f := newAccountFixture()
	account := f.repo.seed("jan", "jan@example.com", "whatever-secret")
	ctx := context.Background()

	login, err := f.svc.Authenticate(ctx, "jan", "whatever-secret")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}

	res, err := f.svc.Refresh(ctx, login.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if res.Account.ID != account.ID {
		t.Fatalf("unexpected account %d", res.Account.ID)
	}

	if _, err := f.svc.Refresh(ctx, login.Tokens.AccessToken); err != domain.ErrInvalidJWT {
		t.Fatalf("access token as refresh: expected ErrInvalidJWT, got %v", err)
	}
	if _, err := f.svc.Refresh(ctx, "refresh-999"); err != domain.ErrInvalidJWT {
		t.Fatalf("deleted account: expected ErrInvalidJWT, got %v", err)
	}
}

func TestAccountService_ChangePassword(t *testing.T) {
	f := newAccountFixture()
	account := f.repo.seed("jan", "jan@example.com", "whatever-secret")
	ctx := context.Background()

	if err := f.svc.ChangePassword(ctx, account.ID, "not-my-password", "brand-new-secret"); err != domain.ErrWrongCredential {
		t.Fatalf("expected ErrWrongCredential, got %v", err)
	}
	// a wrong old password wins over a weak new one
	if err := f.svc.ChangePassword(ctx, account.ID, "not-my-password", "1"); err != domain.ErrWrongCredential {
		t.Fatalf("expected ErrWrongCredential, got %v", err)
	}
	if err := f.svc.ChangePassword(ctx, account.ID, "whatever-secret", "1"); !errors.Is(err, domain.ErrWeakCredential) {
		t.Fatalf("expected ErrWeakCredential, got %v", err)
	}

	before, _ := f.repo.FindByID(ctx, account.ID)
	if before.PasswordHash != account.PasswordHash {
		t.Fatalf("failed attempts must not change the hash")
	}

	if err := f.svc.ChangePassword(ctx, account.ID, "whatever-secret", "brand-new-secret"); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, "jan", "brand-new-secret"); err != nil {
		t.Fatalf("login with the new password failed: %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, "jan", "whatever-secret"); err != domain.ErrInvalidCredentials {
		t.Fatalf("old password must stop working, got %v", err)
	}
}

func TestAccountService_UpdateProfile(t *testing.T) {
	f := newAccountFixture()
	jan := f.repo.seed("jan", "jan@example.com", "whatever-secret")
	f.repo.seed("ola", "ola@example.com", "whatever-secret")
	ctx := context.Background()

	updated, err := f.svc.UpdateProfile(ctx, jan.ID, ports.UpdateProfileInput{Username: stringPtr("janek")})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if updated.Username != "janek" || updated.Email != "jan@example.com" {
		t.Fatalf("unexpected profile %+v", updated)
	}

	if _, err := f.svc.UpdateProfile(ctx, jan.ID, ports.UpdateProfileInput{Email: stringPtr("ola@example.com")}); !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}
	if _, err := f.svc.UpdateProfile(ctx, jan.ID, ports.UpdateProfileInput{Username: stringPtr("  ")}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAccountService_Delete(t *testing.T) {
	f := newAccountFixture()
	jan := f.repo.seed("jan", "jan@example.com", "whatever-secret")
	ctx := context.Background()

	if err := f.svc.Delete(ctx, jan.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := f.svc.Get(ctx, jan.ID); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
