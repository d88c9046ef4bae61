package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
)

func TestPasswordPolicy_Violations(t *testing.T) {
	policy := NewPasswordPolicy()
	account := &domain.Account{Username: "alice", Email: "anowak@example.com"}

	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{
			name:     "strong password",
			password: "correct-horse-battery",
			want:     nil,
		},
		{
			name:     "similar to username",
			password: "alice123",
			want:     []string{"The password is too similar to the username."},
		},
		{
			name:     "similar to email fragment",
			password: "nowakk",
			want: []string{
				"The password is too similar to the email address.",
				"This password is too short. It must contain at least 8 characters.",
			},
		},
		{
			name:     "short numeric",
			password: "83921",
			want: []string{
				"This password is too short. It must contain at least 8 characters.",
				"This password is entirely numeric.",
			},
		},
		{
			name:     "common",
			password: "Password123",
			want:     []string{"This password is too common."},
		},
		{
			name:     "too long for bcrypt",
			password: strings.Repeat("xq", 40),
			want:     []string{"This password is too long. It must contain at most 72 bytes."},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := policy.Violations(account, tc.password)
			if len(got) != len(tc.want) {
				t.Fatalf("Violations(%q) = %q, want %q", tc.password, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("violation %d = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestQuickRatio(t *testing.T) {
	if r := quickRatio("abc", "abc"); r != 1 {
		t.Fatalf("identical strings: got %v", r)
	}
	if r := quickRatio("abc", "xyz"); r != 0 {
		t.Fatalf("disjoint strings: got %v", r)
	}
	if r := quickRatio("", ""); r != 1 {
		t.Fatalf("empty strings: got %v", r)
	}
}

func TestCredentialManager_SetAndVerify(t *testing.T) {
	m := newTestCredentials()
	account := &domain.Account{Username: "bob", Email: "bob@example.com"}

	if err := m.Set(account, "long-enough-secret"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if account.PasswordHash == "" || account.PasswordHash == "long-enough-secret" {
		t.Fatalf("expected a bcrypt hash, got %q", account.PasswordHash)
	}
	if !m.Verify(account, "long-enough-secret") {
		t.Fatalf("expected the password to verify")
	}
	if m.Verify(account, "wrong-secret-value") {
		t.Fatalf("expected a wrong password to fail")
	}
	if m.Verify(nil, "long-enough-secret") {
		t.Fatalf("expected a nil account to fail")
	}
}

func TestCredentialManager_SetRejectsWeakPassword(t *testing.T) {
	m := newTestCredentials()
	account := &domain.Account{Username: "bob", Email: "bob@example.com", PasswordHash: "kept"}

	err := m.Set(account, "1234")
	if !errors.Is(err, domain.ErrWeakCredential) {
		t.Fatalf("expected ErrWeakCredential, got %v", err)
	}

	var weak *domain.WeakCredentialError
	if !errors.As(err, &weak) {
		t.Fatalf("expected *WeakCredentialError, got %T", err)
	}
	// too short, too common, entirely numeric
	if n := len(weak.Fields["password"]); n != 3 {
		t.Fatalf("expected 3 violations, got %d: %v", n, weak.Fields["password"])
	}
	if account.PasswordHash != "kept" {
		t.Fatalf("hash must stay untouched on rejection")
	}
}

func TestRandomString(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		s, err := randomString(verificationHashLength)
		if err != nil {
			t.Fatalf("randomString returned error: %v", err)
		}
		if len(s) != verificationHashLength {
			t.Fatalf("expected length %d, got %d", verificationHashLength, len(s))
		}
		for _, r := range s {
			if !strings.ContainsRune(alphanumeric, r) {
				t.Fatalf("unexpected character %q in %q", r, s)
			}
		}
		seen[s] = struct{}{}
	}
	if len(seen) < 50 {
		t.Fatalf("expected distinct values, got %d unique of 50", len(seen))
	}
}
