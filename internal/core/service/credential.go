package service

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
)

// CredentialManager hashes, verifies and validates account passwords.
type CredentialManager struct {
	policy *PasswordPolicy
	cost   int
	// dummyHash is compared against when no account matched, so a miss costs
	// the same bcrypt round as a wrong password.
	dummyHash []byte
}

func NewCredentialManager(policy *PasswordPolicy, cost int) *CredentialManager {
	if policy == nil {
		policy = NewPasswordPolicy()
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	return &CredentialManager{policy: policy, cost: cost, dummyHash: dummy}
}

// Set validates plaintext and, when it passes, replaces account.PasswordHash.
// Policy failures come back as *domain.WeakCredentialError with all violations.
func (m *CredentialManager) Set(account *domain.Account, plaintext string) error {
	if violations := m.policy.Violations(account, plaintext); len(violations) > 0 {
		return domain.NewWeakCredentialError(violations)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), m.cost)
	if err != nil {
		return err
	}
	account.PasswordHash = string(hash)
	return nil
}

// Verify reports whether plaintext matches the stored hash. A nil account
// always yields false after an equivalent amount of work.
func (m *CredentialManager) Verify(account *domain.Account, plaintext string) bool {
	if account == nil || account.PasswordHash == "" {
		_ = bcrypt.CompareHashAndPassword(m.dummyHash, []byte(plaintext))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(plaintext)) == nil
}
