package service

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
)

const (
	defaultMinPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
	maxSimilarity    = 0.7
)

//go:embed common_passwords.txt
var commonPasswordsRaw string

var nonWord = regexp.MustCompile(`\W+`)

// PasswordPolicy checks a candidate password against the account it will belong to.
type PasswordPolicy struct {
	MinLength int
	common    map[string]struct{}
}

// NewPasswordPolicy returns the default policy backed by the embedded common password list.
func NewPasswordPolicy() *PasswordPolicy {
	common := make(map[string]struct{})
	for _, line := range strings.Split(commonPasswordsRaw, "\n") {
		if p := strings.TrimSpace(line); p != "" {
			common[strings.ToLower(p)] = struct{}{}
		}
	}
	return &PasswordPolicy{MinLength: defaultMinPasswordLength, common: common}
}

// Violations returns every rule the password breaks, in a stable order.
// An empty result means the password is acceptable.
func (p *PasswordPolicy) Violations(account *domain.Account, password string) []string {
	var out []string

	if account != nil {
		if msg := similarity(password, "username", account.Username); msg != "" {
			out = append(out, msg)
		}
		if msg := similarity(password, "email address", account.Email); msg != "" {
			out = append(out, msg)
		}
	}

	if len([]rune(password)) < p.MinLength {
		out = append(out, fmt.Sprintf("This password is too short. It must contain at least %d characters.", p.MinLength))
	}

	if len(password) > maxPasswordBytes {
		out = append(out, fmt.Sprintf("This password is too long. It must contain at most %d bytes.", maxPasswordBytes))
	}

	if _, ok := p.common[strings.ToLower(strings.TrimSpace(password))]; ok {
		out = append(out, "This password is too common.")
	}

	if isNumeric(password) {
		out = append(out, "This password is entirely numeric.")
	}

	return out
}

// similarity compares the password against the attribute value and each of its
// word fragments, e.g. "jan.kowalski@example.com" -> "jan", "kowalski", ...
func similarity(password, label, value string) string {
	if value == "" {
		return ""
	}
	pw := strings.ToLower(password)
	value = strings.ToLower(value)

	parts := append([]string{value}, nonWord.Split(value, -1)...)
	for _, part := range parts {
		if part == "" {
			continue
		}
		if quickRatio(pw, part) >= maxSimilarity {
			return fmt.Sprintf("The password is too similar to the %s.", label)
		}
	}
	return ""
}

// quickRatio is an upper bound on the matching-block ratio of a and b: twice the
// size of their character multiset intersection over the total length.
func quickRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	avail := make(map[rune]int, len(rb))
	for _, r := range rb {
		avail[r]++
	}
	matches := 0
	for _, r := range ra {
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(total)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
