package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is the root of every "missing entity" error; match it with errors.Is.
var ErrNotFound = errors.New("not found")

var (
	ErrAccountNotFound    = fmt.Errorf("account %w", ErrNotFound)
	ErrContactNotFound    = fmt.Errorf("contact %w", ErrNotFound)
	ErrChatNotFound       = fmt.Errorf("chat %w", ErrNotFound)
	ErrFavouriteNotFound  = fmt.Errorf("favourite %w", ErrNotFound)
	ErrListingNotFound    = fmt.Errorf("listing %w", ErrNotFound)
	ErrJobListingNotFound = fmt.Errorf("job listing %w", ErrNotFound)
	ErrRegionNotFound     = fmt.Errorf("region %w", ErrNotFound)
	ErrImageNotFound      = fmt.Errorf("image %w", ErrNotFound)
)

var (
	ErrDuplicateIdentity  = errors.New("username or email already taken")
	ErrWeakCredential     = errors.New("password does not meet the policy")
	ErrWrongCredential    = errors.New("wrong password")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid verification token")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrAlreadyFavourited  = errors.New("already in favourites")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidJWT         = errors.New("invalid or expired token")
	ErrResendThrottled    = errors.New("verification email was sent recently, try again later")
	ErrInvalidReference   = errors.New("invalid reference")
	ErrInvalidInput       = errors.New("invalid input")
)

// FieldErrors groups human readable violation messages by request field.
type FieldErrors map[string][]string

// WeakCredentialError carries every password policy violation under the
// "password" key. It matches ErrWeakCredential with errors.Is.
type WeakCredentialError struct {
	Fields FieldErrors
}

// NewWeakCredentialError wraps the given violation messages.
func NewWeakCredentialError(violations []string) *WeakCredentialError {
	return &WeakCredentialError{Fields: FieldErrors{"password": violations}}
}

func (e *WeakCredentialError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return fmt.Sprintf("%s (%s)", ErrWeakCredential, strings.Join(parts, "; "))
}

func (e *WeakCredentialError) Is(target error) bool {
	return target == ErrWeakCredential
}
