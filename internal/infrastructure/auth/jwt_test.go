package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
)

func testAccount() *domain.Account {
	return &domain.Account{ID: 1843, Username: "jan"}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", 15*time.Minute, 7*24*time.Hour)

	pair, err := issuer.Issue(testAccount())
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	id, err := issuer.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1843), id)

	id, err = issuer.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1843), id)
}

func TestTokenIssuer_KindsAreNotInterchangeable(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", 15*time.Minute, 7*24*time.Hour)
	pair, err := issuer.Issue(testAccount())
	require.NoError(t, err)

	_, err = issuer.ParseAccess(pair.RefreshToken)
	assert.True(t, errors.Is(err, domain.ErrInvalidJWT), "got %v", err)

	_, err = issuer.ParseRefresh(pair.AccessToken)
	assert.True(t, errors.Is(err, domain.ErrInvalidJWT), "got %v", err)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", time.Minute, time.Hour)
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issued }

	pair, err := issuer.Issue(testAccount())
	require.NoError(t, err)

	issuer.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = issuer.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidJWT)

	_, err = issuer.ParseRefresh(pair.RefreshToken)
	assert.NoError(t, err)
}

func TestTokenIssuer_WrongSecretAndGarbage(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", time.Minute, time.Hour)
	other := NewTokenIssuer("other", time.Minute, time.Hour)

	pair, err := other.Issue(testAccount())
	require.NoError(t, err)

	_, err = issuer.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidJWT)

	_, err = issuer.ParseAccess("not-a-jwt")
	assert.ErrorIs(t, err, domain.ErrInvalidJWT)
}

func TestTokenIssuer_RejectsOtherAlgorithms(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", time.Minute, time.Hour)

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, claims{
		Type: typeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1843",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	unsigned, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.ParseAccess(unsigned)
	assert.ErrorIs(t, err, domain.ErrInvalidJWT)
}
