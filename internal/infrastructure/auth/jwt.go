package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// claims is the payload of both token kinds; Type tells them apart.
type claims struct {
	Type     string `json:"typ"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs HS256 access and refresh tokens.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

var _ ports.TokenIssuer = (*TokenIssuer)(nil)

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (t *TokenIssuer) Issue(account *domain.Account) (ports.TokenPair, error) {
	access, err := t.sign(account, typeAccess, t.accessTTL)
	if err != nil {
		return ports.TokenPair{}, err
	}
	refresh, err := t.sign(account, typeRefresh, t.refreshTTL)
	if err != nil {
		return ports.TokenPair{}, err
	}
	return ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (t *TokenIssuer) sign(account *domain.Account, typ string, ttl time.Duration) (string, error) {
	now := t.now()
	c := claims{
		Type:     typ,
		Username: account.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(account.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

// ParseAccess returns the account id of a valid access token.
func (t *TokenIssuer) ParseAccess(token string) (int64, error) {
	return t.parse(token, typeAccess)
}

// ParseRefresh returns the account id of a valid refresh token.
func (t *TokenIssuer) ParseRefresh(token string) (int64, error) {
	return t.parse(token, typeRefresh)
}

func (t *TokenIssuer) parse(token, typ string) (int64, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return 0, errors.Join(domain.ErrInvalidJWT, err)
	}
	if c.Type != typ {
		return 0, fmt.Errorf("%w: expected %s token, got %q", domain.ErrInvalidJWT, typ, c.Type)
	}

	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad subject %q", domain.ErrInvalidJWT, c.Subject)
	}
	return id, nil
}
