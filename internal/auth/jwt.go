package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingToken = errors.New("auth: missing token")
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Claims carries the company every request is scoped to.
type Claims struct {
	CompanyID string `json:"company_id"`
	jwt.RegisteredClaims
}

// ParseJWT validates an HS256 token and returns its claims. An empty issuer skips the issuer check.
func ParseJWT(tokenString string, secret []byte, issuer string) (*Claims, uuid.UUID, error) {
	if tokenString == "" {
		return nil, uuid.Nil, ErrMissingToken
	}

	if len(secret) == 0 {
		return nil, uuid.Nil, errors.New("auth: empty secret")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	claims := &Claims{}

	if _, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}); err != nil {
		return nil, uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	companyID, err := uuid.Parse(claims.CompanyID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%w: company_id: %w", ErrInvalidToken, err)
	}

	return claims, companyID, nil
}

// NewToken signs a token for subject acting on behalf of companyID.
func NewToken(secret []byte, issuer string, companyID uuid.UUID, subject string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		CompanyID: companyID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
