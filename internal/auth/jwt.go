// Package auth issues and parses the session token shared by the backend
// (which signs it on login) and the agent (which decodes it to learn who is
// logged in and until when).
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/posync/internal/common"
	"github.com/dmitrijs2005/posync/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultValidity is the lifetime of a freshly issued token.
const DefaultValidity = 24 * time.Hour

// Claims carries the identity next to the registered claims. Subject holds
// the username.
type Claims struct {
	jwt.RegisteredClaims
	UserID     int64             `json:"userId"`
	Username   string            `json:"username"`
	Permission models.Permission `json:"permission"`
}

// Identity is the decoded, verified content of a token.
type Identity struct {
	UserID     int64
	Username   string
	Permission models.Permission
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// GenerateToken signs an HS256 token for id valid for validity from now.
func GenerateToken(id Identity, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Username,
			ID:        strconv.FormatInt(id.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		UserID:     id.UserID,
		Username:   id.Username,
		Permission: id.Permission,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// ParseToken verifies the signature and expiry of tokenString.
// Expired tokens yield common.ErrTokenExpired; anything else that fails
// verification wraps common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Identity, error) {
	claims, err := parse(tokenString, secretKey)
	if err != nil {
		return nil, err
	}
	return claimsToIdentity(claims), nil
}

// ParseTokenIgnoringExpiry verifies the signature only. The agent uses it to
// read the expiry of a token that may already be stale.
func ParseTokenIgnoringExpiry(tokenString string, secretKey []byte) (*Identity, error) {
	claims, err := parse(tokenString, secretKey, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp", common.ErrInvalidToken)
	}
	return claimsToIdentity(claims), nil
}

func parse(tokenString string, secretKey []byte, opts ...jwt.ParserOption) (*Claims, error) {
	claims := &Claims{}
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

func claimsToIdentity(c *Claims) *Identity {
	id := &Identity{
		UserID:     c.UserID,
		Username:   c.Username,
		Permission: c.Permission,
	}
	if id.Username == "" {
		id.Username = c.Subject
	}
	if c.IssuedAt != nil {
		id.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id
}
