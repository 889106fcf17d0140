// Package auth issues and verifies session tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/communityfeed/internal/common"
)

// Claims carries the registered claims plus the id of the session owner.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: userID,
	})

	return token.SignedString(secretKey)
}

// GetUserIDFromToken validates the signature and expiry of tokenString and
// returns its user id. Expired tokens yield common.ErrTokenExpired, any
// other failure common.ErrInvalidToken.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}

// JWTManager binds a signing secret and session lifetime.
type JWTManager struct {
	secret   []byte
	validity time.Duration
}

func NewJWTManager(secret []byte, validity time.Duration) *JWTManager {
	return &JWTManager{secret: secret, validity: validity}
}

func (m *JWTManager) Issue(userID string) (string, error) {
	return GenerateToken(userID, m.secret, m.validity)
}

func (m *JWTManager) Verify(token string) (string, error) {
	return GetUserIDFromToken(token, m.secret)
}
