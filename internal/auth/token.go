package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/nsghealth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered claims plus the user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// GenerateToken signs a session token for userID valid from issuedAt until
// expiresAt.
func GenerateToken(userID string, secretKey []byte, issuedAt, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// GetUserIDFromToken verifies tokenString against secretKey at time now and
// returns the user id it was issued for.
func GetUserIDFromToken(tokenString string, secretKey []byte, now time.Time) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(time.Second),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" || claims.UserID != claims.Subject {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
