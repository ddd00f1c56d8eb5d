// Package auth provides admin authentication: HS256 JWTs plus an argon2id
// password verifier.
package auth

import (
	"time"

	"github.com/dmitrijs2005/fairdraw/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard claims plus the authenticated role.
type Claims struct {
	jwt.RegisteredClaims
	Role string
}

// RoleAdmin is the only role issued today.
const RoleAdmin = "admin"

func GenerateToken(role string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Role: role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func GetRoleFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", shared.ErrorInvalidToken
	}

	return claims.Role, nil
}
