package utils

import (
	"time"

	"github.com/roviproject/rovi-backend/pkg/models"
	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is the lifetime of a user session token.
const SessionTTL = 24 * time.Hour

// GenerateUserToken signs a session claim {sub: email, exp: now+ttl} with
// the service-wide secret.
func GenerateUserToken(email, secret string, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   email,
		ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ValidateUserToken verifies the signature and expiry of a session token and
// returns the email it was minted for. Any failure maps to ErrUnauthorized.
func ValidateUserToken(tokenString, secret string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, models.ErrUnauthorized
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", models.ErrUnauthorized
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", models.ErrUnauthorized
	}
	return claims.Subject, nil
}
