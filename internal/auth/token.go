package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTTokenCodec signs and verifies HS256 access tokens with a symmetric
// secret. Issue and Decode are pure over their inputs and safe for
// concurrent use.
type JWTTokenCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTTokenCodec(secret string, ttl time.Duration) *JWTTokenCodec {
	return &JWTTokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue mints a token with subject=username, the user id and a snapshot of
// the permission names effective at issuance.
func (c *JWTTokenCodec) Issue(username string, userID int64, permissions []string) (string, error) {
	now := time.Now()

	claims := &Claims{
		UserID:      userID,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Decode verifies signature and expiry and returns the claims exactly as
// issued. Expiry is reported as ErrTokenExpired; every other failure
// (malformed structure, wrong algorithm, bad signature) as ErrInvalidToken.
func (c *JWTTokenCodec) Decode(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
