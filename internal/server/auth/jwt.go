// Package auth holds the credential primitives: the bcrypt password hasher
// and the HS256 token codec.
package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/dinoauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload carried by a token. ExpiresAt has second precision.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

var signingMethod = jwt.SigningMethodHS256

// EncodeToken signs c with secret as a compact HS256 JWT.
func EncodeToken(c Claims, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", jwt.ErrInvalidKey
	}

	token := jwt.NewWithClaims(signingMethod, jwt.RegisteredClaims{
		Subject:   c.Subject,
		ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
	})

	return token.SignedString(secret)
}

// DecodeToken checks the MAC before touching the header or claims, then
// requires an unexpired "exp" and a non-empty subject. Failures map to
// common.ErrTokenExpired or common.ErrInvalidToken.
func DecodeToken(tokenString string, secret []byte) (Claims, error) {
	if len(secret) == 0 {
		return Claims{}, common.ErrInvalidToken
	}

	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return Claims{}, common.ErrInvalidToken
	}
	sig, err := base64.RawURLEncoding.Strict().DecodeString(parts[2])
	if err != nil {
		return Claims{}, common.ErrInvalidToken
	}
	if err := signingMethod.Verify(parts[0]+"."+parts[1], sig, secret); err != nil {
		return Claims{}, common.ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, common.ErrTokenExpired
		}
		return Claims{}, common.ErrInvalidToken
	}
	if claims.Subject == "" {
		return Claims{}, common.ErrInvalidToken
	}

	return Claims{Subject: claims.Subject, ExpiresAt: claims.ExpiresAt.Time.UTC()}, nil
}
