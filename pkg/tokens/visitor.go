package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const visitorIssuer = "storefront"

type VisitorClaims struct {
	jwt.RegisteredClaims
}

func NewVisitorToken(visitorID string, exp time.Time, secret []byte) (string, error) {
	if visitorID == "" {
		return "", errors.New("visitor id is empty")
	}
	claims := VisitorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    visitorIssuer,
			Subject:   visitorID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func VisitorClaimsFromToken(tokenStr string, secret []byte) (*VisitorClaims, error) {
	var claims VisitorClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	}, jwt.WithIssuer(visitorIssuer))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.Subject == "" {
		return nil, errors.New("invalid visitor token")
	}
	return &claims, nil
}
