package authn

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt"
)

var ErrInvalidJWT = errors.New("invalid jwt token")
var ErrInvalidClaims = errors.New("invalid claims")

type contextKey string

const claimsKey contextKey = "claims"

type Claims struct {
	jwt.StandardClaims
	Username    string `json:"preferred_username"`
	RealmAccess struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
	Permissions []string `json:"permissions"`
}

// HasPermission reports whether the permission was granted either directly or
// through a realm role of the same name.
func (c Claims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	for _, r := range c.RealmAccess.Roles {
		if r == permission {
			return true
		}
	}
	return false
}

func ParseClaims(token string) (Claims, error) {
	claims := Claims{}
	// Signatures are verified by the gateway in front of the service
	if t, err := jwt.ParseWithClaims(token, &claims, nil); err != nil {
		if _, ok := err.(*jwt.ValidationError); !ok {
			return claims, ErrInvalidJWT
		}

		if t == nil {
			return claims, ErrInvalidClaims
		}
	}
	return claims, nil
}

// WithClaims stores the caller's claims on the context.
func WithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// FromContext returns the caller's claims, if any.
func FromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(Claims)
	return claims, ok
}
