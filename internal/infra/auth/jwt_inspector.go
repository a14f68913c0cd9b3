// Package auth reads access tokens issued by the booking API.
package auth

import (
	"fmt"

	"pickup/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// jwtInspector decodes claims without verifying the signature. The client
// has no key to verify with; the server stays the only authority and only a
// 401 from it invalidates a token.
type jwtInspector struct {
	parser *jwt.Parser
}

// NewJWTInspector is the constructor for jwtInspector.
func NewJWTInspector() service.TokenInspector {
	return &jwtInspector{parser: jwt.NewParser()}
}

// Inspect reads the subject, token type and validity window of token.
func (i *jwtInspector) Inspect(token string) (*service.TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := i.parser.ParseUnverified(token, claims); err != nil {
		return nil, errors.Wrap(err, "parse access token")
	}

	info := &service.TokenInfo{}

	// The API puts the account id in user_id; standard issuers use sub.
	switch {
	case claims["user_id"] != nil:
		info.UserID = fmt.Sprint(claims["user_id"])
	default:
		if sub, err := claims.GetSubject(); err == nil {
			info.UserID = sub
		}
	}
	if typ, ok := claims["token_type"].(string); ok {
		info.TokenType = typ
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}

	return info, nil
}
