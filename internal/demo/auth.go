package demo

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidCode is returned when the invite code is unknown. The
// API surfaces it as a 401 with detail "Invalid invite code".
var ErrInvalidCode = errors.New("invalid invite code")

// Claims are the JWT claims issued for a verified invite code.
type Claims struct {
	jwt.RegisteredClaims
	InviteCode string `json:"invite_code"`
}

// Auth verifies invite codes and mints access tokens.
type Auth struct {
	secret   []byte
	codes    map[string]struct{}
	tokenTTL time.Duration
}

// NewAuth builds the invite-code verifier. codes is the allow-list.
func NewAuth(secret string, codes []string, tokenTTL time.Duration) *Auth {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return &Auth{secret: []byte(secret), codes: set, tokenTTL: tokenTTL}
}

// Verify checks an invite code and returns a signed HS256 token.
func (a *Auth) Verify(code string) (string, error) {
	if _, ok := a.codes[code]; !ok {
		return "", ErrInvalidCode
	}

	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
		InviteCode: code,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Validate parses and checks a token, returning its claims.
func (a *Auth) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}
