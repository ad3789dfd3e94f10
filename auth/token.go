package auth

import (
	"fmt"
	"time"

	"zyan/errors"

	"github.com/golang-jwt/jwt/v5"
)

const Issuer = "zyan"

// CustomClaims defines the data stored inside the JWT.
type CustomClaims struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates HS256 tokens with a host secret.
type TokenIssuer struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

func NewTokenIssuer(secret string, duration time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), duration: duration, now: time.Now}
}

func (i *TokenIssuer) GenerateToken(userID string, roles []string) (string, error) {
	now := i.now()
	claims := &CustomClaims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrTokenGeneration, err)
	}
	return signed, nil
}

// ValidateToken checks signature, issuer and expiration.
func (i *TokenIssuer) ValidateToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{},
		func(token *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidCredentials, err)
	}
	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("%w: %w", errors.ErrInvalidCredentials, jwt.ErrSignatureInvalid)
}
