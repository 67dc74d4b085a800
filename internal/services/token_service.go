package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = time.Hour

// Identity is who a token speaks for.
type Identity struct {
	UserID   uint   `json:"id"`
	Username string `json:"username"`
}

// Claims is the signed payload of an access token.
type Claims struct {
	Identity
	jwt.StandardClaims
}

// TokenService issues and validates HS256 access tokens. It holds no mutable
// state; the secret and TTL are fixed at construction.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces time.Now as the source of issue and validation time.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// WithTTL overrides DefaultTokenTTL.
func WithTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) { s.ttl = ttl }
}

// NewTokenService creates a TokenService signing with secret.
func NewTokenService(secret string, opts ...TokenOption) *TokenService {
	s := &TokenService{
		secret: []byte(secret),
		ttl:    DefaultTokenTTL,
		now:    time.Now,
		// Expiry is checked against s.now in Validate rather than jwt.TimeFunc.
		parser: &jwt.Parser{
			ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
			SkipClaimsValidation: true,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a token for identity that expires one TTL from now.
func (s *TokenService) Issue(identity Identity) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Identity: identity,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// Validate checks the signature and expiry of tokenString and returns its claims.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenMissing
	}

	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if claims.ExpiresAt == 0 {
		return nil, fmt.Errorf("%w: no expiry", ErrTokenMalformed)
	}
	if !s.now().Before(time.Unix(claims.ExpiresAt, 0)) {
		return nil, ErrTokenExpired
	}
	return claims, nil
}

// TokenFromHeader extracts the token from an "Authorization: Bearer <token>" value.
func TokenFromHeader(header string) (string, error) {
	if header == "" {
		return "", ErrTokenMissing
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", ErrTokenBadScheme
	}
	return token, nil
}
