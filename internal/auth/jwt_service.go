package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	apperrors "blogcms/internal/errors"
)

// DefaultTokenExpiry is the lifetime of an issued token when none is configured.
const DefaultTokenExpiry = 7 * 24 * time.Hour

// Claims represents JWT claims.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// JWTService handles JWT token generation and validation. Tokens are stateless:
// there is no server-side session or revocation list.
type JWTService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewJWTService creates a new JWT service with the given secret and token lifetime.
func NewJWTService(secret string, expiry time.Duration) *JWTService {
	if expiry <= 0 {
		expiry = DefaultTokenExpiry
	}
	return &JWTService{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
		// expiry is checked against s.now so tests can move the clock
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
}

// Expiry returns the configured token lifetime.
func (s *JWTService) Expiry() time.Duration {
	return s.expiry
}

// GenerateToken issues a signed token for the user.
func (s *JWTService) GenerateToken(userID string) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a JWT token and returns the claims. Malformed or badly
// signed tokens, and tokens without an expiry, yield ErrInvalidToken. Expired
// ones yield ErrTokenExpired.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	if claims.UserID == "" || claims.ExpiresAt == nil {
		return nil, apperrors.ErrInvalidToken
	}
	if !claims.VerifyExpiresAt(s.now(), true) {
		return nil, apperrors.ErrTokenExpired
	}
	return claims, nil
}
