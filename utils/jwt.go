package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionTTL   = 7 * 24 * time.Hour
	ResetTTL     = time.Hour
	TokenIssuer  = "restaurant-booking"
	resetType    = "reset"
	minSecretLen = 16
)

// ErrInvalidToken is returned for every session token that fails
// verification: malformed, wrong signature, expired or wrong claims.
var ErrInvalidToken = errors.New("invalid token")

// SessionPayload is the identity embedded in a session token.
type SessionPayload struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}

type SessionClaims struct {
	SessionPayload
	jwt.RegisteredClaims
}

// CredentialService signs and verifies session and reset tokens with a
// process-wide HMAC secret. It holds no other state.
type CredentialService struct {
	secret []byte
	now    func() time.Time
}

type CredentialOption func(*CredentialService)

// WithClock overrides the time source used for issuing and verifying tokens.
func WithClock(now func() time.Time) CredentialOption {
	return func(s *CredentialService) {
		s.now = now
	}
}

func NewCredentialService(secret []byte, opts ...CredentialOption) *CredentialService {
	s := &CredentialService{
		secret: secret,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SecretLongEnough reports whether secret is acceptable for production use.
func SecretLongEnough(secret string) bool {
	return len(secret) >= minSecretLen
}

// SignToken issues a session token valid for SessionTTL.
func (s *CredentialService) SignToken(payload SessionPayload) (string, error) {
	now := s.now()
	claims := &SessionClaims{
		SessionPayload: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    TokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken returns the claims of a valid session token. A token is valid
// while now < exp.
func (s *CredentialService) VerifyToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(TokenIssuer),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.RegisteredClaims.ID == "" || claims.SessionPayload.ID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *CredentialService) keyFunc(*jwt.Token) (interface{}, error) {
	return s.secret, nil
}
