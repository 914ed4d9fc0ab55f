package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type resetClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// GenerateResetToken issues a single-purpose password reset token valid for
// ResetTTL.
func (s *CredentialService) GenerateResetToken() (string, error) {
	now := s.now()
	claims := &resetClaims{
		Type: resetType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    TokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ResetTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// VerifyResetToken reports whether tokenString is a valid, unexpired reset
// token. It never returns an error; session tokens are rejected.
func (s *CredentialService) VerifyResetToken(tokenString string) bool {
	claims := &resetClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return false
	}
	return claims.Type == resetType
}

// HashResetToken is the form a reset token is persisted in.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
