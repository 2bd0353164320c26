package server

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/dekarrin/gudgeon/server/serr"
)

// HashAPIKey bcrypt-hashes key for storage/comparison, so the plaintext
// API key an operator configures the server with is never held longer
// than it takes to hash it.
func HashAPIKey(key string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
}

func (s *Server) checkAPIKey(key string) error {
	if err := bcrypt.CompareHashAndPassword(s.apiKeyHash, []byte(key)); err != nil {
		return serr.New("incorrect API key", serr.ErrBadCredentials)
	}
	return nil
}

// mintToken issues a short-lived JWT for the single operator identity
// this server recognizes; there is no per-user claim because there is no
// user database, only the one shared API key checked above.
func (s *Server) mintToken() (string, error) {
	claims := &jwt.RegisteredClaims{
		Issuer:    "gudgeon",
		Subject:   "operator",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.jwtSecret)
}
