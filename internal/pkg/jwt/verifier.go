// internal/pkg/jwt/verifier.go
package jwt

import (
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotAJWT = errors.New("token is not a jwt")

// Decoder reads claims from backend tokens. With a public key it verifies
// RS256 signatures; without one it only decodes, since the backend remains
// the authority on every request anyway.
type Decoder struct {
	pub *rsa.PublicKey
}

func NewDecoder(pub *rsa.PublicKey) *Decoder {
	return &Decoder{pub: pub}
}

// LoadDecoder builds a Decoder from an optional PEM path.
func LoadDecoder(pubPath string) (*Decoder, error) {
	if pubPath == "" {
		return NewDecoder(nil), nil
	}
	pub, err := LoadRSAPublicKeyFromPEM(pubPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load public key from %s: %w", pubPath, err)
	}
	return NewDecoder(pub), nil
}

func (d *Decoder) Verifies() bool { return d.pub != nil }

// Decode returns the claims of tokenString. Opaque (non-JWT) tokens yield
// ErrNotAJWT so callers can fall back to profile data.
func (d *Decoder) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}

	if d.pub == nil {
		if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotAJWT, err)
		}
		return claims, nil
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return d.pub, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, fmt.Errorf("%w: %v", ErrNotAJWT, err)
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
