package storage

import (
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
)

// Grant tokens are PASETO v4.local tokens binding an object path to an
// expiry. They let a browser fetch a private object without sending the
// access token in a URL.
const grantPurpose = "object-grant"

// Signer issues and verifies object grant tokens.
type Signer struct {
	key paseto.V4SymmetricKey
}

// NewSigner creates a signer from a 32-byte symmetric key. The server
// reuses its auth key so grants die with it.
func NewSigner(keyBytes []byte) (*Signer, error) {
	key, err := paseto.V4SymmetricKeyFromBytes(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("create grant signing key: %w", err)
	}
	return &Signer{key: key}, nil
}

// Sign issues a grant token for an object path valid for ttl.
func (s *Signer) Sign(path string, ttl time.Duration) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(ttl))
	token.SetSubject(grantPurpose)

	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("path", path)

	return token.V4Encrypt(s.key, nil), nil
}

// Verify checks a grant token and confirms it was issued for the given
// object path.
func (s *Signer) Verify(grant, path string) error {
	parser := paseto.NewParser()
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))
	parser.AddRule(paseto.Subject(grantPurpose))

	token, err := parser.ParseV4Local(s.key, grant, nil)
	if err != nil {
		return fmt.Errorf("invalid grant: %w", err)
	}

	var grantedPath string
	if err := token.Get("path", &grantedPath); err != nil {
		return fmt.Errorf("grant missing path claim: %w", err)
	}
	if grantedPath != path {
		return fmt.Errorf("grant issued for a different object")
	}

	return nil
}
