package auth

import (
	"encoding/hex"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "devwiki-api"
	tokenAudience = "devwiki-client"

	// PASETO v4 symmetric key requirements
	keyBytesSize = 32
	keyHexSize   = 64
)

// TokenService issues and verifies PASETO v4.local bearer tokens.
// Tokens carry only the user id; role flags are re-read from the store
// on every request so bans take effect immediately.
type TokenService struct {
	symmetricKey paseto.V4SymmetricKey
	tokenTTL     time.Duration
}

// NewTokenService creates a token service from a hex-encoded 256-bit key
func NewTokenService(keyHex string, ttl time.Duration) (*TokenService, error) {
	if len(keyHex) != keyHexSize {
		return nil, fmt.Errorf("token key must be exactly %d hex characters (%d bytes), got %d", keyHexSize, keyBytesSize, len(keyHex))
	}

	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string for token key: %w", err)
	}

	key, err := paseto.V4SymmetricKeyFromBytes(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &TokenService{
		symmetricKey: key,
		tokenTTL:     ttl,
	}, nil
}

// Issue creates a new bearer token for the given user id
func (s *TokenService) Issue(userID string) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(userID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.tokenTTL))
	token.SetJti(uuid.NewString())

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// Verify decrypts and validates a bearer token, returning the user id
func (s *TokenService) Verify(raw string) (string, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.NotExpired())

	token, err := parser.ParseV4Local(s.symmetricKey, raw, nil)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	sub, err := token.GetSubject()
	if err != nil {
		return "", fmt.Errorf("token missing subject: %w", err)
	}
	return sub, nil
}
