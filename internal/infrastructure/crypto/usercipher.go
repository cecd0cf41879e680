// Package crypto implements the reversible identity cipher used to store
// user identifiers at rest without plaintext.
package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrInvalidToken is returned when a token was not produced by this cipher,
// was tampered with, or was produced under a different key. Callers must treat
// it as a routing failure and never fall back to a default recipient.
var ErrInvalidToken = errors.New("crypto: invalid or forged identity token")

// UserIDCipher encrypts numeric user identifiers into opaque tokens using
// XChaCha20-Poly1305. Encryption is non-deterministic (fresh nonce per call);
// decryption always recovers the exact original identifier or fails.
type UserIDCipher struct {
	aead cipher.AEAD
}

// NewUserIDCipher builds a cipher from a hex-encoded 32-byte key.
func NewUserIDCipher(hexKey string) (*UserIDCipher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("secret key is not valid hex: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("secret key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to construct cipher: %w", err)
	}

	return &UserIDCipher{aead: aead}, nil
}

// EncryptUserID seals the user id into an opaque base64url token.
func (c *UserIDCipher) EncryptUserID(userID int64) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	plaintext := make([]byte, 8)
	binary.BigEndian.PutUint64(plaintext, uint64(userID))

	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// DecryptUserID opens a token produced by EncryptUserID. Any malformed or
// tampered token yields ErrInvalidToken.
func (c *UserIDCipher) DecryptUserID(token string) (int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize+c.aead.Overhead() {
		return 0, fmt.Errorf("%w: token too short", ErrInvalidToken)
	}

	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: authentication failed", ErrInvalidToken)
	}
	if len(plaintext) != 8 {
		return 0, fmt.Errorf("%w: unexpected payload length", ErrInvalidToken)
	}

	return int64(binary.BigEndian.Uint64(plaintext)), nil
}
