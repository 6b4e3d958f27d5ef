// Package e2ee implements the end-to-end encryption layer for room traffic.
// Every participant of a room derives the same AES-256-GCM key from the
// shared secret carried in the room's invitation link; the relay server only
// ever sees the resulting ciphertext.
package e2ee

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// ErrDecrypt wraps every authentication or parse failure during Decrypt.
// Callers treat it as fatal to the session: an undecryptable message means a
// key mismatch or tampering, and retrying with the same key would fail
// identically.
var ErrDecrypt = errors.New("decryption failed")

const (
	keyIterations = 10000
	keyLen        = 32
	nonceSize     = 12
	secretLen     = 32
)

// zeroSalt is the fixed all-zero PBKDF2 salt. This is a known weakness
// inherited from the wire format: a random salt would have to be shared out
// of band and would break compatibility with existing invitation links.
var zeroSalt = make([]byte, 16)

// encoding is URL-safe base64 without padding, so ciphertext and secrets can
// ride in URL fragments.
var encoding = base64.RawURLEncoding

// Cipher encrypts and decrypts room payloads under a key derived from the
// room's shared secret.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher derives the room key from the base64url-encoded shared secret
// using PBKDF2-SHA256 and prepares an AES-GCM AEAD.
func NewCipher(secret string) (*Cipher, error) {
	raw, err := encoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("decode room secret: %w", err)
	}

	key := pbkdf2.Key(raw, zeroSalt, keyIterations, keyLen, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt serializes v to JSON, seals it with a fresh random nonce and
// returns base64url(nonce || ciphertext).
func (c *Cipher) Encrypt(v any) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("serialize payload: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	return encoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt and returns the plaintext bytes. Any failure is
// reported as ErrDecrypt.
func (c *Cipher) Decrypt(encoded string) ([]byte, error) {
	sealed, err := encoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	if len(sealed) < nonceSize {
		return nil, fmt.Errorf("%w: payload too short", ErrDecrypt)
	}

	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return plaintext, nil
}

// DecryptJSON decrypts and unmarshals into v.
func (c *Cipher) DecryptJSON(encoded string, v any) error {
	plaintext, err := c.Decrypt(encoded)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return nil
}

// NewRoomSecret generates a fresh random room secret for an invitation link.
func NewRoomSecret() (string, error) {
	raw := make([]byte, secretLen)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return encoding.EncodeToString(raw), nil
}
