// Package crypto implements the conversation message encryption scheme.
//
// Every conversation gets its own AES-256 key derived from the conversation
// id and a server-wide secret, so any replica holding the secret can decrypt
// without shared state. Message bodies are sealed with AES-GCM and a fresh
// random nonce per message; ciphertext and nonce are base64-encoded for
// storage in text columns.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// NonceSize is the GCM nonce length in bytes (96 bits).
const NonceSize = 12

var (
	// ErrEmptySecret is returned when the server secret is not configured.
	// Config validation should catch this at startup, not here.
	ErrEmptySecret = errors.New("message encryption secret is empty")

	// ErrDecryptionFailed covers malformed input, wrong key and failed
	// GCM authentication alike; callers must not distinguish.
	ErrDecryptionFailed = errors.New("message decryption failed")
)

// DeriveKey derives the AES-256 key for a conversation.
//
// The digest of "<id>:<secret>" is used directly as the key. This is a
// key-wrapping hash, not a password KDF: the secret is a high-entropy
// server config value, never user input.
func DeriveKey(conversationID uint64, secret string) ([]byte, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	sum := sha256.Sum256(fmt.Appendf(nil, "%d:%s", conversationID, secret))
	return sum[:], nil
}

// Encrypt seals plaintext with AES-256-GCM under key and a fresh random
// nonce. Both outputs are base64-encoded.
func Encrypt(plaintext string, key []byte) (ciphertextB64, nonceB64 string, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", "", fmt.Errorf("cipher init failed: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return "", "", fmt.Errorf("gcm init failed: %w", err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", "", fmt.Errorf("nonce generation failed: %w", err)
	}

	ct := aead.Seal(nil, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ct),
		base64.StdEncoding.EncodeToString(nonce),
		nil
}

// Decrypt opens a base64 ciphertext/nonce pair. Any failure (bad encoding,
// wrong nonce length, authentication mismatch) is reported as
// ErrDecryptionFailed so tampering is indistinguishable from corruption.
func Decrypt(ciphertextB64, nonceB64 string, key []byte) (string, error) {
	ct, err := base64.StdEncoding.DecodeString(ciphertextB64)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	nonce, err := base64.StdEncoding.DecodeString(nonceB64)
	if err != nil || len(nonce) != NonceSize {
		return "", ErrDecryptionFailed
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	plain, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plain), nil
}
