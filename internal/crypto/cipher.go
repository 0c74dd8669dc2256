package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

var (
	ErrInvalidKeySize    = errors.New("invalid key size: must be 32 bytes for AES-256")
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrInvalidCiphertext = errors.New("invalid ciphertext: too short")
)

// Cipher encrypts platform credential material at rest with AES-256-GCM.
// A nil Cipher (no master key configured) passes values through unchanged,
// so deployments without a key keep working with plaintext credentials.
type Cipher struct {
	key []byte
}

// NewCipher builds a Cipher from a base64-encoded 32-byte master key.
// An empty key string yields a nil Cipher (passthrough mode).
func NewCipher(masterKeyBase64 string) (*Cipher, error) {
	if masterKeyBase64 == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(masterKeyBase64)
	if err != nil || len(key) != 32 {
		return nil, ErrInvalidKeySize
	}
	return &Cipher{key: key}, nil
}

// Encrypt returns base64(nonce + ciphertext + tag) of the plaintext.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if c == nil {
		return plaintext, nil
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func (c *Cipher) Decrypt(ciphertextBase64 string) (string, error) {
	if c == nil {
		return ciphertextBase64, nil
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertextBase64)
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonceSize := gcm.NonceSize()
	if len(raw) < nonceSize {
		return "", ErrInvalidCiphertext
	}
	nonce, sealed := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// GenerateKey returns a random 32-byte key, base64-encoded, for use as the
// master key in configuration.
func GenerateKey() (string, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
