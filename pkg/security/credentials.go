package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"github.com/accswap/accswap-backend/pkg/config"
)

// ErrCiphertextMalformed signals a credential blob that cannot be decrypted.
var ErrCiphertextMalformed = fmt.Errorf("malformed credential ciphertext")

// CredentialCipher encrypts account and delivery credentials at rest.
// Ciphertext layout is nonce || sealed; the key is derived from the
// configured secret, never read from ambient environment.
type CredentialCipher struct {
	aead cipher.AEAD
}

// NewCredentialCipher builds a cipher from the vault configuration.
func NewCredentialCipher(cfg config.VaultConfig) (*CredentialCipher, error) {
	if cfg.CredentialKey == "" {
		return nil, fmt.Errorf("credential key is required")
	}

	key := sha256.Sum256([]byte(cfg.CredentialKey))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("initializing cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("initializing gcm: %w", err)
	}

	return &CredentialCipher{aead: aead}, nil
}

// Encrypt seals the plaintext credential.
func (c *CredentialCipher) Encrypt(plaintext string) ([]byte, error) {
	if plaintext == "" {
		return nil, fmt.Errorf("credential cannot be empty")
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return c.aead.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

// Decrypt opens a sealed credential blob.
func (c *CredentialCipher) Decrypt(ciphertext []byte) (string, error) {
	nonceSize := c.aead.NonceSize()
	if len(ciphertext) <= nonceSize {
		return "", ErrCiphertextMalformed
	}

	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrCiphertextMalformed
	}

	return string(plaintext), nil
}
