package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Vault seals secrets for durable storage so a swap can resume across a
// process restart without the secret ever resting on disk in the clear.
type Vault struct {
	aead cipher.AEAD
}

// NewVault derives an AES-256-GCM vault from the daemon's master entropy.
// Any seed works; it is hashed down to the key size.
func NewVault(seed []byte) (*Vault, error) {
	key := sha256.Sum256(seed)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("vault cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault gcm: %w", err)
	}
	return &Vault{aead: aead}, nil
}

// Seal encrypts the secret and returns a hex blob safe to persist.
func (v *Vault) Seal(sec []byte) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("vault nonce: %w", err)
	}
	sealed := v.aead.Seal(nonce, nonce, sec, nil)
	return hex.EncodeToString(sealed), nil
}

// Open decrypts a blob produced by Seal.
func (v *Vault) Open(sealed string) ([]byte, error) {
	raw, err := hex.DecodeString(sealed)
	if err != nil {
		return nil, fmt.Errorf("vault decode: %w", err)
	}
	if len(raw) < v.aead.NonceSize() {
		return nil, fmt.Errorf("vault blob too short")
	}
	nonce, ct := raw[:v.aead.NonceSize()], raw[v.aead.NonceSize():]
	sec, err := v.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, fmt.Errorf("vault open: %w", err)
	}
	return sec, nil
}
