package secret

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// Size is the secret length in bytes. Both the bitcoin script path and the
// EVM contracts expect exactly 32 bytes.
const Size = 32

// ErrUnsupportedDigest is returned for a digest algorithm no supported chain
// verifies.
var ErrUnsupportedDigest = errors.New("unsupported digest algorithm")

// Algo names the hash function a chain's settlement layer uses to verify
// the revealed secret against the commitment.
type Algo string

const (
	SHA256    Algo = "sha256"
	Keccak256 Algo = "keccak256"
)

// Digest hashes the secret with the given algorithm.
func Digest(algo Algo, sec []byte) ([]byte, error) {
	switch algo {
	case SHA256:
		hash := sha256.Sum256(sec)
		return hash[:], nil
	case Keccak256:
		return crypto.Keccak256(sec), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDigest, string(algo))
	}
}

// Verify reports whether the secret matches the commitment hash under algo.
func Verify(algo Algo, sec, hash []byte) (bool, error) {
	want, err := Digest(algo, sec)
	if err != nil {
		return false, err
	}
	return bytes.Equal(want, hash), nil
}

// Material holds a freshly generated secret and its commitment. The secret
// must not leave the process except through the Vault or a reveal
// transaction.
type Material struct {
	Secret []byte
	Hash   []byte
	Algo   Algo
}

// Generate draws a new 32 byte secret from crypto/rand and commits to it
// with the given algorithm.
func Generate(algo Algo) (Material, error) {
	sec := make([]byte, Size)
	if _, err := rand.Read(sec); err != nil {
		return Material{}, fmt.Errorf("generate secret: %w", err)
	}
	hash, err := Digest(algo, sec)
	if err != nil {
		return Material{}, err
	}
	return Material{Secret: sec, Hash: hash, Algo: algo}, nil
}

func (m Material) SecretHex() string {
	return hex.EncodeToString(m.Secret)
}

func (m Material) HashHex() string {
	return hex.EncodeToString(m.Hash)
}
