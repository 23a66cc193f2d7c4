package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for deriving the vault key from the master key
// material. The salt is fixed so the same material always yields the same key.
const (
	kdfMemory      = 19 * 1024 // KiB
	kdfIterations  = 2
	kdfParallelism = 1
	kdfKeyLength   = 32
)

var kdfSalt = []byte("srcode/vault/v1")

// ErrCiphertext is returned when sealed data is truncated or fails
// authentication (wrong key or wrong associated data).
var ErrCiphertext = errors.New("cryptox: invalid ciphertext")

// Vault seals secrets at rest with AES-256-GCM.
//
// The output format is [12-byte nonce][ciphertext][16-byte tag]. Associated
// data binds a ciphertext to its owner, so a row copied to another username
// fails to open.
type Vault struct {
	aead      cipher.AEAD
	ephemeral bool
}

// NewVault derives an AES-256 key from keyMaterial with Argon2id.
func NewVault(keyMaterial []byte) (*Vault, error) {
	if len(keyMaterial) == 0 {
		return nil, errors.New("cryptox: empty master key material")
	}
	key := argon2.IDKey(keyMaterial, kdfSalt, kdfIterations, kdfMemory, kdfParallelism, kdfKeyLength)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return &Vault{aead: gcm}, nil
}

// LoadVault builds a vault from, in order:
//  1. the file at path (if non-empty)
//  2. envKey (the value of SRCODE_MASTER_KEY)
//  3. 32 random bytes
//
// A vault from random bytes cannot open anything sealed by a previous
// process; Ephemeral reports this.
func LoadVault(path, envKey string) (*Vault, error) {
	switch {
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read master key file: %w", err)
		}
		return NewVault([]byte(strings.TrimSpace(string(data))))
	case envKey != "":
		return NewVault([]byte(envKey))
	}

	material := make([]byte, 32)
	if _, err := rand.Read(material); err != nil {
		return nil, fmt.Errorf("generate ephemeral master key: %w", err)
	}
	v, err := NewVault(material)
	if err != nil {
		return nil, err
	}
	v.ephemeral = true
	return v, nil
}

// Ephemeral reports whether the key was generated for this process only.
func (v *Vault) Ephemeral() bool { return v.ephemeral }

// Seal encrypts plaintext bound to aad.
func (v *Vault) Seal(plaintext []byte, aad string) ([]byte, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return v.aead.Seal(nonce, nonce, plaintext, []byte(aad)), nil
}

// Open decrypts data produced by Seal with the same aad.
func (v *Vault) Open(sealed []byte, aad string) ([]byte, error) {
	n := v.aead.NonceSize()
	if len(sealed) < n+v.aead.Overhead() {
		return nil, ErrCiphertext
	}
	plaintext, err := v.aead.Open(nil, sealed[:n], sealed[n:], []byte(aad))
	if err != nil {
		return nil, ErrCiphertext
	}
	return plaintext, nil
}

// SealString is Seal for string secrets.
func (v *Vault) SealString(secret, aad string) ([]byte, error) {
	return v.Seal([]byte(secret), aad)
}

// OpenString is Open for string secrets.
func (v *Vault) OpenString(sealed []byte, aad string) (string, error) {
	b, err := v.Open(sealed, aad)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
