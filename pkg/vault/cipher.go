// Package vault provides symmetric encryption for credential material at
// rest. Webhook secrets and wallet mnemonics are stored as AES-256-GCM
// ciphertext produced with keys derived from a single process-wide master
// key loaded once at startup. Uses HKDF with SHA-256 to derive independent
// subkeys for encryption and for secret digests.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const masterKeySize = 32 // AES-256

// ErrDecryption reports ciphertext that could not be decrypted: tampering,
// wrong key, or malformed input. It is deliberately distinct from "no
// ciphertext stored"; callers must represent absence before calling Decrypt.
var ErrDecryption = errors.New("ciphertext cannot be decrypted")

// Cipher encrypts and decrypts opaque secret blobs. Implementations hold
// their key material for the process lifetime; no per-call keys are accepted.
type Cipher interface {
	// Encrypt seals plaintext and returns a base64-encoded ciphertext
	// containing nonce || ciphertext || tag.
	Encrypt(plaintext []byte) (string, error)

	// Decrypt opens a ciphertext produced by Encrypt. Any failure wraps
	// ErrDecryption.
	Decrypt(ciphertext string) ([]byte, error)

	// SecretDigest returns a fixed-length keyed digest of a secret,
	// suitable for constant-time comparison.
	SecretDigest(secret []byte) []byte
}

// MasterKeyCipher implements Cipher with subkeys derived from one 32-byte
// master key. The struct is immutable after construction.
type MasterKeyCipher struct {
	encKey []byte
	macKey []byte
}

// NewMasterKeyCipher derives the encryption and digest subkeys from the
// master key. The master key must be 32 bytes.
func NewMasterKeyCipher(masterKey []byte) (*MasterKeyCipher, error) {
	if len(masterKey) != masterKeySize {
		return nil, fmt.Errorf("master key must be %d bytes (AES-256)", masterKeySize)
	}

	encKey, err := deriveSubkey(masterKey, "credential-encryption")
	if err != nil {
		return nil, err
	}
	macKey, err := deriveSubkey(masterKey, "webhook-secret-digest")
	if err != nil {
		return nil, err
	}

	return &MasterKeyCipher{encKey: encKey, macKey: macKey}, nil
}

func deriveSubkey(masterKey []byte, purpose string) ([]byte, error) {
	r := hkdf.New(sha256.New, masterKey, nil, []byte(purpose))
	key := make([]byte, masterKeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to derive %s subkey: %w", purpose, err)
	}
	return key, nil
}

// Encrypt seals plaintext with AES-256-GCM under the derived encryption key.
// Returns base64(nonce || ciphertext || tag).
func (c *MasterKeyCipher) Encrypt(plaintext []byte) (string, error) {
	gcm, err := c.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a ciphertext produced by Encrypt. Malformed base64, a short
// ciphertext, or an authentication failure all wrap ErrDecryption so callers
// cannot mistake corruption for absence.
func (c *MasterKeyCipher) Decrypt(ciphertext string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid encoding", ErrDecryption)
	}

	gcm, err := c.gcm()
	if err != nil {
		return nil, err
	}

	if len(raw) < gcm.NonceSize() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecryption)
	}

	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed", ErrDecryption)
	}

	return plaintext, nil
}

// SecretDigest returns an HMAC-SHA256 digest of the secret under the derived
// digest subkey. Digests are fixed-length, so comparing them leaks nothing
// about the secret's length or content through timing.
func (c *MasterKeyCipher) SecretDigest(secret []byte) []byte {
	mac := hmac.New(sha256.New, c.macKey)
	mac.Write(secret)
	return mac.Sum(nil)
}

func (c *MasterKeyCipher) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.encKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
