// Package cryptox implements the symmetric crypto used by the vault engine:
// argon2id master-key derivation, AES-GCM encryption of the serialized vault,
// and the string-oriented DataCipher consumed by stored-credential handling.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/mkorolovs/passvault/internal/common"
)

// KeyLen is the derived key size in bytes (AES-256).
const KeyLen = 32

// SaltLen is the size of the random salt stored in the vault file header.
const SaltLen = 16

// DeriveMasterKey derives a 32-byte key from a master password and salt
// using argon2id.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, KeyLen)
}

// NewSalt returns a fresh random salt for key derivation.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("read random salt: %w", err)
	}
	return salt, nil
}

// EncryptBytes encrypts plaintext with AES-GCM under key. The random nonce is
// prepended to the returned ciphertext.
func EncryptBytes(plaintext, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// DecryptBytes reverses EncryptBytes. It returns common.ErrFailedToDecryptData
// if the data is truncated or fails authentication.
func DecryptBytes(data, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(data) < aesgcm.NonceSize() {
		return nil, common.ErrFailedToDecryptData
	}
	nonce, ciphertext := data[:aesgcm.NonceSize()], data[aesgcm.NonceSize():]
	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, common.ErrFailedToDecryptData
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// DataCipher converts between plain strings and their stored representation.
// Stored credential blobs are text columns, so both directions work on
// strings; the encrypted form is base64 for transport inside JSON.
//
// Decode failure is a normal, expected outcome for unreadable legacy data,
// not a fatal error.
type DataCipher interface {
	// Encode encrypts plain and returns its stored text form.
	Encode(plain string) (string, error)

	// Decode reverses Encode.
	Decode(encoded string) (string, error)
}

// AESDataCipher is the production DataCipher: AES-GCM under a derived key,
// base64 transport encoding.
type AESDataCipher struct {
	key []byte
}

func NewAESDataCipher(key []byte) *AESDataCipher {
	return &AESDataCipher{key: key}
}

func (c *AESDataCipher) Encode(plain string) (string, error) {
	data, err := EncryptBytes([]byte(plain), c.key)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (c *AESDataCipher) Decode(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", common.ErrFailedToDecodeData
	}
	plain, err := DecryptBytes(data, c.key)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// Base64DataCipher encodes without encryption. It matches the legacy on-disk
// format of early versions and doubles as a deterministic cipher in tests.
type Base64DataCipher struct{}

func (Base64DataCipher) Encode(plain string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(plain)), nil
}

func (Base64DataCipher) Decode(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", common.ErrFailedToDecodeData
	}
	return string(data), nil
}

// WipeBytes overwrites b with zeros. Use it to drop master passwords and
// derived keys from memory after use. A nil slice is a no-op.
func WipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
