// Package cryptox implements envelope encryption for stored files: every
// file gets a fresh AES-256 data key used with AES-GCM, and that data key is
// wrapped under a single master key (RFC 3394) before it is persisted.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/securestorage/internal/common"
)

const (
	// DataKeySize is the length of a per-file data key (AES-256).
	DataKeySize = 32
	// NonceSize is the AES-GCM nonce length (96 bits).
	NonceSize = 12
)

// DataKey is a per-file symmetric key. It must never be persisted unwrapped.
type DataKey []byte

// Nonce is the one-time value passed to AES-GCM together with a DataKey.
type Nonce []byte

// EnvelopeCipher encrypts file content under per-file data keys and wraps
// those keys under the master key it was constructed with.
//
// The master key is resolved once at startup and injected here; the cipher
// never mutates it, so a single instance is safe for concurrent use.
type EnvelopeCipher struct {
	kek cipher.Block
}

// NewEnvelopeCipher builds an EnvelopeCipher around masterKey, which must be
// a valid AES key (16, 24 or 32 bytes).
func NewEnvelopeCipher(masterKey []byte) (*EnvelopeCipher, error) {
	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return nil, fmt.Errorf("%w: master key: %v", common.ErrorValidation, err)
	}
	return &EnvelopeCipher{kek: block}, nil
}

// GenerateDataKey returns a fresh random 256-bit key.
func (c *EnvelopeCipher) GenerateDataKey() DataKey {
	return common.GenerateRandByteArray(DataKeySize)
}

// GenerateNonce returns a fresh random 96-bit nonce. A (key, nonce) pair
// must never be reused; callers generate a new nonce for every encryption.
func (c *EnvelopeCipher) GenerateNonce() Nonce {
	return common.GenerateRandByteArray(NonceSize)
}

func newGCM(key DataKey) (cipher.AEAD, error) {
	if len(key) != DataKeySize {
		return nil, fmt.Errorf("data key must be %d bytes, got %d", DataKeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext with AES-GCM. The 16-byte authentication tag is
// appended to the returned ciphertext.
func (c *EnvelopeCipher) Encrypt(plaintext []byte, key DataKey, nonce Nonce) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aesgcm.NonceSize() {
		return nil, fmt.Errorf("nonce must be %d bytes, got %d", aesgcm.NonceSize(), len(nonce))
	}

	return aesgcm.Seal(nil, nonce, plaintext, nil), nil
}

// Decrypt opens ciphertext produced by Encrypt. Any mismatch (tampered bytes,
// wrong key, wrong nonce) yields ErrAuthenticationFailed and no plaintext.
func (c *EnvelopeCipher) Decrypt(ciphertext []byte, key DataKey, nonce Nonce) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrAuthenticationFailed, err)
	}
	if len(nonce) != aesgcm.NonceSize() {
		return nil, fmt.Errorf("%w: nonce must be %d bytes, got %d", common.ErrAuthenticationFailed, aesgcm.NonceSize(), len(nonce))
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrAuthenticationFailed, err)
	}
	return plaintext, nil
}

// WrapKey wraps a data key under the master key and returns it base64 encoded.
func (c *EnvelopeCipher) WrapKey(key DataKey) (string, error) {
	if len(key) != DataKeySize {
		return "", fmt.Errorf("data key must be %d bytes, got %d", DataKeySize, len(key))
	}
	wrapped, err := wrap(c.kek, key)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(wrapped), nil
}

// UnwrapKey reverses WrapKey. Malformed input or a value wrapped under a
// different master key yields ErrKeyUnwrapFailed.
//
// 48-byte values are records written by the previous implementation, which
// wrapped keys with AES/ECB/PKCS#5; they are still readable.
func (c *EnvelopeCipher) UnwrapKey(wrapped string) (DataKey, error) {
	raw, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", common.ErrKeyUnwrapFailed, err)
	}

	var key []byte
	switch len(raw) {
	case DataKeySize + wrapBlockSize:
		key, err = unwrap(c.kek, raw)
	case legacyWrappedSize:
		key, err = unwrapLegacyECB(c.kek, raw)
	default:
		err = fmt.Errorf("unexpected wrapped key length %d", len(raw))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrKeyUnwrapFailed, err)
	}
	if len(key) != DataKeySize {
		common.WipeByteArray(key)
		return nil, fmt.Errorf("%w: unwrapped key has %d bytes", common.ErrKeyUnwrapFailed, len(key))
	}
	return key, nil
}

// EncodeNonce renders a nonce for storage in a metadata record.
func EncodeNonce(n Nonce) string {
	return base64.StdEncoding.EncodeToString(n)
}

// DecodeNonce parses a nonce stored by EncodeNonce.
func DecodeNonce(s string) (Nonce, error) {
	n, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", common.ErrAuthenticationFailed, err)
	}
	return n, nil
}
