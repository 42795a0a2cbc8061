package cryptox

import (
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"
	"errors"
)

// RFC 3394 AES key wrap. The key to be wrapped is processed in 64-bit blocks.

const (
	wrapBlockSize     = 8
	legacyWrappedSize = 48
)

var defaultIV = []byte{0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6}

var errIntegrityCheck = errors.New("integrity check failed")

func wrap(kek cipher.Block, plaintext []byte) ([]byte, error) {
	if len(plaintext)%wrapBlockSize != 0 || len(plaintext) < 2*wrapBlockSize {
		return nil, errors.New("key wrap input must be a multiple of 8 bytes and at least 16 bytes")
	}

	n := len(plaintext) / wrapBlockSize
	out := make([]byte, len(plaintext)+wrapBlockSize)
	copy(out[:wrapBlockSize], defaultIV)
	copy(out[wrapBlockSize:], plaintext)

	b := make([]byte, 16)
	for j := 0; j < 6; j++ {
		for i := 1; i <= n; i++ {
			r := out[i*wrapBlockSize : (i+1)*wrapBlockSize]
			copy(b[:8], out[:8])
			copy(b[8:], r)
			kek.Encrypt(b, b)

			t := uint64(n*j + i)
			binary.BigEndian.PutUint64(out[:8], binary.BigEndian.Uint64(b[:8])^t)
			copy(r, b[8:])
		}
	}
	return out, nil
}

func unwrap(kek cipher.Block, ciphertext []byte) ([]byte, error) {
	if len(ciphertext)%wrapBlockSize != 0 || len(ciphertext) < 3*wrapBlockSize {
		return nil, errors.New("wrapped key must be a multiple of 8 bytes and at least 24 bytes")
	}

	n := len(ciphertext)/wrapBlockSize - 1
	a := make([]byte, wrapBlockSize)
	copy(a, ciphertext[:wrapBlockSize])
	r := make([]byte, n*wrapBlockSize)
	copy(r, ciphertext[wrapBlockSize:])

	b := make([]byte, 16)
	for j := 5; j >= 0; j-- {
		for i := n; i >= 1; i-- {
			ri := r[(i-1)*wrapBlockSize : i*wrapBlockSize]
			t := uint64(n*j + i)
			binary.BigEndian.PutUint64(b[:8], binary.BigEndian.Uint64(a)^t)
			copy(b[8:], ri)
			kek.Decrypt(b, b)

			copy(a, b[:8])
			copy(ri, b[8:])
		}
	}

	if subtle.ConstantTimeCompare(a, defaultIV) != 1 {
		return nil, errIntegrityCheck
	}
	return r, nil
}

// unwrapLegacyECB decrypts a key wrapped block-by-block with AES/ECB and
// PKCS#5 padding. It is read-only: new keys are never wrapped this way.
func unwrapLegacyECB(kek cipher.Block, ciphertext []byte) ([]byte, error) {
	bs := kek.BlockSize()
	if len(ciphertext)%bs != 0 || len(ciphertext) == 0 {
		return nil, errors.New("legacy wrapped key is not block aligned")
	}

	out := make([]byte, len(ciphertext))
	for i := 0; i < len(ciphertext); i += bs {
		kek.Decrypt(out[i:i+bs], ciphertext[i:i+bs])
	}

	pad := int(out[len(out)-1])
	if pad == 0 || pad > bs {
		return nil, errIntegrityCheck
	}
	for _, p := range out[len(out)-pad:] {
		if int(p) != pad {
			return nil, errIntegrityCheck
		}
	}
	return out[:len(out)-pad], nil
}
