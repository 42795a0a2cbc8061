package cryptox

import (
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/securestorage/internal/common"
	"golang.org/x/crypto/argon2"
)

// DeriveMasterKey stretches a passphrase into a 256-bit key with argon2id.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// LoadMasterKey resolves the master key from configuration. A base64 encoded
// key takes precedence; otherwise the key is derived from passphrase and salt.
func LoadMasterKey(encoded, passphrase, salt string) ([]byte, error) {
	if encoded != "" {
		key, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: master key is not valid base64: %v", common.ErrorValidation, err)
		}
		switch len(key) {
		case 16, 24, 32:
			return key, nil
		default:
			return nil, fmt.Errorf("%w: master key must be 16, 24 or 32 bytes, got %d", common.ErrorValidation, len(key))
		}
	}

	if passphrase == "" {
		return nil, fmt.Errorf("%w: no master key configured", common.ErrorValidation)
	}
	if salt == "" {
		return nil, fmt.Errorf("%w: master key salt is required with a passphrase", common.ErrorValidation)
	}
	return DeriveMasterKey([]byte(passphrase), []byte(salt)), nil
}
