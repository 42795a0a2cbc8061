// Package common defines shared constants and sentinel errors used across
// the storage backend. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Admission.
	ErrStorageLimitExceeded = errors.New("storage limit exceeded")

	// Cryptographic failures. Never retried.
	ErrAuthenticationFailed = errors.New("ciphertext authentication failed")
	ErrKeyUnwrapFailed      = errors.New("data key unwrap failed")

	// Store failures.
	ErrTransientIO   = errors.New("transient i/o failure")
	ErrMetadataWrite = errors.New("metadata write failed")
	ErrInconsistency = errors.New("blob/record inconsistency")

	ErrPurgeIncomplete = errors.New("purge incomplete")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

const mib = 1024 * 1024

// StorageLimitExceededError is returned when an upload would push an owner
// past the storage quota. It matches ErrStorageLimitExceeded with errors.Is.
type StorageLimitExceededError struct {
	Used     int64
	Incoming int64
	Limit    int64
}

func (e *StorageLimitExceededError) Error() string {
	return fmt.Sprintf("storage limit exceeded: you have used %dMB of your %dMB limit (upload of %d bytes rejected)",
		e.Used/mib, e.Limit/mib, e.Incoming)
}

func (e *StorageLimitExceededError) Is(target error) bool {
	return target == ErrStorageLimitExceeded
}
