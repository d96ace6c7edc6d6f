// Package common defines shared sentinel errors used across the vault
// engine and the used-file layer. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors raised before any snapshot mutation.
	ErrUIDIsNil              = errors.New("uid is nil")
	ErrParentUIDIsNil        = errors.New("parent uid is nil")
	ErrGroupInsideItsOwnTree = errors.New("failed to move group inside its own tree")
	ErrGroupAlreadyExists    = errors.New("group already exists")

	// Storage errors. Commit failures wrap ErrCommitFailed so callers can
	// distinguish "in-memory state changed but was not persisted".
	ErrCommitFailed = errors.New("commit failed")

	// Crypto errors (decode/decrypt of stored data).
	ErrFailedToDecodeData  = errors.New("failed to decode data")
	ErrFailedToDecryptData = errors.New("failed to decrypt data")
)
