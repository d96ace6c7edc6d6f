// Package store owns the single in-memory snapshot of an opened vault and
// the lock serializing all structural access. Mutations follow the
// copy-and-swap discipline: take the current snapshot, derive a new one,
// swap it in atomically, then commit to disk.
package store

import (
	"context"
	"crypto/subtle"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mkorolovs/passvault/internal/common"
	"github.com/mkorolovs/passvault/internal/cryptox"
	"github.com/mkorolovs/passvault/internal/logging"
)

// RootAutotypeDefault is the effective autotype value the root group
// resolves to when it inherits.
const RootAutotypeDefault = true

// Store is the single owner of the current snapshot. Every read traversal
// and every swap must happen between Lock and Unlock; Commit is expected to
// be called while still holding the lock, so storage I/O blocks other
// readers and writers for its duration. That is deliberate: consistency of
// the snapshot chain is preferred over commit latency.
type Store struct {
	mu   sync.Mutex
	log  logging.Logger
	path string

	key  []byte
	salt []byte

	snapshot *Snapshot
}

// Create initializes a new vault file at path with an empty tree and the
// given root title, encrypted under a key derived from password.
func Create(path string, password []byte, rootTitle string, log logging.Logger) (*Store, error) {
	salt, err := cryptox.NewSalt()
	if err != nil {
		return nil, err
	}

	s := &Store{
		log:      log,
		path:     path,
		key:      cryptox.DeriveMasterKey(password, salt),
		salt:     salt,
		snapshot: NewSnapshot(rootTitle),
	}

	s.Lock()
	defer s.Unlock()
	if err := s.Commit(); err != nil {
		return nil, err
	}
	return s, nil
}

// Open loads and decrypts an existing vault file. A wrong password surfaces
// as common.ErrFailedToDecryptData.
func Open(path string, password []byte, log logging.Logger) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vault file: %w", err)
	}

	salt, ciphertext, err := decodeVaultFile(data)
	if err != nil {
		return nil, err
	}

	key := cryptox.DeriveMasterKey(password, salt)
	plaintext, err := cryptox.DecryptBytes(ciphertext, key)
	if err != nil {
		return nil, err
	}

	snap, err := unmarshalSnapshot(plaintext)
	if err != nil {
		return nil, err
	}

	log.Debug(context.Background(), "vault opened",
		"path", path, "groups", len(snap.groups), "notes", len(snap.notes))

	return &Store{
		log:      log,
		path:     path,
		key:      key,
		salt:     append([]byte(nil), salt...),
		snapshot: snap,
	}, nil
}

// Lock acquires exclusive access to the snapshot.
func (s *Store) Lock() { s.mu.Lock() }

// Unlock releases exclusive access.
func (s *Store) Unlock() { s.mu.Unlock() }

// Snapshot returns the current snapshot. The lock must be held; the
// returned value stays a consistent (possibly stale) view after release.
func (s *Store) Snapshot() *Snapshot { return s.snapshot }

// Swap replaces the current snapshot. The lock must be held. Readers
// observe either the old or the new snapshot, never a mix.
func (s *Store) Swap(snap *Snapshot) { s.snapshot = snap }

// WithLock runs fn with the lock held against the current snapshot.
func (s *Store) WithLock(fn func(snap *Snapshot) error) error {
	s.Lock()
	defer s.Unlock()
	return fn(s.snapshot)
}

// Commit serializes, encrypts and persists the current snapshot. The lock
// must be held. On failure the in-memory snapshot is left untouched, which
// means persisted state may now lag the in-memory state; the error wraps
// common.ErrCommitFailed so callers can surface exactly that condition.
func (s *Store) Commit() error {
	plaintext, err := marshalSnapshot(s.snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %v: %w", err, common.ErrCommitFailed)
	}

	ciphertext, err := cryptox.EncryptBytes(plaintext, s.key)
	if err != nil {
		return fmt.Errorf("encrypt snapshot: %v: %w", err, common.ErrCommitFailed)
	}

	data := encodeVaultFile(s.salt, ciphertext)
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %v: %w", filepath.Base(tmp), err, common.ErrCommitFailed)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %v: %w", filepath.Base(tmp), err, common.ErrCommitFailed)
	}

	s.log.Debug(context.Background(), "vault committed", "path", s.path, "bytes", len(data))
	return nil
}

// VerifyPassword reports whether password derives the key the vault is
// currently open with. Used to re-authenticate without reloading the file.
func (s *Store) VerifyPassword(password []byte) bool {
	s.Lock()
	defer s.Unlock()
	key := cryptox.DeriveMasterKey(password, s.salt)
	defer cryptox.WipeBytes(key)
	return subtle.ConstantTimeCompare(key, s.key) == 1
}

// Path returns the vault file location.
func (s *Store) Path() string { return s.path }

// Close wipes key material. The store must not be used afterwards.
func (s *Store) Close() {
	s.Lock()
	defer s.Unlock()
	cryptox.WipeBytes(s.key)
	s.snapshot = nil
}
