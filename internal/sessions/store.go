// Package sessions stores session vaults keyed by session id.
//
// Vaults are opaque JSON blobs here; decoding and verification belong to the
// auth package. Keys are laid out as session:<id>.
package sessions

import (
	"context"
	"errors"
	"strings"
	"time"
)

// KeyPrefix is prepended to every session id in the backing store
const KeyPrefix = "session:"

var (
	ErrNotFound     = errors.New("session not found")
	ErrEmptySession = errors.New("empty session id")
)

// Key returns the store key for a session id
func Key(sessionID string) string {
	return KeyPrefix + sessionID
}

// IDFromKey strips the key prefix; ok is false for keys outside the namespace
func IDFromKey(key string) (string, bool) {
	return strings.CutPrefix(key, KeyPrefix)
}

// Store defines session vault persistence
type Store interface {
	// Get returns the raw vault, or ErrNotFound
	Get(ctx context.Context, sessionID string) ([]byte, error)

	// Set stores a vault; a zero ttl means no expiry
	Set(ctx context.Context, sessionID string, vault []byte, ttl time.Duration) error

	// Delete removes sessions; missing ids are ignored
	Delete(ctx context.Context, sessionIDs ...string) error

	// Scan calls fn for every stored session until fn returns an error
	Scan(ctx context.Context, fn func(sessionID string, vault []byte) error) error
}
