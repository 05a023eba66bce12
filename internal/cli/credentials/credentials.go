package credentials

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "tenantgate-cli"
)

// ErrNoSession is returned when no session is saved for a server
var ErrNoSession = errors.New("no saved session")

// Store defines session id storage; the keyring implementation can be swapped in tests
type Store interface {
	SaveSession(serverURL, sessionID string) error
	LoadSession(serverURL string) (string, error)
	DeleteSession(serverURL string) error
}

// getKeyringKey returns a unique key for storing session ids per server
func getKeyringKey(serverURL string) string {
	return fmt.Sprintf("session-%s", serverURL)
}

// keyringStore keeps session ids in the OS keychain/credential manager
type keyringStore struct{}

var Default Store = &keyringStore{}

func (keyringStore) SaveSession(serverURL, sessionID string) error {
	if err := keyring.Set(service, getKeyringKey(serverURL), sessionID); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (keyringStore) LoadSession(serverURL string) (string, error) {
	sessionID, err := keyring.Get(service, getKeyringKey(serverURL))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w for %s. Run 'tenantgate session issue --save' first", ErrNoSession, serverURL)
		}
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	return sessionID, nil
}

func (keyringStore) DeleteSession(serverURL string) error {
	if err := keyring.Delete(service, getKeyringKey(serverURL)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
