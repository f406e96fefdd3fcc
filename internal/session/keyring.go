package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "shopdesk"
	keyringAccount = "session"
)

// KeyringBackend stores the session record in the OS keychain/credential
// manager, so the token never touches plain files
type KeyringBackend struct {
	Service string
	Account string
}

// NewKeyringBackend creates a keyring backend under the default service
// and account names
func NewKeyringBackend() *KeyringBackend {
	return &KeyringBackend{Service: keyringService, Account: keyringAccount}
}

// Load reads the session record from the keychain
func (k *KeyringBackend) Load() (*State, error) {
	secret, err := keyring.Get(k.Service, k.Account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session from keyring: %w", err)
	}

	var state State
	if err := json.Unmarshal([]byte(secret), &state); err != nil {
		return nil, fmt.Errorf("failed to parse keyring session: %w", err)
	}

	return &state, nil
}

// Save writes the session record to the keychain
func (k *KeyringBackend) Save(state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := keyring.Set(k.Service, k.Account, string(data)); err != nil {
		return fmt.Errorf("failed to save session to keyring: %w", err)
	}

	return nil
}

// Clear removes the session record from the keychain. An already-missing
// entry is not an error.
func (k *KeyringBackend) Clear() error {
	if err := keyring.Delete(k.Service, k.Account); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete session from keyring: %w", err)
	}
	return nil
}
