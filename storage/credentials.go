package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

const credentialsKey = "irc4osu-login"

// Credentials is the persisted login record. UserID is zero until it has
// been resolved by the lookup service.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	UserID   int    `json:"user_id,omitempty"`
}

// Resolver maps a username to its numeric user id.
type Resolver interface {
	UserID(ctx context.Context, username string) (int, error)
}

// CredentialStore persists login credentials, resolving the numeric user
// id once on first save.
type CredentialStore struct {
	kv       *Store
	seal     *sealer
	resolver Resolver
}

// NewCredentialStore wires a credential store over kv. The install key
// used to seal passwords lives in dataDir.
func NewCredentialStore(kv *Store, dataDir string, resolver Resolver) (*CredentialStore, error) {
	seal, err := newSealer(filepath.Join(dataDir, "install.key"))
	if err != nil {
		return nil, err
	}
	return &CredentialStore{kv: kv, seal: seal, resolver: resolver}, nil
}

// Load returns the persisted credentials, or (nil, nil) when no record
// exists. Any other failure is returned to the caller.
func (c *CredentialStore) Load() (*Credentials, error) {
	var creds Credentials
	err := c.kv.Get(credentialsKey, &creds)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	password, err := c.seal.Open(creds.Password)
	if err != nil {
		return nil, fmt.Errorf("storage: unseal credentials: %w", err)
	}
	creds.Password = password
	return &creds, nil
}

// Save persists creds, overwriting any prior record. When the user id has
// not been resolved yet it is looked up first; once resolved it is never
// re-queried for the same username.
func (c *CredentialStore) Save(ctx context.Context, creds *Credentials) error {
	if creds.UserID == 0 {
		id, err := c.resolver.UserID(ctx, creds.Username)
		if err != nil {
			return fmt.Errorf("storage: resolve user id for %s: %w", creds.Username, err)
		}
		creds.UserID = id
	}

	sealed, err := c.seal.Seal(creds.Password)
	if err != nil {
		return err
	}
	record := Credentials{
		Username: creds.Username,
		Password: sealed,
		UserID:   creds.UserID,
	}
	return c.kv.Set(credentialsKey, &record)
}

// Clear removes the persisted record. Used by logout.
func (c *CredentialStore) Clear() error {
	return c.kv.Remove(credentialsKey)
}
