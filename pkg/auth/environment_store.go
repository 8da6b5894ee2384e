package auth

import (
	"os"
	"time"
)

// EnvironmentStore reads credentials from environment variables. It is
// read-only.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(creds *Credentials) error {
	return ErrStoreUnavailable
}

// EnvName is the name environment credentials are listed under
const EnvName = "env"

// Retrieve returns the environment credentials. Only the empty name and
// EnvName resolve.
func (e *EnvironmentStore) Retrieve(name string) (*Credentials, error) {
	if name != "" && name != EnvName {
		return nil, ErrCredentialsNotFound
	}

	clientID := firstEnv("IGDBCOVERS_CLIENT_ID", "TWITCH_CLIENT_ID")
	clientSecret := firstEnv("IGDBCOVERS_CLIENT_SECRET", "TWITCH_CLIENT_SECRET")

	if clientID == "" || clientSecret == "" {
		return nil, ErrCredentialsNotFound
	}

	return &Credentials{
		Name:         EnvName,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		LastModified: time.Now(),
	}, nil
}

// List returns a single entry if the environment carries credentials
func (e *EnvironmentStore) List() ([]*Credentials, error) {
	creds, err := e.Retrieve("")
	if err != nil {
		return []*Credentials{}, nil
	}
	return []*Credentials{creds}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
