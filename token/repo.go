package token

import "github.com/jrsteele09/go-sales-client/users"

// Storage keys shared with the browser front end
const (
	KeyAccessToken = "access_token"
	KeyUser        = "usuario"
)

// StoredCredential is the persisted bearer token and cached user profile.
// The two halves are stored independently and either may be missing.
type StoredCredential struct {
	Token string
	User  *users.User
}

// Complete reports whether both the token and the cached user are present
func (c StoredCredential) Complete() bool {
	return c.Token != "" && c.User != nil
}

// Empty reports whether neither the token nor the cached user is present
func (c StoredCredential) Empty() bool {
	return c.Token == "" && c.User == nil
}

// Reader is the read-only view the API gateway uses to attach bearer tokens
type Reader interface {
	// AccessToken returns the stored token, or "" when there is none
	AccessToken() (string, error)
}

// Store persists the credential across process restarts.
// Token contents are opaque; nothing here validates them.
type Store interface {
	Reader

	// Read returns whatever is stored, including partial state
	Read() (StoredCredential, error)

	// Write stores both the token and the user; partial credentials are rejected
	Write(cred StoredCredential) error

	// Clear removes both keys
	Clear() error
}

// KV is the key-value storage a Store persists into
type KV interface {
	// Get returns the value and whether the key exists
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}
