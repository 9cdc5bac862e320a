// Package identity answers "who is using commitly" and whether that owner
// has linked a GitHub account.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/GioMjds/commitly/internal/credentials"
)

// ErrNotAuthenticated means there is no owner for the current session.
var ErrNotAuthenticated = errors.New("not authenticated")

// Identity is the current owner.
type Identity struct {
	OwnerID     string `json:"owner_id"`
	GitHubLogin string `json:"github_login,omitempty"`
	// Linked is true when a GitHub token is available for the owner.
	Linked bool `json:"linked"`
}

// Provider supplies the current identity.
type Provider interface {
	Current(ctx context.Context) (Identity, error)
}

// Configured resolves the identity from configured values and the
// credential store.
type Configured struct {
	Owner       string
	GitHubLogin string
	Credentials credentials.Store
}

// loginStore is implemented by credential stores that remember which
// GitHub login a token was issued for.
type loginStore interface {
	Login(ctx context.Context, owner string) (string, error)
}

// Current returns ErrNotAuthenticated when no owner is configured. A
// configured GitHubLogin wins over the login recorded with the token.
func (c Configured) Current(ctx context.Context) (Identity, error) {
	if c.Owner == "" {
		return Identity{}, ErrNotAuthenticated
	}
	id := Identity{OwnerID: c.Owner, GitHubLogin: c.GitHubLogin}
	if ls, ok := c.Credentials.(loginStore); ok && id.GitHubLogin == "" {
		login, err := ls.Login(ctx, c.Owner)
		if err != nil {
			return Identity{}, fmt.Errorf("reading credentials: %w", err)
		}
		id.GitHubLogin = login
	}
	if c.Credentials != nil && id.GitHubLogin != "" {
		tok, err := c.Credentials.Get(ctx, c.Owner)
		if err != nil {
			return Identity{}, fmt.Errorf("reading credentials: %w", err)
		}
		id.Linked = tok != ""
	}
	return id, nil
}

// Static is a fixed identity, for tests and embedding.
type Static Identity

func (s Static) Current(ctx context.Context) (Identity, error) {
	if s.OwnerID == "" {
		return Identity{}, ErrNotAuthenticated
	}
	return Identity(s), nil
}
