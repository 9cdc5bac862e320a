package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreds map[string]string

func (f fakeCreds) Get(_ context.Context, owner string) (string, error) {
	if owner == "broken" {
		return "", errors.New("disk on fire")
	}
	return f[owner], nil
}

func TestConfigured_Current(t *testing.T) {
	creds := fakeCreds{"octocat": "tok"}
	tests := []struct {
		name    string
		p       Configured
		want    Identity
		wantErr error
	}{
		{"no owner", Configured{}, Identity{}, ErrNotAuthenticated},
		{"owner only", Configured{Owner: "me", Credentials: creds}, Identity{OwnerID: "me"}, nil},
		{"login without token", Configured{Owner: "me", GitHubLogin: "me", Credentials: creds}, Identity{OwnerID: "me", GitHubLogin: "me"}, nil},
		{"linked", Configured{Owner: "octocat", GitHubLogin: "octocat", Credentials: creds}, Identity{OwnerID: "octocat", GitHubLogin: "octocat", Linked: true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.p.Current(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigured_CredentialError(t *testing.T) {
	_, err := Configured{Owner: "broken", GitHubLogin: "x", Credentials: fakeCreds{}}.Current(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotAuthenticated)
}

func TestStatic(t *testing.T) {
	_, err := Static{}.Current(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	id, err := Static{OwnerID: "a", Linked: true}.Current(context.Background())
	require.NoError(t, err)
	assert.True(t, id.Linked)
}

type loginCreds struct{ fakeCreds }

func (loginCreds) Login(context.Context, string) (string, error) { return "octo-gh", nil }

func TestConfigured_StoredLogin(t *testing.T) {
	creds := loginCreds{fakeCreds{"me": "tok"}}

	got, err := Configured{Owner: "me", Credentials: creds}.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Identity{OwnerID: "me", GitHubLogin: "octo-gh", Linked: true}, got)

	got, err = Configured{Owner: "me", GitHubLogin: "configured", Credentials: creds}.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "configured", got.GitHubLogin)
}
