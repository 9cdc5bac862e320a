// Package credentials keeps the GitHub access token for each owner.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/oauth2"
)

// EnvToken, when set, overrides any stored token for every owner.
const EnvToken = "COMMITLY_GITHUB_TOKEN"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// Store returns the token for an owner, or "" when none is stored.
type Store interface {
	Get(ctx context.Context, owner string) (string, error)
}

// FileStore keeps one oauth2.Token JSON file per owner, readable only by
// the current user.
type FileStore struct {
	dir string
}

// NewFileStore stores tokens under <dataDir>/auth.
func NewFileStore(dataDir string) *FileStore {
	return &FileStore{dir: filepath.Join(dataDir, "auth")}
}

func (s *FileStore) path(owner string) string {
	return filepath.Join(s.dir, unsafeChars.ReplaceAllString(owner, "_")+".json")
}

// Get returns the owner's access token.
func (s *FileStore) Get(ctx context.Context, owner string) (string, error) {
	if v := os.Getenv(EnvToken); v != "" {
		return v, nil
	}
	tok, err := s.Token(ctx, owner)
	if err != nil || tok == nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// record is the stored file: the token plus the GitHub login it was
// issued for.
type record struct {
	Login string `json:"login,omitempty"`
	oauth2.Token
}

func (s *FileStore) read(owner string) (*record, error) {
	data, err := os.ReadFile(s.path(owner))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token: %w", err)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	if rec.AccessToken == "" {
		return nil, nil
	}
	return &rec, nil
}

// Token returns the stored token, or nil when the owner has none.
func (s *FileStore) Token(ctx context.Context, owner string) (*oauth2.Token, error) {
	rec, err := s.read(owner)
	if err != nil || rec == nil {
		return nil, err
	}
	return &rec.Token, nil
}

// Login returns the GitHub login recorded by Link, or "".
func (s *FileStore) Login(ctx context.Context, owner string) (string, error) {
	rec, err := s.read(owner)
	if err != nil || rec == nil {
		return "", err
	}
	return rec.Login, nil
}

// Put stores tok for owner, replacing any previous token.
func (s *FileStore) Put(ctx context.Context, owner string, tok *oauth2.Token) error {
	return s.Link(ctx, owner, "", tok)
}

// Link stores tok together with the GitHub login it belongs to.
func (s *FileStore) Link(ctx context.Context, owner, login string, tok *oauth2.Token) error {
	if tok == nil || tok.AccessToken == "" {
		return fmt.Errorf("token must not be empty")
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(record{Login: login, Token: *tok}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path(owner)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming token file: %w", err)
	}
	return nil
}

// Delete removes the owner's token. Deleting a missing token is not an error.
func (s *FileStore) Delete(ctx context.Context, owner string) error {
	err := os.Remove(s.path(owner))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token: %w", err)
	}
	return nil
}
