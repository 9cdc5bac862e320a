package markdown

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/GioMjds/commitly/internal/storage"
	"github.com/fsnotify/fsnotify"
)

const settingsExt = ".json"

var unsafePathChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// settingsStore keeps one file per (owner, key) under settings/<owner>/.
type settingsStore struct {
	store *Store
}

func (s *settingsStore) ownerDir(owner string) string {
	return filepath.Join(s.store.settingsDir, unsafePathChars.ReplaceAllString(owner, "_"))
}

func (s *settingsStore) path(owner, key string) string {
	return filepath.Join(s.ownerDir(owner), unsafePathChars.ReplaceAllString(key, "_")+settingsExt)
}

func (s *settingsStore) read(owner, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(owner, key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading setting %s: %v", storage.ErrStorage, key, err)
	}
	return data, nil
}

func (s *settingsStore) Get(ctx context.Context, owner, key string) ([]byte, error) {
	return s.read(owner, key)
}

func (s *settingsStore) Set(ctx context.Context, owner, key string, value []byte) error {
	unlock, err := s.store.lock()
	if err != nil {
		return err
	}
	defer unlock()
	return atomicWrite(s.path(owner, key), value)
}

func (s *settingsStore) CompareAndSwap(ctx context.Context, owner, key string, prev, next []byte) error {
	unlock, err := s.store.lock()
	if err != nil {
		return err
	}
	defer unlock()

	current, err := s.read(owner, key)
	if err != nil {
		return err
	}
	if (prev == nil) != (current == nil) || !bytes.Equal(prev, current) {
		return fmt.Errorf("%w: setting %s changed", storage.ErrConflict, key)
	}
	return atomicWrite(s.path(owner, key), next)
}

// Subscribe watches the owner's settings directory and emits the key of
// every settings file that is written or replaced.
func (s *settingsStore) Subscribe(ctx context.Context, owner string) (<-chan string, error) {
	dir := s.ownerDir(owner)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating settings directory: %v", storage.ErrStorage, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: creating watcher: %v", storage.ErrStorage, err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("%w: watching %s: %v", storage.ErrStorage, dir, err)
	}

	out := make(chan string, 8)
	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
					continue
				}
				name := filepath.Base(ev.Name)
				if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, settingsExt) {
					continue
				}
				select {
				case out <- strings.TrimSuffix(name, settingsExt):
				case <-ctx.Done():
					return
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return out, nil
}
