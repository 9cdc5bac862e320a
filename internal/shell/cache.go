package shell

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/GioMjds/commitly/internal/daykey"
)

const cacheFileName = ".prompt-cache"

// PromptCache holds cached prompt status data.
type PromptCache struct {
	Active         bool       `json:"active"`
	Closed         bool       `json:"closed"`
	Streak         int        `json:"streak"`
	Longest        int        `json:"longest"`
	Today          daykey.Key `json:"today"`
	StorageBackend string     `json:"storage_backend"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CachePath returns the full path to the prompt cache file.
func CachePath(dataDir string) string {
	return filepath.Join(dataDir, cacheFileName)
}

// ReadCache reads the prompt cache from disk. Returns nil if the cache
// does not exist or cannot be parsed.
func ReadCache(dataDir string) *PromptCache {
	data, err := os.ReadFile(CachePath(dataDir))
	if err != nil {
		return nil
	}
	var c PromptCache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil
	}
	return &c
}

// WriteCache writes the prompt cache to disk.
func WriteCache(dataDir string, c *PromptCache) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(CachePath(dataDir), data, 0600)
}

// IsFresh reports whether the cache can still be used. A cache written on
// a different day is always stale.
func (c *PromptCache) IsFresh(ttl time.Duration, today daykey.Key, now time.Time) bool {
	if c == nil {
		return false
	}
	if c.Today != today {
		return false
	}
	return now.Sub(c.UpdatedAt) <= ttl
}

// InvalidateCache removes the prompt cache file.
func InvalidateCache(dataDir string) error {
	path := CachePath(dataDir)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
