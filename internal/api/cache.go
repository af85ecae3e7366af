package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// cacheLockTimeout bounds how long a request waits for the cache lock.
// On timeout the cache is skipped rather than blocking the request.
const cacheLockTimeout = 100 * time.Millisecond

// Cache is a conditional-request cache. GET responses are stored with
// their ETag; a later request sends If-None-Match and a 304 is served
// from the stored body. Entries live one file per key under dir, guarded
// by a cross-process file lock.
type Cache struct {
	dir string
}

// NewCache creates a cache rooted at dir. An empty dir disables caching.
func NewCache(dir string) *Cache {
	if dir == "" {
		return &Cache{}
	}
	return &Cache{dir: filepath.Join(dir, "http")}
}

type cacheEntry struct {
	ETag     string          `json:"etag"`
	StoredAt time.Time       `json:"stored_at"`
	Body     json.RawMessage `json:"body"`
}

// Key derives a cache key from the request URL and token. Including the
// token keeps responses from leaking across logins.
func (c *Cache) Key(url, token string) string {
	sum := sha256.Sum256([]byte(url + "\x00" + token))
	return hex.EncodeToString(sum[:16])
}

// GetETag returns the stored ETag for a key, or "".
func (c *Cache) GetETag(key string) string {
	entry := c.read(key)
	if entry == nil {
		return ""
	}
	return entry.ETag
}

// GetBody returns the stored body for a key, or nil.
func (c *Cache) GetBody(key string) []byte {
	entry := c.read(key)
	if entry == nil {
		return nil
	}
	return entry.Body
}

// Set stores a response body and its ETag. Best effort: failures are
// swallowed so a broken cache never fails a request.
func (c *Cache) Set(key string, body []byte, etag string) error {
	if c.dir == "" {
		return nil
	}

	lock := c.acquireLock()
	defer releaseLock(lock)

	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return err
	}

	data, err := json.Marshal(cacheEntry{
		ETag:     etag,
		StoredAt: time.Now(),
		Body:     json.RawMessage(body),
	})
	if err != nil {
		return err
	}

	// Atomic write via unique temp name so fail-open writers cannot
	// clobber each other mid-write.
	path := c.path(key)
	tmp := fmt.Sprintf("%s.%d.tmp", path, os.Getpid())
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Clear removes all cached entries.
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	lock := c.acquireLock()
	defer releaseLock(lock)

	err := os.RemoveAll(c.dir)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (c *Cache) read(key string) *cacheEntry {
	if c.dir == "" {
		return nil
	}

	lock := c.acquireLock()
	defer releaseLock(lock)

	data, err := os.ReadFile(c.path(key)) //nolint:gosec // G304: Key is a hex digest
	if err != nil {
		return nil
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Corrupted entry, treat as a miss.
		return nil
	}
	return &entry
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// acquireLock obtains the cross-process cache lock. Fail-open: returns
// nil on timeout so a stuck lock holder cannot hang requests. The cache
// tolerates the resulting races since entries are written atomically.
func (c *Cache) acquireLock() *flock.Flock {
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return nil
	}

	fl := flock.New(filepath.Join(c.dir, ".lock"))

	ctx, cancel := context.WithTimeout(context.Background(), cacheLockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil || !locked {
		return nil
	}
	return fl
}

func releaseLock(fl *flock.Flock) {
	if fl != nil {
		_ = fl.Unlock()
	}
}
