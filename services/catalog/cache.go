package catalog

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// responseCache is a file-backed JSON cache for catalog responses. Entries
// expire by file modification time. Built on afero so tests run against an
// in-memory filesystem.
type responseCache struct {
	fs  afero.Fs
	dir string
	ttl time.Duration
}

func newResponseCache(fs afero.Fs, dir string, ttlHours int) *responseCache {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &responseCache{fs: fs, dir: dir, ttl: time.Duration(ttlHours) * time.Hour}
}

// jitteredTTL staggers expiry deterministically per key (base TTL up to
// base + 6h) so a burst of entries written together does not churn together.
func (c *responseCache) jitteredTTL(key string) time.Duration {
	h := sha256.Sum256([]byte(key))
	n := binary.BigEndian.Uint64(h[:8])
	return c.ttl + time.Duration(n%uint64(6*time.Hour))
}

func (c *responseCache) get(key string, v any) (bool, error) {
	if key == "" {
		return false, errors.New("empty key")
	}
	path := filepath.Join(c.dir, key+".json")
	fi, err := c.fs.Stat(path)
	if err != nil {
		return false, nil
	}
	if time.Since(fi.ModTime()) > c.jitteredTTL(key) {
		_ = c.fs.Remove(path)
		return false, nil
	}
	f, err := c.fs.Open(path)
	if err != nil {
		return false, nil
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return false, nil
	}
	return true, nil
}

func (c *responseCache) set(key string, v any) error {
	if key == "" {
		return errors.New("empty key")
	}
	if err := c.fs.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(c.dir, key+".json")
	tmp := path + ".tmp"
	f, err := c.fs.Create(tmp)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		_ = c.fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = c.fs.Remove(tmp)
		return err
	}
	return c.fs.Rename(tmp, path)
}

// clear removes all cached entries.
func (c *responseCache) clear() error {
	entries, err := afero.ReadDir(c.fs, c.dir)
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		_ = c.fs.Remove(filepath.Join(c.dir, entry.Name()))
	}
	return nil
}

func cacheKey(parts ...string) string {
	h := sha1.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(h[:])
}
