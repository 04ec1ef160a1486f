// Package cache keeps encoded section segments between runs, keyed by a
// hash of everything that affects their pixels.
package cache

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"
)

// Cache is a directory of segment files named by key.
type Cache struct {
	Dir string
}

// New creates the cache directory if needed.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{Dir: dir}, nil
}

// Key hashes the given parts. Each part is length-prefixed so that
// ("ab", "c") and ("a", "bc") differ.
func Key(parts ...[]byte) string {
	h, _ := blake2b.New256(nil)
	var n [8]byte
	for _, p := range parts {
		l := uint64(len(p))
		for i := range n {
			n[i] = byte(l >> (8 * i))
		}
		h.Write(n[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Path is where the segment for key lives.
func (c *Cache) Path(key string) string {
	return filepath.Join(c.Dir, key+".mp4")
}

// Lookup reports the cached segment for key, if any.
func (c *Cache) Lookup(key string) (string, bool) {
	p := c.Path(key)
	fi, err := os.Stat(p)
	if err != nil || fi.Size() == 0 {
		return "", false
	}
	return p, true
}

// Store copies a finished segment into the cache. The copy is renamed into
// place so readers never see a partial file.
func (c *Cache) Store(key, segment string) (string, error) {
	src, err := os.Open(segment)
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(c.Dir, key+"-*.part")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("copy segment: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	dst := c.Path(key)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return dst, nil
}

// Clear removes every cached segment.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.Dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
