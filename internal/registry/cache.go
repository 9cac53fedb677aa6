package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var (
	// ErrCacheMiss means the cache file does not exist at the configured path.
	ErrCacheMiss = errors.New("registry cache: not found")
	// ErrMissingPath means no cache path was configured at all.
	ErrMissingPath = errors.New("registry cache: no path configured")
)

// Cache persists the routing-key -> type-identifier table as a JSON object
// literal, so the file stays human-auditable and re-loadable without a
// schema.
type Cache struct {
	path string
}

func NewCache(path string) *Cache {
	return &Cache{path: path}
}

func (c *Cache) Path() string { return c.path }

func (c *Cache) Load() (map[string]string, error) {
	if c.path == "" {
		return nil, ErrMissingPath
	}

	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read registry cache: %w", err)
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode registry cache %s: %w", c.path, err)
	}

	return m, nil
}

// Save overwrites the cache file in full. The table is written to a
// temporary file first and renamed into place, so a concurrent reader
// never observes a partial write.
func (c *Cache) Save(m map[string]string) error {
	if c.path == "" {
		return ErrMissingPath
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry cache: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".events-*.json")
	if err != nil {
		return fmt.Errorf("create registry cache: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write registry cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close registry cache: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace registry cache: %w", err)
	}

	return nil
}
