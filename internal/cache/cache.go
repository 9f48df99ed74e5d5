// Package cache keeps remote schemas on disk between runs.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	metaFile   = ".cfgcheck-cache-meta"
	schemasDir = "schemas"
)

// meta records where a cache entry came from.
type meta struct {
	URL string `yaml:"url"`
	Ref string `yaml:"ref"`
}

// Cache manages locally cached schema files.
type Cache struct {
	baseDir string
	logger  *slog.Logger
}

// New creates a Cache rooted at baseDir, typically DefaultDir().
func New(baseDir string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}

	return &Cache{
		baseDir: baseDir,
		logger:  logger,
	}
}

// DefaultDir returns the default cache directory, respecting XDG_CACHE_HOME.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "cfgcheck")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cache", "cfgcheck")
	}

	return filepath.Join(home, ".cache", "cfgcheck")
}

// SchemasDir is the directory holding every cached schema entry.
func (c *Cache) SchemasDir() string {
	return filepath.Join(c.baseDir, schemasDir)
}

// GetOrFetch returns the path of the cached file for url at ref. When the
// entry is missing or was fetched for a different ref, fetchFn is called
// with the destination file path to populate it.
func (c *Cache) GetOrFetch(url, ref, fileName string, fetchFn func(dest string) error) (string, error) {
	dir := c.entryDir(url)
	metaPath := filepath.Join(dir, metaFile)
	dest := filepath.Join(dir, fileName)

	if m, err := readMeta(metaPath); err == nil {
		if m.Ref == ref && fileExists(dest) {
			c.logger.Debug("cache hit", "url", url, "ref", ref)

			return dest, nil
		}

		c.logger.Debug("cache stale", "url", url, "cached_ref", m.Ref, "requested_ref", ref)
	}

	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("removing stale cache %s: %w", dir, err)
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating cache directory %s: %w", dir, err)
	}

	c.logger.Debug("fetching schema", "url", url, "ref", ref, "dest", dest)

	if err := fetchFn(dest); err != nil {
		if removeErr := os.RemoveAll(dir); removeErr != nil {
			c.logger.Warn("failed to clean up cache on fetch failure", "err", removeErr)
		}

		return "", fmt.Errorf("fetching schema %s: %w", url, err)
	}

	if err := writeMeta(metaPath, &meta{URL: url, Ref: ref}); err != nil {
		return "", fmt.Errorf("writing cache metadata: %w", err)
	}

	return dest, nil
}

// Invalidate removes the cached entry for url.
func (c *Cache) Invalidate(url string) error {
	dir := c.entryDir(url)

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("invalidating cache for %s: %w", url, err)
	}

	c.logger.Debug("cache invalidated", "url", url)

	return nil
}

func (c *Cache) entryDir(url string) string {
	hash := sha256.Sum256([]byte(url))

	return filepath.Join(c.SchemasDir(), hex.EncodeToString(hash[:8]))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}

func readMeta(path string) (*meta, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var m meta
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	return &m, nil
}

func writeMeta(path string, m *meta) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
