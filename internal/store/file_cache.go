package store

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/consatan/weibo-image-uploader/internal/domain"
)

// Cache keys are hex hashes plus an optional suffix; anything else is
// rejected before it can become a file name.
var fileKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// FileCache stores one blob per key as a file under dir.
type FileCache struct {
	dir string
	mu  sync.Mutex
}

// NewFileCache returns a FileCache rooted at dir, creating it if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

func (c *FileCache) path(key string) (string, error) {
	if !fileKeyPattern.MatchString(key) {
		return "", domain.NewError(domain.CodeInvalidInput, "invalid cache key: "+key)
	}
	return filepath.Join(c.dir, key+".cache"), nil
}

func (c *FileCache) Has(ctx context.Context, key string) (bool, error) {
	p, err := c.path(key)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err = os.Stat(p)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	p, err := c.path(key)
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := readFile(p)
	if err != nil {
		return nil, false, err
	}
	if b == nil {
		return nil, false, nil
	}
	return b, true, nil
}

func (c *FileCache) Set(ctx context.Context, key string, blob []byte) error {
	p, err := c.path(key)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return writeFile(p, blob, 0o600)
}

func (c *FileCache) Delete(ctx context.Context, key string) error {
	p, err := c.path(key)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Compile-time assertion that FileCache implements domain.CacheStore.
var _ domain.CacheStore = (*FileCache)(nil)
