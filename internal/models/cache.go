package models

import (
	"fmt"
	"io/fs"
	"os"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is the number of decoded model files a Cache keeps.
const DefaultCacheSize = 256

// Cache keeps decoded model files of one directory. Entries are keyed by
// path, size and modification time, so an edited file is decoded again.
type Cache struct {
	dir    string
	models *lru.Cache
}

// NewCache returns a cache for the models of dir holding up to size files.
func NewCache(dir string, size int) (*Cache, error) {
	models, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("model cache: %w", err)
	}
	return &Cache{dir: dir, models: models}, nil
}

// ForView is ForView with decoded files reused until they change. Returned
// models are shared between callers and must not be modified.
func (c *Cache) ForView(view string) (Model, error) {
	if c.dir == "" {
		return Model{}, nil
	}
	file, err := Path(c.dir, view)
	if err != nil {
		return nil, err
	}
	if file == "" {
		return Model{}, nil
	}

	info, err := os.Stat(file)
	if err != nil {
		return nil, err
	}
	key := cacheKey(file, info)
	if val, ok := c.models.Get(key); ok {
		if m, ok := val.(Model); ok {
			return m, nil
		}
	}

	m, err := Load(file)
	if err != nil {
		return nil, err
	}
	c.models.Add(key, m)
	return m, nil
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	return c.models.Len()
}

// Purge drops every cached file.
func (c *Cache) Purge() {
	c.models.Purge()
}

func cacheKey(file string, info fs.FileInfo) string {
	return fmt.Sprintf("%s:%d:%d", file, info.Size(), info.ModTime().UnixNano())
}
