package dataset

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-report/internal/model"
)

// LoaderFunc turns a source path into a Dataset.
type LoaderFunc func(path string) (*model.Dataset, error)

// Cache memoizes loaded datasets per source path. An entry is reused until
// the file's modification time or size changes, or until it is invalidated.
type Cache struct {
	mu      sync.Mutex
	load    LoaderFunc
	entries map[string]cacheEntry
	log     zerolog.Logger
}

type cacheEntry struct {
	ds      *model.Dataset
	modTime time.Time
	size    int64
}

func (e cacheEntry) fresh(info os.FileInfo) bool {
	return e.modTime.Equal(info.ModTime()) && e.size == info.Size()
}

// NewCache creates a Cache that loads through load.
func NewCache(load LoaderFunc, log zerolog.Logger) *Cache {
	return &Cache{
		load:    load,
		entries: make(map[string]cacheEntry),
		log:     log.With().Str("component", "dataset_cache").Logger(),
	}
}

// NewFileCache creates a Cache backed by Load with the given options.
func NewFileCache(opts LoadOptions, log zerolog.Logger) *Cache {
	return NewCache(func(path string) (*model.Dataset, error) {
		return Load(path, opts)
	}, log)
}

// Get returns the dataset for path, loading it on first use or when the
// file changed on disk. Failed loads are not cached.
func (c *Cache) Get(path string) (*model.Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &DataLoadError{Source: path, Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[path]; ok && e.fresh(info) {
		return e.ds, nil
	}

	start := time.Now()
	ds, err := c.load(path)
	if err != nil {
		c.log.Error().Err(err).Str("source", path).Msg("Dataset load failed")
		return nil, err
	}

	c.entries[path] = cacheEntry{ds: ds, modTime: info.ModTime(), size: info.Size()}
	c.log.Info().
		Str("source", path).
		Str("version", ds.Version).
		Int("records", len(ds.Records)).
		Int("dropped", ds.Dropped).
		Dur("took", time.Since(start)).
		Msg("Dataset loaded")

	return ds, nil
}

// Invalidate drops the memoized dataset for path so the next Get reloads it.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}
