package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"ghostscout/internal/lol"
	"ghostscout/internal/opgg"
)

// AppDirName is the per-user directory holding every local file
const AppDirName = "GhostScout"

// AppDir returns <user config dir>/GhostScout, falling back to the working
// directory when the platform has no config dir.
func AppDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = "."
	}
	return filepath.Join(configDir, AppDirName)
}

// DefaultCachePath is where the counter cache lives unless configured
func DefaultCachePath() string {
	return filepath.Join(AppDir(), "opgg_data.json")
}

// CacheFile persists the counter cache as a single JSON document
type CacheFile struct {
	Path string
}

// Load reads the cache. A missing file yields an empty cache and no error;
// a corrupt one yields an empty cache and an ErrMalformedInput error so the
// caller can report it and carry on.
func (f *CacheFile) Load() (*opgg.CounterCache, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return opgg.NewCounterCache(), nil
	}
	if err != nil {
		return opgg.NewCounterCache(), fmt.Errorf("failed to read counter cache: %w", err)
	}

	var cache opgg.CounterCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return opgg.NewCounterCache(), fmt.Errorf("%w: counter cache %s: %v", lol.ErrMalformedInput, f.Path, err)
	}
	if cache.Champions == nil {
		cache.Champions = make(map[string]string)
	}
	if cache.Counters == nil {
		cache.Counters = make(map[string][]opgg.CounterEntry)
	}
	return &cache, nil
}

// Save overwrites the cache file. The document is written to a temporary
// file first and renamed into place, so readers never see half a file.
func (f *CacheFile) Save(cache *opgg.CounterCache) error {
	data, err := json.Marshal(cache)
	if err != nil {
		return fmt.Errorf("failed to encode counter cache: %w", err)
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".opgg_data-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write counter cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write counter cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("failed to replace counter cache: %w", err)
	}
	return nil
}
