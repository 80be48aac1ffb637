// Package config loads the optional YAML sidecar file that sets a
// database file's autosync behavior: "<dbfile>.yaml" next to the database
// itself. Its cache_pages field is parsed but read by nothing.
//
// What: a handful of knobs (cache size in pages, autosync cron
// expression) that have sensible zero-value defaults — a database with
// no sidecar file behaves exactly as if every field were its default.
// How: gopkg.in/yaml.v3, the reference stack's own existing test-only
// dependency given a real load-bearing home here (see DESIGN.md).
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the sidecar's schema. Every field is optional.
type Config struct {
	// CachePages informs callers how many pages they may want resident at
	// once; the pager itself has a fixed TableMaxPages ceiling, evicts
	// nothing, and does not read this value.
	CachePages int `yaml:"cache_pages"`

	// Autosync, if non-empty, is a five-field cron expression on which
	// cmd/filedb schedules a Flush+Sync of the open database.
	Autosync string `yaml:"autosync"`
}

// Default returns the zero-tuning configuration.
func Default() Config { return Config{} }

// Load reads and parses the YAML sidecar at path. A missing file is not
// an error — it returns Default().
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SidecarPath returns the conventional sidecar path for a database file.
func SidecarPath(dbPath string) string { return dbPath + ".yaml" }
