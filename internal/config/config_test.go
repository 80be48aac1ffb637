package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingSidecarReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("Load(missing) = %+v, want Default()", cfg)
	}
}

func TestLoadParsesSidecar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.yaml")
	body := "cache_pages: 64\nautosync: \"*/5 * * * *\"\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CachePages != 64 || cfg.Autosync != "*/5 * * * *" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestSidecarPath(t *testing.T) {
	if got := SidecarPath("/tmp/foo.db"); got != "/tmp/foo.db.yaml" {
		t.Fatalf("SidecarPath = %q", got)
	}
}
