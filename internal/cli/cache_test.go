package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	svzerrors "github.com/matzehuels/svz/pkg/errors"
)

func TestCachePath(t *testing.T) {
	_, cacheDir := isolate(t)

	out, err := runCLI(t, "", "cache", "path")
	if err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	if got, want := strings.TrimSpace(out), filepath.Join(cacheDir, appName); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}
}

func TestCachePathFromConfig(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	custom := filepath.Join(dir, "custom-cache")
	cfg := writeSource(t, dir, "svz.toml", "[cache]\ndir = \""+filepath.ToSlash(custom)+"\"\n")

	out, err := runCLI(t, "", "--config", cfg, "cache", "path")
	if err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	if got := strings.TrimSpace(out); got != filepath.ToSlash(custom) {
		t.Errorf("cache path = %q, want %q", got, custom)
	}
}

func TestCacheClear(t *testing.T) {
	_, cacheDir := isolate(t)
	dir := filepath.Join(cacheDir, appName)

	if _, err := runCLI(t, listSrc, "graph"); err != nil {
		t.Fatalf("graph error: %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) == 0 {
		t.Fatal("expected cache entries after graph")
	}

	if _, err := runCLI(t, "", "cache", "clear"); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("cache dir should survive clear: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("cache clear left %d entries", len(entries))
	}

	// Clearing an empty cache is fine.
	if _, err := runCLI(t, "", "cache", "clear"); err != nil {
		t.Errorf("second cache clear error: %v", err)
	}
}

func TestCacheClearBackends(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	none := writeSource(t, dir, "none.toml", "[cache]\nbackend = \"none\"\n")
	redis := writeSource(t, dir, "redis.toml", "[cache]\nbackend = \"redis\"\nredis_url = \"redis://localhost:6379/0\"\n")

	if _, err := runCLI(t, "", "--config", none, "cache", "clear"); err != nil {
		t.Errorf("cache clear with backend none: %v", err)
	}
	if _, err := runCLI(t, "", "--config", redis, "cache", "clear"); !svzerrors.Is(err, svzerrors.ErrCodeUnsupported) {
		t.Errorf("cache clear with backend redis: error = %v, want UNSUPPORTED", err)
	}
}
