package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(custom, appName); dir != want {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, want)
	}
}

func TestResolveCacheDirFromConfig(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	c.Config.Cache.Dir = "/srv/layoutview-cache"

	dir, err := c.resolveCacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/srv/layoutview-cache" {
		t.Errorf("resolveCacheDir() = %q, want the configured dir", dir)
	}
}

func TestConfigPath(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		xdg       string
		wantSuffix string
	}{
		{"explicit", "/etc/layoutview.toml", "", "/etc/layoutview.toml"},
		{"xdg", "", "/xdg", filepath.Join("/xdg", appName, "config.toml")},
		{"home", "", "", filepath.Join(".config", appName, "config.toml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(configEnv, tt.env)
			t.Setenv("XDG_CONFIG_HOME", tt.xdg)

			got, err := configPath()
			if err != nil {
				t.Fatal(err)
			}
			if !filepath.IsAbs(got) || !strings.HasSuffix(got, tt.wantSuffix) {
				t.Errorf("configPath() = %q, want suffix %q", got, tt.wantSuffix)
			}
		})
	}
}
