package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/inklet/inklet/pkg/model"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.Compress {
		t.Error("Compress should default to true")
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("Backend = %q, want file", cfg.Store.Backend)
	}
	if cfg.detachPolicy() != model.DetachEndpoints {
		t.Error("detachPolicy() should default to DetachEndpoints")
	}
	if cfg.Server.Addr == "" {
		t.Error("Server.Addr should have a default")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
compress = false
detach_policy = "cascade"

[store]
backend = "redis"

[store.redis]
addr = "cache.internal:6379"
prefix = "diagrams:"

[server]
addr = ":9000"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Compress {
		t.Error("Compress should be false")
	}
	if cfg.detachPolicy() != model.CascadeConnectors {
		t.Error("detachPolicy() should be CascadeConnectors")
	}
	if cfg.Store.Backend != "redis" {
		t.Errorf("Backend = %q, want redis", cfg.Store.Backend)
	}
	if cfg.Store.Redis.Addr != "cache.internal:6379" {
		t.Errorf("Redis.Addr = %q", cfg.Store.Redis.Addr)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want :9000", cfg.Server.Addr)
	}
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `detach_policy = "cascade"`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if !cfg.Compress {
		t.Error("unset Compress should keep its default")
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("Backend = %q, want default file", cfg.Store.Backend)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", `comprss = true`},
		{"bad backend", "[store]\nbackend = \"cassandra\""},
		{"bad detach policy", `detach_policy = "explode"`},
		{"not toml", `{"compress": true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := LoadConfig(path); err == nil {
				t.Error("LoadConfig() should fail")
			}
		})
	}
}

func TestLoadConfigMissingExplicitPath(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("LoadConfig() with an explicit missing file should fail")
	}
}

func TestLoadConfigMissingDefaultPath(t *testing.T) {
	// Point the default location at an empty directory.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("Backend = %q, want default file", cfg.Store.Backend)
	}
}
