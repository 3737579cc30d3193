package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadOrCreate_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate() err = %v, want nil", err)
	}
	if cfg != Default() {
		t.Fatalf("LoadOrCreate() = %+v, want defaults", cfg)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), "backend") {
		t.Fatalf("written config = %q, want backend key", data)
	}

	again, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate() second run err = %v", err)
	}
	if again != cfg {
		t.Fatalf("reloaded config = %+v, want %+v", again, cfg)
	}
}

func TestLoadOrCreate_OverridesKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
backend = "sqlite"
default_filter = "pending"

[log]
path = "/tmp/tasklist.log"
level = "debug"

[keys]
add = "n"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate() err = %v", err)
	}
	if cfg.Backend != BackendSQLite || cfg.DefaultFilter != FilterPending {
		t.Fatalf("LoadOrCreate() = %+v, want sqlite/pending", cfg)
	}
	if cfg.Log.Path != "/tmp/tasklist.log" || cfg.Log.Level != "debug" {
		t.Fatalf("Log = %+v", cfg.Log)
	}
	if cfg.Keys.Add != "n" {
		t.Fatalf("Keys.Add = %q, want %q", cfg.Keys.Add, "n")
	}
	if cfg.Keys.Quit != "q" || cfg.Keys.ClearDue != "ctrl+r" {
		t.Fatalf("unset keys lost defaults: %+v", cfg.Keys)
	}
}

func TestLoadOrCreate_EmptyValuesFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("backend = \"\"\ndefault_filter = \"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate() err = %v", err)
	}
	if cfg.Backend != BackendMemory || cfg.DefaultFilter != FilterAll {
		t.Fatalf("LoadOrCreate() = %+v, want memory/all", cfg)
	}
}

func TestLoadOrCreate_RejectsUnknownValues(t *testing.T) {
	tests := map[string]string{
		"backend": `backend = "postgres"`,
		"filter":  `default_filter = "overdue"`,
		"level":   "[log]\nlevel = \"loud\"",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadOrCreate(path); err == nil {
				t.Fatal("LoadOrCreate() err = nil, want non-nil")
			}
		})
	}
}

func TestLoadOrCreate_MalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("backend = "), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadOrCreate(path)
	if err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("LoadOrCreate() err = %v, want parse error", err)
	}
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv(ConfigPathEnv, "/custom/tasklist.toml")
	if got := ResolveConfigPath(); got != "/custom/tasklist.toml" {
		t.Fatalf("ResolveConfigPath() = %q, want env override", got)
	}

	t.Setenv(ConfigPathEnv, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	got := ResolveConfigPath()
	if filepath.Base(got) != DefaultConfigFileName || filepath.Base(filepath.Dir(got)) != AppDirName {
		t.Fatalf("ResolveConfigPath() = %q, want .../%s/%s", got, AppDirName, DefaultConfigFileName)
	}
}
