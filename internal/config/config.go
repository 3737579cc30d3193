package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	AppDirName            = "tasklist"
	ConfigPathEnv         = "TASKLIST_CONFIG"

	BackendMemory = "memory"
	BackendSQLite = "sqlite"

	FilterAll     = "all"
	FilterPending = "pending"
	FilterDone    = "done"
)

type Keymap struct {
	Quit     string `toml:"quit"`
	Add      string `toml:"add"`
	Up       string `toml:"up"`
	Down     string `toml:"down"`
	Toggle   string `toml:"toggle"`
	Delete   string `toml:"delete"`
	Detail   string `toml:"detail"`
	Confirm  string `toml:"confirm"`
	Cancel   string `toml:"cancel"`
	Edit     string `toml:"edit"`
	Filter   string `toml:"filter"`
	Yank     string `toml:"yank"`
	ClearDue string `toml:"clear_due"`
}

type Log struct {
	Path  string `toml:"path"`
	Level string `toml:"level"`
}

type Config struct {
	Backend       string `toml:"backend"`
	DefaultFilter string `toml:"default_filter"`
	Log           Log    `toml:"log"`
	Keys          Keymap `toml:"keys"`
}

// ResolveConfigPath prefers $TASKLIST_CONFIG, then the user config dir.
func ResolveConfigPath() string {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, AppDirName, DefaultConfigFileName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendMemory
	}
	if cfg.DefaultFilter == "" {
		cfg.DefaultFilter = FilterAll
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendMemory, BackendSQLite)
	}
	switch c.DefaultFilter {
	case FilterAll, FilterPending, FilterDone:
	default:
		return fmt.Errorf("unknown default_filter %q", c.DefaultFilter)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func Default() Config {
	return Config{
		Backend:       BackendMemory,
		DefaultFilter: FilterAll,
		Log: Log{
			Level: "info",
		},
		Keys: Keymap{
			Quit:     "q",
			Add:      "a",
			Up:       "k",
			Down:     "j",
			Toggle:   " ",
			Delete:   "d",
			Detail:   "enter",
			Confirm:  "enter",
			Cancel:   "esc",
			Edit:     "e",
			Filter:   "f",
			Yank:     "y",
			ClearDue: "ctrl+r",
		},
	}
}
