// Package config assembles runtime settings from defaults, an optional TOML
// file and DAYPLANNER_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/alexanderramin/dayplanner/internal/llm"
)

// Storage backends.
const (
	StoreSQLite = "sqlite"
	StoreGorm   = "gorm"
	StoreMemory = "memory"
)

const (
	DefaultLogLevel     = "warn"
	DefaultLogFormat    = "text"
	DefaultSyncInterval = time.Minute
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the merged runtime configuration.
type Config struct {
	DBPath string `toml:"db_path"`
	Store  string `toml:"store"`
	// Strict makes corrupt stored values an error instead of a default.
	Strict bool `toml:"strict"`

	Log      LogConfig      `toml:"log"`
	Telegram TelegramConfig `toml:"telegram"`
	Reminder ReminderConfig `toml:"reminder"`
	AI       AIConfig       `toml:"ai"`

	// LLM is derived from AI and the DAYPLANNER_LLM_* variables.
	LLM llm.LLMConfig `toml:"-"`
	// Source is the config file that was read, if any.
	Source string `toml:"-"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type TelegramConfig struct {
	Token  string `toml:"token"`
	ChatID int64  `toml:"chat_id"`
}

// Enabled reports whether both a token and a chat are configured.
func (t TelegramConfig) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

type ReminderConfig struct {
	// SyncSeconds is how often `remind run` re-reads stored settings.
	SyncSeconds int `toml:"sync_seconds"`
}

func (r ReminderConfig) SyncInterval() time.Duration {
	if r.SyncSeconds <= 0 {
		return DefaultSyncInterval
	}
	return time.Duration(r.SyncSeconds) * time.Second
}

// AIConfig is the file form of the LLM settings.
type AIConfig struct {
	Enabled    bool   `toml:"enabled"`
	Provider   string `toml:"provider"`
	Endpoint   string `toml:"endpoint"`
	Model      string `toml:"model"`
	APIKey     string `toml:"api_key"`
	TimeoutMs  int    `toml:"timeout_ms"`
	MaxRetries int    `toml:"max_retries"`
	LogCalls   bool   `toml:"log_calls"`
}

// DefaultConfig returns the configuration used when nothing is set.
// home is used to place the database; an empty home puts it in the
// working directory.
func DefaultConfig(home string) Config {
	return Config{
		DBPath: filepath.Join(home, ".dayplanner", "dayplanner.db"),
		Store:  StoreSQLite,
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		LLM: llm.DefaultConfig(),
	}
}

// Load merges defaults, the config file and the environment. The file is
// DAYPLANNER_CONFIG when set, else ~/.dayplanner/config.toml if it exists.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("finding home directory: %w", err)
	}
	cfg := DefaultConfig(home)

	path, explicit := os.LookupEnv("DAYPLANNER_CONFIG")
	if !explicit {
		path = filepath.Join(home, ".dayplanner", "config.toml")
	}
	if path != "" {
		if err := loadFile(&cfg, path, explicit); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.LLM = llm.ApplyEnv(cfg.LLM)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile merges a single TOML file over DefaultConfig without consulting
// the environment.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig("")
	if err := loadFile(&cfg, path, true); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadFile decodes path over cfg. A missing file is only an error when
// the path was asked for explicitly.
func loadFile(cfg *Config, path string, required bool) error {
	path = expandPath(path)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("loading config file %s: %w", path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("loading config file %s: %w: %w", path, ErrInvalidConfig, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("loading config file %s: %w: unknown keys %s", path, ErrInvalidConfig, strings.Join(keys, ", "))
	}
	cfg.Source = path
	cfg.DBPath = expandPath(cfg.DBPath)
	return applyAI(cfg, md)
}

// applyAI copies the [ai] table onto the LLM config, keeping defaults for
// keys the file leaves out.
func applyAI(cfg *Config, md toml.MetaData) error {
	if cfg.AI.Provider != "" {
		p, ok := llm.ParseProvider(cfg.AI.Provider)
		if !ok {
			return fmt.Errorf("%w: unknown ai provider %q (want ollama or gemini)", ErrInvalidConfig, cfg.AI.Provider)
		}
		cfg.LLM = cfg.LLM.WithProvider(p)
	}
	if md.IsDefined("ai", "enabled") {
		cfg.LLM.Enabled = cfg.AI.Enabled
	}
	if md.IsDefined("ai", "log_calls") {
		cfg.LLM.LogCalls = cfg.AI.LogCalls
	}
	if cfg.AI.Endpoint != "" {
		cfg.LLM.Endpoint = cfg.AI.Endpoint
	}
	if cfg.AI.Model != "" {
		cfg.LLM.Model = cfg.AI.Model
	}
	if cfg.AI.APIKey != "" {
		cfg.LLM.APIKey = cfg.AI.APIKey
	}
	if cfg.AI.TimeoutMs > 0 {
		cfg.LLM.TimeoutMs = cfg.AI.TimeoutMs
	}
	if md.IsDefined("ai", "max_retries") && cfg.AI.MaxRetries >= 0 {
		cfg.LLM.MaxRetries = cfg.AI.MaxRetries
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DAYPLANNER_DB"); v != "" {
		cfg.DBPath = expandPath(v)
	}
	if v := os.Getenv("DAYPLANNER_STORE"); v != "" {
		cfg.Store = strings.ToLower(v)
	}
	if v := os.Getenv("DAYPLANNER_STRICT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: DAYPLANNER_STRICT=%q", ErrInvalidConfig, v)
		}
		cfg.Strict = b
	}
	if v := os.Getenv("DAYPLANNER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("DAYPLANNER_LOG_FORMAT"); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv("DAYPLANNER_TELEGRAM_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("DAYPLANNER_TELEGRAM_CHAT"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: DAYPLANNER_TELEGRAM_CHAT=%q", ErrInvalidConfig, v)
		}
		cfg.Telegram.ChatID = id
	}
	return nil
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreGorm, StoreMemory:
	default:
		return fmt.Errorf("%w: unknown store %q (want sqlite, gorm or memory)", ErrInvalidConfig, c.Store)
	}
	if c.Store != StoreMemory && c.DBPath == "" {
		return fmt.Errorf("%w: db_path is required for the %s store", ErrInvalidConfig, c.Store)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
