package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultSpoolDir     = "spool"
	DefaultJSONDir      = "spool/json"
	DefaultMaxChatBytes = 600

	// DefaultMTU is the fragment size fragwrite uses when neither its config
	// nor -mtu sets one.
	DefaultMTU = 140
)

// Config is shared by the succinct tools.
type Config struct {
	SpoolDir     string `toml:"spool_dir"`
	JSONDir      string `toml:"json_dir"`
	ArchivePath  string `toml:"archive_path"`
	MetricsFile  string `toml:"metrics_file"`
	MaxChatBytes int    `toml:"max_chat_bytes"`
}

func DefaultConfig() Config {
	return Config{
		SpoolDir:     DefaultSpoolDir,
		JSONDir:      DefaultJSONDir,
		MaxChatBytes: DefaultMaxChatBytes,
	}
}

// LoadConfig reads path and fills unset fields with defaults. A missing file
// yields the defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if strings.TrimSpace(path) != "" {
		if _, err := os.Stat(path); err == nil {
			if err := loadToml(path, &cfg); err != nil {
				return Config{}, err
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
		}
	}
	applyDefaults(&cfg)
	if err := ValidateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.SpoolDir == "" {
		cfg.SpoolDir = def.SpoolDir
	}
	if cfg.JSONDir == "" {
		cfg.JSONDir = def.JSONDir
	}
	if cfg.MaxChatBytes == 0 {
		cfg.MaxChatBytes = def.MaxChatBytes
	}
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.SpoolDir) == "" {
		return fmt.Errorf("config missing spool_dir")
	}
	if strings.TrimSpace(cfg.JSONDir) == "" {
		return fmt.Errorf("config missing json_dir")
	}
	if cfg.MaxChatBytes <= 0 {
		return fmt.Errorf("max_chat_bytes must be positive")
	}
	return nil
}
