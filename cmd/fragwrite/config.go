package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/succinct/internal/config"
)

type fileConfig struct {
	Dir         string `toml:"dir"`
	Team        string `toml:"team"`
	MTU         int    `toml:"mtu"`
	Start       int64  `toml:"start"`
	MetricsFile string `toml:"metrics_file"`
}

type writerConfig struct {
	Dir         string
	Team        string
	MTU         int
	Start       uint32
	MetricsFile string
}

func defaultWriterConfig() writerConfig {
	return writerConfig{
		Dir: ".",
		MTU: config.DefaultMTU,
	}
}

func loadWriterConfig(path string) (writerConfig, error) {
	cfg := defaultWriterConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return writerConfig{}, fmt.Errorf("load fragwrite config: %w", err)
	}

	if meta.IsDefined("dir") {
		if dir := strings.TrimSpace(raw.Dir); dir != "" {
			cfg.Dir = dir
		}
	}

	if meta.IsDefined("team") {
		cfg.Team = strings.TrimSpace(raw.Team)
	}

	if meta.IsDefined("mtu") {
		cfg.MTU = raw.MTU
	}

	if meta.IsDefined("start") {
		if raw.Start < 0 || raw.Start > math.MaxUint32 {
			return writerConfig{}, fmt.Errorf("start %d out of range", raw.Start)
		}
		cfg.Start = uint32(raw.Start)
	}

	if meta.IsDefined("metrics_file") {
		cfg.MetricsFile = strings.TrimSpace(raw.MetricsFile)
	}

	return cfg, nil
}
