package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvRootDir  = "PIXMASTER_ROOT"
	EnvToolsDir = "PIXMASTER_TOOLS"
	EnvMode     = "PIXMASTER_MODE"
)

// fileConfig is the YAML shape of a config file. Pointer fields distinguish
// "absent" from the zero value so only keys present in the file override.
type fileConfig struct {
	RootDir         *string  `yaml:"root_dir"`
	ToolsDir        *string  `yaml:"tools_dir"`
	Mode            *string  `yaml:"mode"`
	WebP            *bool    `yaml:"webp"`
	ToolTimeout     *string  `yaml:"tool_timeout"`
	Workers         *int     `yaml:"workers"`
	MaxProcesses    *int     `yaml:"max_processes"`
	VisualTolerance *float64 `yaml:"visual_tolerance"`
	LogFile         *string  `yaml:"log_file"`
	Color           *string  `yaml:"color"`
}

// LoadFile reads a YAML config file and overlays the keys it sets onto cfg.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if err := fc.apply(cfg); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}
	return nil
}

func (fc *fileConfig) apply(cfg *Config) error {
	if fc.RootDir != nil {
		cfg.RootDir = NormalizeDirArg(*fc.RootDir)
	}
	if fc.ToolsDir != nil {
		cfg.ToolsDir = NormalizeDirArg(*fc.ToolsDir)
	}
	if fc.Mode != nil {
		m, err := ParseConversionMode(*fc.Mode)
		if err != nil {
			return err
		}
		cfg.Mode = m
	}
	if fc.WebP != nil {
		cfg.WebP = *fc.WebP
	}
	if fc.ToolTimeout != nil {
		d, err := time.ParseDuration(strings.TrimSpace(*fc.ToolTimeout))
		if err != nil {
			return fmt.Errorf("tool_timeout: %w", err)
		}
		cfg.ToolTimeout = d
	}
	if fc.Workers != nil {
		cfg.Workers = *fc.Workers
	}
	if fc.MaxProcesses != nil {
		cfg.MaxProcesses = *fc.MaxProcesses
	}
	if fc.VisualTolerance != nil {
		cfg.VisualTolerance = *fc.VisualTolerance
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
	}
	if fc.Color != nil {
		if err := NewColorValue(&cfg.ColorMode).Set(*fc.Color); err != nil {
			return err
		}
	}
	return nil
}

// ApplyEnv overlays PIXMASTER_* environment variables onto cfg. Unset or
// empty variables leave cfg untouched.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvRootDir); v != "" {
		cfg.RootDir = NormalizeDirArg(v)
	}
	if v := os.Getenv(EnvToolsDir); v != "" {
		cfg.ToolsDir = NormalizeDirArg(v)
	}
	if v := os.Getenv(EnvMode); v != "" {
		m, err := ParseConversionMode(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMode, err)
		}
		cfg.Mode = m
	}
	return nil
}
