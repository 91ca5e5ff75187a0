package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds all CLI configuration options.
type Config struct {
	Profile       string `koanf:"profile"`
	Output        string `koanf:"output"`
	Verbose       bool   `koanf:"verbose"`
	HistoryPath   string `koanf:"history_path"`
	Port          int    `koanf:"port"`
	SessionSecret string `koanf:"session_secret"`
	Workers       int    `koanf:"workers"`
}

// Default configuration values.
const (
	DefaultProfile     = "default"
	DefaultOutput      = "auto" // Auto-detect: TTY=table, non-TTY=text
	DefaultHistoryFile = ".sqlbridge/history.db"
	DefaultPort        = 8080
)

var configFileUsed string

// findConfigFile finds the config file to use.
// Priority: explicit path > sqlbridge.yaml > sqlbridge.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"sqlbridge.yaml", "sqlbridge.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, ".sqlbridge", "sqlbridge.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"profile":      DefaultProfile,
		"output":       DefaultOutput,
		"verbose":      false,
		"history_path": DefaultHistoryFile,
		"port":         DefaultPort,
		"workers":      0,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (SQLBRIDGE_ prefix)
	// Transform: SQLBRIDGE_HISTORY_PATH -> history_path
	if err := k.Load(env.Provider("SQLBRIDGE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "SQLBRIDGE_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			// Transform kebab-case to snake_case for config keys
			key := strings.ReplaceAll(f.Name, "-", "_")

			// The CLI uses --history for brevity, but the config struct
			// uses history_path for clarity.
			if key == "history" {
				return "history_path", posflag.FlagVal(flags, f)
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}
