// Package config loads CLI defaults from an optional YAML file, following
// the same search-path and override conventions the rest of this toolchain
// uses for its own configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config holds default values for flags the user didn't pass on the command
// line. cmd/tag applies CombineComments, Verbose and Debug, each only when
// its own flag was left unset. PictureType, Language and NoColor are loaded
// but not consulted by cmd/tag.
type Config struct {
	Defaults struct {
		CombineComments bool   `yaml:"combine_comments"`
		PictureType     string `yaml:"picture_type"`
		Language        string `yaml:"language"`
		Verbose         bool   `yaml:"verbose"`
		Debug           bool   `yaml:"debug"`
		NoColor         bool   `yaml:"no_color"`
	} `yaml:"defaults"`
}

// LoadConfig loads configuration from configPath. An empty configPath
// returns the default configuration without touching the filesystem.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{}
	cfg.Defaults.PictureType = "Cover (front)"
	cfg.Defaults.Language = "eng"

	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return cfg, nil
}

// LoadConfigOrDefault loads configFile, or the first config found via
// FindConfigFile when configFile is empty, falling back to defaults if
// loading fails for any reason. Callers should not have to handle a
// missing or malformed config file as fatal.
func LoadConfigOrDefault(configFile string) *Config {
	path := configFile
	if path == "" {
		path = FindConfigFile()
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		cfg, _ = LoadConfig("")
	}
	return cfg
}

// FindConfigFile looks for a configuration file in the current directory,
// then the platform's standard per-user config location.
func FindConfigFile() string {
	for _, name := range []string{"tag.yaml", "tag.yml", ".tag.yaml"} {
		if fileExists(name) {
			return name
		}
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			for _, name := range []string{"config.yaml", "config.yml"} {
				candidate := filepath.Join(appData, "audiotag", name)
				if fileExists(candidate) {
					return candidate
				}
			}
		}
		return ""
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	for _, name := range []string{"config.yaml", "config.yml"} {
		candidate := filepath.Join(xdgConfig, "audiotag", name)
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

func fileExists(name string) bool {
	info, err := os.Stat(name)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
