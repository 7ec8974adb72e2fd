package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in each search directory.
const FileName = "blockfall.yaml"

// SourceEmbedded is the Source reported when no file was found.
const SourceEmbedded = "embedded"

// Loaded is a configuration together with where it came from.
type Loaded struct {
	Config Config
	Source string
}

// Load loads blockfall configuration.
// Search order: customPath -> ~/.blockfall/configs/blockfall.yaml ->
// ./configs/blockfall.yaml -> embedded default.
// Keys missing from a file keep their default values. An explicit path
// must exist and hold valid rules; files found by search that fail to
// parse or validate are skipped.
func Load(customPath string) (Loaded, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Loaded{}, fmt.Errorf("config: read %s: %w", customPath, err)
		}
		cfg, err := parse(data)
		if err != nil {
			return Loaded{}, fmt.Errorf("config: parse %s: %w", customPath, err)
		}
		if err := cfg.Validate(); err != nil {
			return Loaded{}, err
		}
		return Loaded{Config: cfg, Source: customPath}, nil
	}

	candidates := []string{filepath.Join("configs", FileName)}
	if userCfgPath := userConfigPath(FileName); userCfgPath != "" {
		candidates = append([]string{userCfgPath}, candidates...)
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		cfg, err := parse(data)
		if err != nil || cfg.Validate() != nil {
			continue
		}
		return Loaded{Config: cfg, Source: path}, nil
	}

	// Use embedded default YAML
	cfg, err := parse(defaultYAML)
	if err != nil {
		return Loaded{Config: DefaultConfig(), Source: SourceEmbedded}, nil // Fallback to hardcoded if embed fails
	}
	return Loaded{Config: cfg, Source: SourceEmbedded}, nil
}

// parse decodes YAML over the defaults.
func parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".blockfall", "configs", filename)
}
