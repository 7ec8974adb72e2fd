package config

import (
	_ "embed"

	"github.com/vovakirdan/blockfall/internal/tetris"
)

//go:embed defaults/blockfall.yaml
var defaultYAML []byte

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return FromRules(tetris.DefaultRules())
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
