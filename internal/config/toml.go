// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game  GameConfig  `toml:"game"`
	Race  RaceConfig  `toml:"race"`
	Sound SoundConfig `toml:"sound"`
}

// GameConfig maps solo-game settings.
type GameConfig struct {
	Time      *int    `toml:"time"`
	Tier      *string `toml:"tier"`
	WordsFile *string `toml:"words-file"`
}

// RaceConfig maps multiplayer settings.
type RaceConfig struct {
	Server      *string `toml:"server"`
	DisplayName *string `toml:"display-name"`
}

// SoundConfig maps audio settings.
type SoundConfig struct {
	Mute     *bool   `toml:"mute"`
	KeySound *string `toml:"key-sound"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
