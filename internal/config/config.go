// Package config handles configuration loading, validation, and persistence
// for kurve.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	DefaultConfigDir  = "config"
	DefaultConfigFile = "config.json"

	// DefaultPort is where a host listens for the joining peer.
	DefaultPort = 8000

	DefaultSpectatePort = 7473
	DefaultTickMS       = 75
)

// Config is the root configuration structure for kurve.
type Config struct {
	mu   sync.RWMutex
	path string

	Player   PlayerConfig   `json:"player"`
	Net      NetConfig      `json:"net"`
	Game     GameConfig     `json:"game"`
	Spectate SpectateConfig `json:"spectate"`
	History  HistoryConfig  `json:"history"`
	Logging  LoggingConfig  `json:"logging"`
}

// PlayerConfig identifies the local player. Controls picks the key binding
// used in networked matches, "wasd" or "arrows".
type PlayerConfig struct {
	Name     string `json:"name"`
	Controls string `json:"controls"`
}

// NetConfig holds networked play settings.
type NetConfig struct {
	Port           int `json:"port"`
	DialTimeoutSec int `json:"dial_timeout_sec"`
}

// GameConfig holds board and pacing settings. The board is clamped to the
// terminal size at startup; MaxWidth and MinHeight bound that clamp.
type GameConfig struct {
	MaxWidth  int `json:"max_width"`
	MinHeight int `json:"min_height"`
	TickMS    int `json:"tick_ms"`
	AIPlayers int `json:"ai_players"`
}

// SpectateConfig holds the optional spectator/debug HTTP server settings.
type SpectateConfig struct {
	Enabled        bool     `json:"enabled"`
	Port           int      `json:"port"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// HistoryConfig holds the optional match history store settings.
type HistoryConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `json:"level"`
	Directory  string `json:"directory"`
	MaxBackups int    `json:"max_backups"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Player: PlayerConfig{
			Name:     "Player",
			Controls: "wasd",
		},
		Net: NetConfig{
			Port:           DefaultPort,
			DialTimeoutSec: 10,
		},
		Game: GameConfig{
			MaxWidth:  25,
			MinHeight: 10,
			TickMS:    DefaultTickMS,
			AIPlayers: 2,
		},
		Spectate: SpectateConfig{
			Enabled:        false,
			Port:           DefaultSpectatePort,
			AllowedOrigins: []string{"http://localhost"},
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(DefaultConfigDir, "history.db"),
		},
		Logging: LoggingConfig{
			Level:      "info",
			Directory:  "logs",
			MaxBackups: 5,
		},
	}
}

// Load reads configuration from a JSON file, creating it with defaults when
// missing. Unknown fields are preserved by starting from the defaults and
// overlaying the file.
func Load(configDir string) (*Config, error) {
	configPath := filepath.Join(configDir, DefaultConfigFile)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", configPath).Msg("config file not found, creating default")
			cfg := Default()
			cfg.path = configPath
			if saveErr := cfg.Save(); saveErr != nil {
				return nil, fmt.Errorf("failed to save default config: %w", saveErr)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	cfg.path = configPath
	log.Debug().Str("path", configPath).Msg("configuration loaded")

	return cfg, nil
}

// Save writes the current configuration to disk.
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Debug().Str("path", c.path).Msg("configuration saved")
	return nil
}

// Path returns the config file path.
func (c *Config) Path() string {
	return c.path
}
