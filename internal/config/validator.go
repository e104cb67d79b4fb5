package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationResult holds the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// IsValid returns true if there are no validation errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// AddError adds a validation error.
func (r *ValidationResult) AddError(field, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
}

// AddWarning adds a validation warning.
func (r *ValidationResult) AddWarning(field, message string) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Message: message})
}

// Validate checks the configuration for values the game cannot run with.
func Validate(cfg *Config) *ValidationResult {
	result := &ValidationResult{}

	if strings.TrimSpace(cfg.Player.Name) == "" {
		result.AddError("player.name", "player name is required")
	}
	switch cfg.Player.Controls {
	case "", "wasd", "arrows":
	default:
		result.AddError("player.controls", fmt.Sprintf("unknown control scheme %q, use wasd or arrows", cfg.Player.Controls))
	}

	if cfg.Net.Port < 1 || cfg.Net.Port > 65535 {
		result.AddError("net.port", fmt.Sprintf("port %d is out of range", cfg.Net.Port))
	}
	if cfg.Net.DialTimeoutSec < 1 {
		result.AddWarning("net.dial_timeout_sec", "dial timeout below 1s, using 1s")
	}

	if cfg.Game.TickMS < 10 {
		result.AddError("game.tick_ms", "tick interval below 10ms is not playable")
	}
	if cfg.Game.TickMS > 500 {
		result.AddWarning("game.tick_ms", fmt.Sprintf("tick interval %dms will feel sluggish", cfg.Game.TickMS))
	}
	if cfg.Game.MaxWidth < 8 {
		result.AddError("game.max_width", "board narrower than 8 cells leaves no room to play")
	}
	if cfg.Game.MinHeight < 6 {
		result.AddError("game.min_height", "board shorter than 6 cells leaves no room to play")
	}
	if cfg.Game.AIPlayers < 0 || cfg.Game.AIPlayers > 2 {
		result.AddError("game.ai_players", "supported autopilot count is 0 to 2")
	}

	if cfg.Spectate.Enabled {
		if cfg.Spectate.Port < 1 || cfg.Spectate.Port > 65535 {
			result.AddError("spectate.port", fmt.Sprintf("port %d is out of range", cfg.Spectate.Port))
		}
		if cfg.Spectate.Port == cfg.Net.Port {
			result.AddError("spectate.port", "spectator port collides with the game port")
		}
	}

	if cfg.History.Enabled && strings.TrimSpace(cfg.History.Path) == "" {
		result.AddError("history.path", "history database path is required when history is enabled")
	}

	return result
}
