package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Net.Port != DefaultPort {
		t.Errorf("port = %d, want %d", cfg.Net.Port, DefaultPort)
	}
	if _, err := os.Stat(filepath.Join(dir, DefaultConfigFile)); err != nil {
		t.Errorf("expected config file to be written: %v", err)
	}
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	dir := t.TempDir()
	data := `{"player": {"name": "alice"}, "net": {"port": 9000}}`
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Player.Name != "alice" {
		t.Errorf("name = %q, want alice", cfg.Player.Name)
	}
	if cfg.Net.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Net.Port)
	}
	// Sections absent from the file keep their defaults.
	if cfg.Game.TickMS != DefaultTickMS {
		t.Errorf("tick_ms = %d, want default %d", cfg.Game.TickMS, DefaultTickMS)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("{not json"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("expected an error for malformed config")
	}
}

func TestValidateDefaults(t *testing.T) {
	result := Validate(Default())
	if !result.IsValid() {
		t.Fatalf("default config should validate, got errors: %v", result.Errors)
	}
}

func TestValidateCatchesBadValues(t *testing.T) {
	cfg := Default()
	cfg.Player.Name = "  "
	cfg.Player.Controls = "dvorak"
	cfg.Net.Port = 70000
	cfg.Game.TickMS = 2
	cfg.Game.AIPlayers = 5
	cfg.Spectate.Enabled = true
	cfg.Spectate.Port = cfg.Net.Port

	result := Validate(cfg)
	if result.IsValid() {
		t.Fatal("expected validation errors")
	}

	fields := map[string]bool{}
	for _, e := range result.Errors {
		fields[e.Field] = true
	}
	for _, want := range []string{"player.name", "player.controls", "net.port", "game.tick_ms", "game.ai_players", "spectate.port"} {
		if !fields[want] {
			t.Errorf("expected an error for %s, got %v", want, result.Errors)
		}
	}
}
