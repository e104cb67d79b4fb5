// Kurve - a two-player tron-style game for the terminal.
//
// Two peers connect over TCP and stay in lockstep frame by frame: steering
// travels as single-byte packets and a frame only advances once both sides
// have committed it. Matches can also be played offline against a second
// keyboard player and autopilot opponents.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kurve-project/kurve/internal/config"
	"github.com/kurve-project/kurve/internal/util"
)

const (
	appName    = "kurve"
	appVersion = "1.0.0"

	banner = `
  _
 | | ___   _ _ ____   _____
 | |/ / | | | '__\ \ / / _ \
 |   <| |_| | |   \ V /  __/
 |_|\_\\__,_|_|    \_/ \___|  v%s
 Achtung, die Kurve!
`
)

func main() {
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "A two-player tron-style game for the terminal",
		Long: `Kurve is a terminal rendition of Achtung, die Kurve.

Steer your trail, avoid the walls and everyone's trails, and outlive
the other player. Play over TCP against a friend, or offline against
a second keyboard player and autopilot opponents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		hostCmd(),
		joinCmd(),
		offlineCmd(),
		headlessCmd(),
		historyCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration and points the global logger at the log
// directory. Console logging stays off: the terminal belongs to the game.
func setup() (*config.Config, error) {
	cfg, err := config.Load(config.DefaultConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logCfg := util.LogConfig{
		Level:      cfg.Logging.Level,
		Directory:  cfg.Logging.Directory,
		MaxBackups: cfg.Logging.MaxBackups,
		Console:    false,
	}
	if err := util.InitLogger(logCfg); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Info().
		Str("version", appVersion).
		Str("platform", runtime.GOOS).
		Msg("starting kurve")

	validation := config.Validate(cfg)
	for _, w := range validation.Warnings {
		log.Warn().Str("field", w.Field).Msg(w.Message)
	}
	if !validation.IsValid() {
		for _, e := range validation.Errors {
			fmt.Fprintf(os.Stderr, "config error [%s]: %s\n", e.Field, e.Message)
		}
		return nil, fmt.Errorf("configuration validation failed, fix %s", cfg.Path())
	}

	return cfg, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf(banner, appVersion)
		},
	}
}
