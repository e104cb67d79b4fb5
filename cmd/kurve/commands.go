package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kurve-project/kurve/internal/app"
	"github.com/kurve-project/kurve/internal/config"
	"github.com/kurve-project/kurve/internal/events"
	"github.com/kurve-project/kurve/internal/history"
	"github.com/kurve-project/kurve/internal/network"
	"github.com/kurve-project/kurve/internal/spectate"
	"github.com/kurve-project/kurve/internal/ui"
)

func hostCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "host [address]",
		Short: "Host a match and wait for a peer to join",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			ctx, cancel := matchContext()
			defer cancel()

			width, height, err := boardSize(cfg)
			if err != nil {
				return err
			}

			addr := fmt.Sprintf(":%d", cfg.Net.Port)
			if len(args) > 0 {
				addr = args[0]
			}

			fmt.Printf("Waiting for a peer on %s ...\n", addr)
			peer, err := network.Host(ctx, addr, width, height, playerName(cfg, name))
			if err != nil {
				return err
			}
			fmt.Printf("%s joined!\n", peer.RemoteName)

			return runMatch(ctx, cfg, events.ModeHost, peer, width, height)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "player name (defaults to the configured name)")
	return cmd
}

func joinCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "join [address]",
		Short: "Join a hosted match",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			ctx, cancel := matchContext()
			defer cancel()

			addr := hostAddr(cfg, args)
			fmt.Printf("Connecting to %s ...\n", addr)
			peer, err := network.Join(ctx, addr, dialTimeout(cfg), playerName(cfg, name))
			if err != nil {
				return err
			}
			fmt.Printf("Connected to %s, playing on a %dx%d board\n",
				peer.RemoteName, peer.Width, peer.Height)

			return runMatch(ctx, cfg, events.ModeJoin, peer, peer.Width, peer.Height)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "player name (defaults to the configured name)")
	return cmd
}

func offlineCmd() *cobra.Command {
	var bots int
	cmd := &cobra.Command{
		Use:   "offline",
		Short: "Play locally: WASD vs arrow keys, plus autopilot opponents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			ctx, cancel := matchContext()
			defer cancel()

			width, height, err := boardSize(cfg)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("bots") {
				cfg.Game.AIPlayers = bots
			}

			return runMatch(ctx, cfg, events.ModeOffline, nil, width, height)
		},
	}
	cmd.Flags().IntVar(&bots, "bots", 2, "number of autopilot opponents (0-2)")
	return cmd
}

func headlessCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "headless [address]",
		Short: "Join a match and play it from stdin lines instead of the terminal renderer",
		Long: `Join a hosted match without claiming the terminal. Each input line
commits one frame; lines starting with w, a, s or d steer first, and q quits.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			ctx, cancel := matchContext()
			defer cancel()

			addr := hostAddr(cfg, args)
			fmt.Printf("Connecting to %s ...\n", addr)
			peer, err := network.Join(ctx, addr, dialTimeout(cfg), playerName(cfg, name))
			if err != nil {
				return err
			}

			bus, closeObservers, err := startObservers(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeObservers()

			return app.NewHeadless(peer, bus, os.Stdin, os.Stdout).Run(ctx)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "player name (defaults to the configured name)")
	return cmd
}

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent matches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("match history is disabled in %s", cfg.Path())
			}

			store, err := history.NewStore(cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No matches recorded yet.")
				return nil
			}
			history.WriteTable(os.Stdout, records)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of matches to show")
	return cmd
}

// runMatch starts the observers and plays one interactive match.
func runMatch(ctx context.Context, cfg *config.Config, mode events.MatchMode, peer *network.PeerMatch, width, height int) error {
	bus, closeObservers, err := startObservers(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeObservers()

	match, err := app.New(app.Options{
		Mode:         mode,
		Peer:         peer,
		Bus:          bus,
		LocalName:    cfg.Player.Name,
		Controls:     cfg.Player.Controls,
		Width:        width,
		Height:       height,
		TickInterval: time.Duration(cfg.Game.TickMS) * time.Millisecond,
		AIPlayers:    cfg.Game.AIPlayers,
	})
	if err != nil {
		return err
	}
	return match.Run(ctx)
}

// startObservers wires the optional bus observers: the history recorder and
// the spectator server.
func startObservers(ctx context.Context, cfg *config.Config) (*events.Bus, func(), error) {
	bus := events.NewBus()

	var store *history.Store
	if cfg.History.Enabled {
		var err error
		store, err = history.NewStore(cfg.History.Path)
		if err != nil {
			return nil, nil, err
		}
		history.NewRecorder(store, bus)
	}

	if cfg.Spectate.Enabled {
		server := spectate.NewServer(cfg.Spectate, bus)
		go func() {
			if err := server.Start(ctx); err != nil {
				log.Error().Err(err).Msg("spectator server failed")
			}
		}()
	}

	closeObservers := func() {
		bus.Stop()
		if store != nil {
			store.Close()
		}
	}
	return bus, closeObservers, nil
}

// boardSize fits the configured board limits to the terminal.
func boardSize(cfg *config.Config) (int, int, error) {
	termW, termH, err := ui.Size()
	if err != nil {
		return 0, 0, err
	}
	width := termW
	if width > cfg.Game.MaxWidth {
		width = cfg.Game.MaxWidth
	}
	height := termH
	if height < cfg.Game.MinHeight {
		height = cfg.Game.MinHeight
	}
	return width, height, nil
}

func hostAddr(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return fmt.Sprintf("localhost:%d", cfg.Net.Port)
}

func playerName(cfg *config.Config, override string) string {
	if override != "" {
		return override
	}
	return cfg.Player.Name
}

func dialTimeout(cfg *config.Config) time.Duration {
	timeout := cfg.Net.DialTimeoutSec
	if timeout < 1 {
		timeout = 1
	}
	return time.Duration(timeout) * time.Second
}

func matchContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
