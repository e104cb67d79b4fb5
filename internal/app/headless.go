package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kurve-project/kurve/internal/events"
	"github.com/kurve-project/kurve/internal/game"
	"github.com/kurve-project/kurve/internal/netplay"
	"github.com/kurve-project/kurve/internal/network"
	"github.com/kurve-project/kurve/internal/util"
)

// Headless plays a joined match from line-based input instead of the
// terminal renderer: w, a, s, d steer, q quits, and any line commits the
// current frame. Useful for driving a peer from a script.
type Headless struct {
	driver
	in  io.Reader
	out io.Writer
}

// NewHeadless assembles a headless match on an established peer connection.
func NewHeadless(peer *network.PeerMatch, bus *events.Bus, in io.Reader, out io.Writer) *Headless {
	h := &Headless{in: in, out: out}
	h.bus = bus
	h.mode = events.ModeHeadless
	h.logger = util.ComponentLogger("headless")

	slots := game.SpawnSlots(peer.Width, peer.Height)
	names := [2]string{}
	names[peer.LocalIndex] = peer.LocalName
	names[peer.RemoteIndex] = peer.RemoteName

	players := []*game.Player{
		game.NewPlayer(names[0], slots[0]),
		game.NewPlayer(names[1], slots[1]),
	}
	h.game = game.New(peer.Width, peer.Height, players, 1)
	h.session = netplay.NewSession(
		peer.Conn,
		peer.LocalIndex,
		peer.RemoteIndex,
		slots[peer.LocalIndex].Direction,
		1,
	)

	return h
}

// Run plays until the match ends, input runs out, or ctx is cancelled.
func (h *Headless) Run(ctx context.Context) error {
	fmt.Fprintf(h.out, "Playing %s vs %s on a %dx%d board\n",
		h.game.Players[0].Name, h.game.Players[1].Name, h.game.Width, h.game.Height)

	h.onFrame = func() {
		fmt.Fprintf(h.out, "~~ frame %d ~~\n", h.game.Frame)
		for _, p := range h.game.Players {
			fmt.Fprintf(h.out, "  %s at %d,%d heading %s crashed=%v\n",
				p.Name, p.Head().X, p.Head().Y, p.Direction, p.Crashed)
		}
	}
	h.onGameEvent = func(ev game.Event) {
		switch ev.Kind {
		case game.EventPlayerCrashed:
			fmt.Fprintf(h.out, "%s crashed!\n", h.game.Players[ev.Player].Name)
		case game.EventPlayerWon:
			fmt.Fprintf(h.out, "%s won!\n", h.game.Players[ev.Player].Name)
		case game.EventEveryoneCrashed:
			fmt.Fprintln(h.out, "Everyone crashed!")
		}
	}
	h.onRemoteLeft = func(politely bool) {
		if politely {
			fmt.Fprintln(h.out, "They left!")
		} else {
			fmt.Fprintln(h.out, "Disconnected!")
		}
	}
	h.onNetError = func(err error) {
		fmt.Fprintf(h.out, "Network error: %v\n", err)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(h.in)
		for scanner.Scan() {
			lines <- strings.ToLower(strings.TrimSpace(scanner.Text()))
		}
	}()

	h.announceStart(ctx)

	outcomes, err := h.session.StartGame()
	h.applyOutcomes(ctx, outcomes)
	if err != nil {
		h.handleNetError(ctx, err)
	}

loop:
	for !h.game.Over {
		fmt.Fprint(h.out, "> ")

		select {
		case <-ctx.Done():
			break loop

		case n := <-h.session.Notices():
			h.applyNotice(ctx, n)

		case line, ok := <-lines:
			if !ok || strings.HasPrefix(line, "q") {
				break loop
			}
			if dir, ok := parseDirection(line); ok {
				outcomes, err := h.session.SetDirection(dir)
				h.applyOutcomes(ctx, outcomes)
				if err != nil {
					h.handleNetError(ctx, err)
				}
			}
			outcomes, err := h.session.CommitFrame()
			h.applyOutcomes(ctx, outcomes)
			if err != nil {
				h.handleNetError(ctx, err)
			}
		}
	}

	fmt.Fprintln(h.out, "Game over.")
	h.session.Exit()
	h.finish(ctx, "")

	return nil
}

func parseDirection(line string) (game.Direction, bool) {
	switch {
	case strings.HasPrefix(line, "w"):
		return game.Up, true
	case strings.HasPrefix(line, "a"):
		return game.Left, true
	case strings.HasPrefix(line, "s"):
		return game.Down, true
	case strings.HasPrefix(line, "d"):
		return game.Right, true
	default:
		return 0, false
	}
}
