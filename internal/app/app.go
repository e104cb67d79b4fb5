package app

import (
	"context"
	"fmt"
	"time"

	"github.com/nsf/termbox-go"

	"github.com/kurve-project/kurve/internal/events"
	"github.com/kurve-project/kurve/internal/game"
	"github.com/kurve-project/kurve/internal/netplay"
	"github.com/kurve-project/kurve/internal/network"
	"github.com/kurve-project/kurve/internal/ui"
	"github.com/kurve-project/kurve/internal/util"
)

// Options configure a match.
type Options struct {
	Mode events.MatchMode
	// Peer is the established connection for host and join modes, nil for
	// offline play.
	Peer *network.PeerMatch
	Bus  *events.Bus

	LocalName string
	// Controls is the local key binding for networked matches, "wasd" or
	// "arrows". Offline play always seats WASD against the arrow keys.
	Controls string
	Width    int
	Height   int

	TickInterval time.Duration
	// AIPlayers is how many autopilot opponents join an offline match.
	AIPlayers int
}

type controlBinding struct {
	controls ui.KeyboardControls
	player   game.PlayerIndex
}

// App runs an interactive match in the terminal.
type App struct {
	driver
	term     *ui.Terminal
	controls []controlBinding
	tick     time.Duration
}

// New assembles a match from the options. For networked modes the player
// slots come from the handshake; offline play seats two keyboard players
// plus the configured autopilots.
func New(opts Options) (*App, error) {
	a := &App{
		tick: opts.TickInterval,
	}
	a.bus = opts.Bus
	a.mode = opts.Mode
	a.logger = util.ComponentLogger("app")

	slots := game.SpawnSlots(opts.Width, opts.Height)

	if opts.Peer != nil {
		peer := opts.Peer
		names := [2]string{}
		names[peer.LocalIndex] = peer.LocalName
		names[peer.RemoteIndex] = peer.RemoteName

		players := []*game.Player{
			game.NewPlayer(names[0], slots[0]),
			game.NewPlayer(names[1], slots[1]),
		}
		a.game = game.New(opts.Width, opts.Height, players, 1)
		a.controls = []controlBinding{{controls: ui.ControlsByName(opts.Controls), player: peer.LocalIndex}}
		a.session = netplay.NewSession(
			peer.Conn,
			peer.LocalIndex,
			peer.RemoteIndex,
			slots[peer.LocalIndex].Direction,
			1,
		)
		return a, nil
	}

	if opts.Mode != events.ModeOffline {
		return nil, fmt.Errorf("mode %s requires a peer connection", opts.Mode)
	}

	players := []*game.Player{
		game.NewPlayer(opts.LocalName, slots[0]),
		game.NewPlayer("P2", slots[1]),
	}
	a.controls = []controlBinding{
		{controls: ui.WASDControls(), player: 0},
		{controls: ui.ArrowControls(), player: 1},
	}
	for i := 0; i < opts.AIPlayers && i < 2; i++ {
		players = append(players, game.NewPlayer(fmt.Sprintf("Bot %d", i+1), slots[2+i]))
		a.ai = append(a.ai, game.PlayerIndex(len(players)-1))
	}
	a.game = game.New(opts.Width, opts.Height, players, 1)

	return a, nil
}

// Run plays the match until it is over and the player leaves, or ctx is
// cancelled. It owns the terminal for its whole duration.
func (a *App) Run(ctx context.Context) error {
	term, err := ui.Open(a.game.Width, a.game.Height)
	if err != nil {
		return err
	}
	defer term.Close()
	a.term = term

	term.SetBanner(termbox.ColorYellow, fmt.Sprintf("Achtung! %dx%d", a.game.Width, a.game.Height))
	a.onGameEvent = a.showGameEvent
	a.onFrame = func() { term.SetFrame(a.game.Frame) }
	a.onRemoteLeft = func(politely bool) {
		if politely {
			term.SetBanner(termbox.ColorYellow, "They left!")
		} else {
			term.SetBanner(termbox.ColorYellow, "Disconnected!")
		}
	}
	a.onNetError = func(error) {
		term.SetBanner(termbox.ColorRed, "Network error!")
	}

	keyEvents := make(chan termbox.Event, 8)
	go ui.PollEvents(keyEvents)

	a.announceStart(ctx)

	var notices <-chan netplay.Notice
	if a.session != nil {
		notices = a.session.Notices()
		outcomes, err := a.session.StartGame()
		a.applyOutcomes(ctx, outcomes)
		if err != nil {
			a.handleNetError(ctx, err)
		}
	}

	ticker := time.NewTicker(a.tick)
	defer ticker.Stop()

	// Every other tick commits the frame, so networked frames advance at
	// half the tick rate; offline frames run on the same cadence.
	commitTick := false

loop:
	for {
		if err := term.Draw(a.game); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			break loop

		case ev := <-keyEvents:
			if ui.IsQuit(ev) {
				break loop
			}
			if ev.Type == termbox.EventKey {
				a.handleKey(ctx, ev)
			}

		case n := <-notices:
			a.applyNotice(ctx, n)

		case <-ticker.C:
			commitTick = !commitTick
			if a.game.Over {
				continue
			}
			if a.session != nil {
				if commitTick {
					outcomes, err := a.session.CommitFrame()
					a.applyOutcomes(ctx, outcomes)
					if err != nil {
						a.handleNetError(ctx, err)
					}
				}
			} else if !commitTick {
				a.runFrame(ctx)
			}
		}
	}

	if a.session != nil {
		a.session.Exit()
	}
	a.finish(ctx, "")

	return nil
}

// handleKey routes a key press to whichever player it steers.
func (a *App) handleKey(ctx context.Context, ev termbox.Event) {
	if a.game.Over {
		return
	}
	for _, binding := range a.controls {
		dir, ok := binding.controls.Handle(ev)
		if !ok || a.game.Players[binding.player].Crashed {
			continue
		}
		if a.session != nil {
			// The direction comes back as a PlayerControl outcome when it
			// takes effect immediately; a post-commit press is queued for
			// the next frame.
			outcomes, err := a.session.SetDirection(dir)
			a.applyOutcomes(ctx, outcomes)
			if err != nil {
				a.handleNetError(ctx, err)
			}
		} else {
			a.game.Players[binding.player].Direction = dir
		}
	}
}

func (a *App) showGameEvent(ev game.Event) {
	switch ev.Kind {
	case game.EventPlayerCrashed:
		a.term.SetBanner(termbox.ColorYellow, fmt.Sprintf("%s crashed!", a.game.Players[ev.Player].Name))
	case game.EventPlayerWon:
		attr := ui.PlayerAttrs[ev.Player%len(ui.PlayerAttrs)]
		a.term.SetBanner(attr, fmt.Sprintf("%s won!", a.game.Players[ev.Player].Name))
	case game.EventEveryoneCrashed:
		a.term.SetBanner(termbox.ColorYellow, "Everyone crashed!")
	}
}
