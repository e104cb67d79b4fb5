// Package app drives a match: it owns the simulation, feeds it keyboard and
// network input, paces frames on a tick, and publishes lifecycle events.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/kurve-project/kurve/internal/events"
	"github.com/kurve-project/kurve/internal/game"
	"github.com/kurve-project/kurve/internal/netplay"
)

// driver is the mode-independent core shared by the interactive and
// headless front ends. The front end supplies the callbacks.
type driver struct {
	game    *game.Game
	session *netplay.Session // nil when playing offline
	bus     *events.Bus
	mode    events.MatchMode
	ai      []game.PlayerIndex

	startedAt time.Time
	ended     bool

	onGameEvent  func(game.Event)
	onFrame      func()
	onRemoteLeft func(politely bool)
	onNetError   func(error)

	logger zerolog.Logger
}

func (d *driver) playerNames() []string {
	names := make([]string, len(d.game.Players))
	for i, p := range d.game.Players {
		names[i] = p.Name
	}
	return names
}

// announceStart publishes the match start and begins the clock.
func (d *driver) announceStart(ctx context.Context) {
	d.startedAt = time.Now()
	d.bus.Emit(ctx, events.Event{
		Type:   events.EventMatchStarted,
		Source: "app",
		Payload: events.MatchStartedPayload{
			Mode:      d.mode,
			Players:   d.playerNames(),
			Width:     d.game.Width,
			Height:    d.game.Height,
			StartedAt: d.startedAt,
		},
	})
}

// applyOutcomes executes a batch of session outcomes against the game.
// RunFrame recurses through runFrame, which can itself produce more
// outcomes at the frame boundary.
func (d *driver) applyOutcomes(ctx context.Context, outcomes []netplay.Outcome) {
	for _, outcome := range outcomes {
		switch o := outcome.(type) {
		case netplay.PlayerControl:
			player := d.game.Players[o.Player]
			if !player.Crashed {
				player.Direction = o.Direction
			}
		case netplay.RunFrame:
			d.runFrame(ctx)
		case netplay.RemoteLeft:
			d.remoteLeft(ctx, o.Politely)
		}
	}
}

// applyNotice executes a reader-delivered batch, then its error if any.
func (d *driver) applyNotice(ctx context.Context, n netplay.Notice) {
	d.applyOutcomes(ctx, n.Outcomes)
	if n.Err != nil {
		d.handleNetError(ctx, n.Err)
	}
}

// runFrame advances the simulation one frame and opens the next one.
func (d *driver) runFrame(ctx context.Context) {
	winner := ""
	for _, ev := range d.game.RunFrame() {
		switch ev.Kind {
		case game.EventPlayerCrashed:
			d.bus.Emit(ctx, events.Event{
				Type:   events.EventPlayerCrashed,
				Source: "app",
				Payload: events.PlayerCrashedPayload{
					Player: ev.Player,
					Name:   d.game.Players[ev.Player].Name,
					Frame:  d.game.Frame,
				},
			})
		case game.EventPlayerWon:
			winner = d.game.Players[ev.Player].Name
		}
		if d.onGameEvent != nil {
			d.onGameEvent(ev)
		}
	}

	d.bus.Emit(ctx, events.Event{
		Type:    events.EventFrameAdvanced,
		Source:  "app",
		Payload: events.FrameAdvancedPayload{Snapshot: d.game.Snapshot()},
	})

	for _, i := range d.ai {
		if !d.game.Players[i].Crashed {
			game.Autopilot(d.game, i)
		}
	}

	if d.onFrame != nil {
		d.onFrame()
	}

	if d.game.Over {
		d.finish(ctx, winner)
	}

	if d.session != nil {
		outcomes, err := d.session.StartNewFrame(d.game.Frame)
		d.applyOutcomes(ctx, outcomes)
		if err != nil {
			d.handleNetError(ctx, err)
		}
	}
}

func (d *driver) remoteLeft(ctx context.Context, politely bool) {
	d.game.Over = true
	d.bus.Emit(ctx, events.Event{
		Type:    events.EventRemoteLeft,
		Source:  "app",
		Payload: events.RemoteLeftPayload{Politely: politely},
	})
	if d.onRemoteLeft != nil {
		d.onRemoteLeft(politely)
	}
	d.finish(ctx, "")
}

// handleNetError reacts to a typed network-path failure. A vanished peer is
// a normal way for a match to end; anything else ends the match with an
// error report but never crashes the process.
func (d *driver) handleNetError(ctx context.Context, err error) {
	if errors.Is(err, netplay.ErrRemoteClosed) {
		d.remoteLeft(ctx, false)
		return
	}

	d.logger.Error().Err(err).Msg("network error, ending match")
	d.game.Over = true
	if d.onNetError != nil {
		d.onNetError(err)
	}
	d.finish(ctx, "")
}

// finish publishes the match result exactly once.
func (d *driver) finish(ctx context.Context, winner string) {
	if d.ended {
		return
	}
	d.ended = true

	payload := events.MatchEndedPayload{
		Mode:     d.mode,
		Players:  d.playerNames(),
		Winner:   winner,
		Frames:   d.game.Frame,
		Duration: time.Since(d.startedAt),
	}
	d.bus.Emit(ctx, events.Event{
		Type:    events.EventMatchEnded,
		Source:  "app",
		Payload: payload,
	})

	d.logger.Info().
		Str("winner", winner).
		Uint32("frames", d.game.Frame).
		Msg("match over")
}
