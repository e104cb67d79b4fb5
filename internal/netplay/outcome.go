package netplay

import "github.com/kurve-project/kurve/internal/game"

// Outcome is an externally observable effect of a session transition,
// queued for the driver to apply. Exactly three kinds exist: PlayerControl,
// RunFrame and RemoteLeft.
type Outcome interface {
	isOutcome()
}

// PlayerControl changes a player's heading on the board.
type PlayerControl struct {
	Player    game.PlayerIndex
	Direction game.Direction
}

// RunFrame grants permission to advance the simulation one frame. It is
// emitted exactly once per frame, when both peers' commit signals for that
// frame have been observed locally, regardless of arrival order.
type RunFrame struct{}

// RemoteLeft reports that the remote peer is gone: politely via a GoodBye
// packet, or impolitely via a dropped connection.
type RemoteLeft struct {
	Politely bool
}

func (PlayerControl) isOutcome() {}
func (RunFrame) isOutcome()      {}
func (RemoteLeft) isOutcome()    {}

// Notice is one delivery from the socket reader to the driver. Outcomes
// travel inside the notice itself, so a wake-up can never be observed
// without the outcomes that caused it. Err carries a typed, recoverable
// network-path failure; the driver decides whether to end the game.
type Notice struct {
	Outcomes []Outcome
	Err      error
}
