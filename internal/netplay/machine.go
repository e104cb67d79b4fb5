package netplay

import (
	"github.com/rs/zerolog"

	"github.com/kurve-project/kurve/internal/game"
	"github.com/kurve-project/kurve/internal/protocol"
	"github.com/kurve-project/kurve/internal/telemetry"
)

// machine is the frame-barrier state machine. It is pure bookkeeping: every
// transition appends the packets to send to outbound and the effects for the
// driver to pending, and the Session decides when to flush both. The machine
// itself performs no I/O and takes no locks.
//
// Conceptually it cycles through four states per frame, keyed on
// (localCommitted, remoteCommittedCurrent): neither committed, local
// committed and waiting, remote committed and waiting, and both committed,
// at which point a single RunFrame outcome is emitted and startNewFrame
// resets the pair.
//
// remoteCommittedNext and queuedRemote exist only because the remote clock
// can run one frame ahead of ours; nothing is ever buffered for more than
// one frame of skew.
type machine struct {
	localPlayer  game.PlayerIndex
	remotePlayer game.PlayerIndex

	frame          uint32
	localDirection game.Direction

	// queuedLocal holds a direction requested after the local side already
	// committed this frame. A newer request overwrites an older one; it is
	// applied and announced at the next frame boundary.
	queuedLocal *game.Direction

	// queuedRemote holds a direction the remote sent for the next frame,
	// buffered because it arrived early.
	queuedRemote *game.Direction

	localCommitted         bool
	remoteCommittedCurrent bool
	remoteCommittedNext    bool

	pending  []Outcome
	outbound []protocol.Packet

	logger zerolog.Logger
}

func newMachine(local, remote game.PlayerIndex, direction game.Direction, frame uint32, logger zerolog.Logger) *machine {
	return &machine{
		localPlayer:    local,
		remotePlayer:   remote,
		frame:          frame,
		localDirection: direction,
		logger:         logger,
	}
}

func (m *machine) emit(o Outcome) {
	m.pending = append(m.pending, o)
}

func (m *machine) send(p protocol.Packet) {
	m.outbound = append(m.outbound, p)
}

// drainPending returns and clears the queued outcomes.
func (m *machine) drainPending() []Outcome {
	out := m.pending
	m.pending = nil
	return out
}

// takeOutbound returns and clears the packets waiting to be written.
func (m *machine) takeOutbound() []protocol.Packet {
	out := m.outbound
	m.outbound = nil
	return out
}

// startGame announces the initial heading. Its arrival tells the remote we
// are alive and what our frame-one intent is.
func (m *machine) startGame() {
	m.sendDirection()
}

// startNewFrame advances to the given frame: commit flags reset, queued
// directions are applied and converted to outcomes, the early remote commit
// is promoted, and the (possibly just-applied) local heading is announced
// for the new frame.
func (m *machine) startNewFrame(frame uint32) {
	m.frame = frame
	m.localCommitted = false
	m.remoteCommittedCurrent = false

	if dir := m.queuedLocal; dir != nil {
		m.queuedLocal = nil
		m.localDirection = *dir
		m.emit(PlayerControl{Player: m.localPlayer, Direction: *dir})
	}
	m.sendDirection()

	if dir := m.queuedRemote; dir != nil {
		m.queuedRemote = nil
		m.emit(PlayerControl{Player: m.remotePlayer, Direction: *dir})
	}

	if m.remoteCommittedNext {
		m.remoteCommittedNext = false
		m.remoteCommittedCurrent = true
	}
}

// setDirection handles a local steering request. Before the local commit it
// takes effect and is announced immediately; after it, the request is queued
// for the next frame boundary and nothing goes on the wire.
func (m *machine) setDirection(dir game.Direction) {
	if m.localCommitted {
		d := dir
		m.queuedLocal = &d
		return
	}
	m.localDirection = dir
	m.emit(PlayerControl{Player: m.localPlayer, Direction: dir})
	m.sendDirection()
}

// commitFrame declares the local side done for this frame. Idempotent: only
// the first call per frame sends a packet or can release the frame.
func (m *machine) commitFrame() {
	if m.localCommitted {
		return
	}
	m.localCommitted = true
	m.send(protocol.CommitFrame{FrameParity: protocol.FrameParity(m.frame)})
	if m.remoteCommittedCurrent {
		m.releaseFrame()
	}
}

// handleSetDirection applies a remote steering packet according to its frame
// parity: current frame takes effect now, next frame is buffered, previous
// frame is dropped as stale, anything else is a window violation.
func (m *machine) handleSetDirection(pkt protocol.SetDirection) error {
	switch pkt.FrameParity {
	case protocol.FrameParity(m.frame):
		if m.remoteCommittedCurrent {
			m.logger.Warn().
				Uint32("frame", m.frame).
				Str("direction", pkt.Direction.String()).
				Msg("remote steered after committing the frame")
		}
		m.emit(PlayerControl{Player: m.remotePlayer, Direction: pkt.Direction})
	case protocol.FrameParity(m.frame + 1):
		if m.queuedRemote != nil {
			m.logger.Warn().
				Uint32("frame", m.frame).
				Msg("remote steered twice for the next frame, keeping the newer heading")
		}
		d := pkt.Direction
		m.queuedRemote = &d
	case protocol.FrameParity(m.frame - 1):
		telemetry.StalePacketsDropped.Inc()
		m.logger.Warn().
			Uint32("frame", m.frame).
			Uint8("parity", pkt.FrameParity).
			Msg("dropping stale remote steering packet")
	default:
		telemetry.ProtocolErrors.Inc()
		return &FrameWindowError{Parity: pkt.FrameParity, Frame: m.frame}
	}
	return nil
}

// handleCommitFrame records the remote commit signal, releasing the frame if
// the local side already committed. Same parity dispatch as steering.
func (m *machine) handleCommitFrame(pkt protocol.CommitFrame) error {
	switch pkt.FrameParity {
	case protocol.FrameParity(m.frame):
		if m.remoteCommittedCurrent {
			m.logger.Warn().Uint32("frame", m.frame).Msg("duplicate remote commit ignored")
			return nil
		}
		m.remoteCommittedCurrent = true
		if m.localCommitted {
			m.releaseFrame()
		}
	case protocol.FrameParity(m.frame + 1):
		if m.remoteCommittedNext {
			m.logger.Warn().Uint32("frame", m.frame).Msg("duplicate early remote commit ignored")
			return nil
		}
		m.remoteCommittedNext = true
	case protocol.FrameParity(m.frame - 1):
		telemetry.StalePacketsDropped.Inc()
		m.logger.Warn().
			Uint32("frame", m.frame).
			Uint8("parity", pkt.FrameParity).
			Msg("dropping stale remote commit")
	default:
		telemetry.ProtocolErrors.Inc()
		return &FrameWindowError{Parity: pkt.FrameParity, Frame: m.frame}
	}
	return nil
}

// handleGoodBye records an orderly departure.
func (m *machine) handleGoodBye() {
	m.emit(RemoteLeft{Politely: true})
}

// everyoneCommitted reports whether both commit signals for the current
// frame have been observed.
func (m *machine) everyoneCommitted() bool {
	return m.localCommitted && m.remoteCommittedCurrent
}

// releaseFrame is called exactly once per frame, on whichever transition
// observes the second commit signal.
func (m *machine) releaseFrame() {
	telemetry.FramesRun.Inc()
	m.emit(RunFrame{})
}

func (m *machine) sendDirection() {
	m.send(protocol.SetDirection{
		FrameParity: protocol.FrameParity(m.frame),
		Direction:   m.localDirection,
	})
}
