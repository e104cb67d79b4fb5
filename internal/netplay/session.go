// Package netplay implements two-peer lockstep frame synchronization over a
// raw TCP byte stream. Each simulation frame is a barrier: a peer commits
// when it has no more input to contribute, and the frame advances only once
// both commit signals have been observed locally, in whatever order they
// arrive. Control messages are single bytes (see internal/protocol); frame
// numbers travel as a parity modulo a small window, which is enough because
// the peers never drift more than one frame apart.
//
// A Session is shared between the driver goroutine and a background socket
// reader. All transitions run under one mutex; outbound writes happen
// outside it, from whichever goroutine triggered them. Effects for the
// driver are expressed as Outcome values: driver-initiated operations
// return theirs directly, and the reader delivers its batches through the
// Notices channel, outcomes and wake-up in one message.
package netplay

import (
	"net"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kurve-project/kurve/internal/game"
	"github.com/kurve-project/kurve/internal/protocol"
	"github.com/kurve-project/kurve/internal/telemetry"
)

const noticeBufferSize = 16

// Session serializes access to the lockstep state machine and turns its
// transitions into outbound bytes and observable outcomes.
type Session struct {
	mu sync.Mutex
	m  *machine

	conn    net.Conn
	notices chan Notice
	done    chan struct{}
	closing sync.Once

	logger zerolog.Logger
}

// NewSession wraps an established, handshaken connection. local and remote
// are the two player slots; direction is the local player's spawn heading;
// frame is the first frame number (normally 1).
func NewSession(conn net.Conn, local, remote game.PlayerIndex, direction game.Direction, frame uint32) *Session {
	logger := log.With().
		Str("component", "netplay").
		Int("local_player", local).
		Logger()
	return &Session{
		m:       newMachine(local, remote, direction, frame, logger),
		conn:    conn,
		notices: make(chan Notice, noticeBufferSize),
		done:    make(chan struct{}),
		logger:  logger,
	}
}

// Notices delivers outcome batches produced by inbound packets, together
// with any typed network-path error. The channel is never closed; callers
// stop reading it once a RemoteLeft outcome or an error arrives.
func (s *Session) Notices() <-chan Notice {
	return s.notices
}

// StartGame announces the local spawn heading to the remote and starts the
// background socket reader.
func (s *Session) StartGame() ([]Outcome, error) {
	s.mu.Lock()
	s.m.startGame()
	packets, outcomes := s.m.takeOutbound(), s.m.drainPending()
	s.mu.Unlock()

	go s.readLoop()

	return outcomes, s.writePackets(packets)
}

// StartNewFrame advances the barrier to the given frame. Queued directions
// become PlayerControl outcomes here, and the local heading for the new
// frame goes on the wire.
func (s *Session) StartNewFrame(frame uint32) ([]Outcome, error) {
	s.mu.Lock()
	s.m.startNewFrame(frame)
	packets, outcomes := s.m.takeOutbound(), s.m.drainPending()
	s.mu.Unlock()

	return outcomes, s.writePackets(packets)
}

// SetDirection requests a new local heading. Before the local commit it is
// applied and announced immediately; after it, it is queued for the next
// frame and produces nothing yet.
func (s *Session) SetDirection(dir game.Direction) ([]Outcome, error) {
	s.mu.Lock()
	s.m.setDirection(dir)
	packets, outcomes := s.m.takeOutbound(), s.m.drainPending()
	s.mu.Unlock()

	return outcomes, s.writePackets(packets)
}

// CommitFrame declares the local side done for this frame. Idempotent; if
// the remote already committed, the returned outcomes include RunFrame.
func (s *Session) CommitFrame() ([]Outcome, error) {
	s.mu.Lock()
	s.m.commitFrame()
	packets, outcomes := s.m.takeOutbound(), s.m.drainPending()
	s.mu.Unlock()

	return outcomes, s.writePackets(packets)
}

// DrainBufferedOutcomes returns any outcomes that have accumulated without
// being delivered, for example transitions applied before the driver
// attached to the Notices channel.
func (s *Session) DrainBufferedOutcomes() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.drainPending()
}

// Exit sends a best-effort GoodBye and tears the session down. A peer that
// is already gone is not an error. Safe to call more than once.
func (s *Session) Exit() {
	s.closing.Do(func() {
		if err := s.writePackets([]protocol.Packet{protocol.GoodBye{}}); err != nil && err != ErrRemoteClosed {
			s.logger.Warn().Err(err).Msg("failed to send goodbye")
		}
		close(s.done)
		if err := s.conn.Close(); err != nil {
			s.logger.Debug().Err(err).Msg("closing connection")
		}
	})
}

// writePackets performs the outbound socket writes for a transition. Called
// while holding no lock; the single writer is whichever goroutine triggered
// the transition, normally the driver.
func (s *Session) writePackets(packets []protocol.Packet) error {
	if len(packets) == 0 {
		return nil
	}
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	buf := make([]byte, len(packets))
	for i, pkt := range packets {
		buf[i] = protocol.Encode(pkt)
		telemetry.PacketsSent.WithLabelValues(packetKind(pkt)).Inc()
	}
	if _, err := s.conn.Write(buf); err != nil {
		return classifyIOError(err)
	}
	return nil
}

// deliver hands a notice to the driver, giving up if the session is closed.
func (s *Session) deliver(n Notice) {
	select {
	case s.notices <- n:
	case <-s.done:
	}
}

func packetKind(p protocol.Packet) string {
	switch p.(type) {
	case protocol.SetDirection:
		return "set_direction"
	case protocol.CommitFrame:
		return "commit_frame"
	case protocol.GoodBye:
		return "good_bye"
	default:
		return "unknown"
	}
}
