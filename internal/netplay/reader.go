package netplay

import (
	"github.com/kurve-project/kurve/internal/protocol"
	"github.com/kurve-project/kurve/internal/telemetry"
)

// readLoop is the background byte-stream consumer. It blocks on the socket,
// decodes each byte, applies the packet to the state machine under the
// session lock, and forwards the resulting outcomes as a single Notice.
// There is deliberately no read timeout: a silent peer stalls only this
// goroutine, and Exit unblocks it by closing the connection.
func (s *Session) readLoop() {
	buf := make([]byte, 1024)
	for {
		n, err := s.conn.Read(buf)
		for _, b := range buf[:n] {
			if !s.applyByte(b) {
				return
			}
		}
		if err != nil {
			select {
			case <-s.done:
				// Local teardown, not a peer failure.
			default:
				if classifyIOError(err) == ErrRemoteClosed {
					s.deliver(Notice{Outcomes: []Outcome{RemoteLeft{Politely: false}}})
				} else {
					s.deliver(Notice{Err: err})
				}
			}
			return
		}
	}
}

// applyByte decodes and applies one inbound byte. It reports whether the
// reader should keep going: a goodbye, a decode failure or a window
// violation all end the stream.
func (s *Session) applyByte(b byte) bool {
	pkt, err := protocol.Decode(b)
	if err != nil {
		telemetry.ProtocolErrors.Inc()
		s.deliver(Notice{Err: err})
		return false
	}
	telemetry.PacketsReceived.WithLabelValues(packetKind(pkt)).Inc()

	s.mu.Lock()
	var applyErr error
	goodbye := false
	switch p := pkt.(type) {
	case protocol.SetDirection:
		applyErr = s.m.handleSetDirection(p)
	case protocol.CommitFrame:
		applyErr = s.m.handleCommitFrame(p)
	case protocol.GoodBye:
		s.m.handleGoodBye()
		goodbye = true
	}
	outcomes := s.m.drainPending()
	s.mu.Unlock()

	if len(outcomes) > 0 || applyErr != nil {
		s.deliver(Notice{Outcomes: outcomes, Err: applyErr})
	}
	return applyErr == nil && !goodbye
}
