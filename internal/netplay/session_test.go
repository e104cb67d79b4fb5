package netplay

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/kurve-project/kurve/internal/game"
	"github.com/kurve-project/kurve/internal/protocol"
)

// newTestSession wires a session to one end of an in-memory pipe and pumps
// every byte the session writes into the returned channel. The test plays
// the remote peer by writing encoded packets to the returned conn.
func newTestSession(t *testing.T) (*Session, net.Conn, <-chan byte) {
	t.Helper()
	local, remote := net.Pipe()
	s := NewSession(local, 0, 1, game.Right, 1)
	t.Cleanup(func() {
		s.Exit()
		remote.Close()
	})

	wire := make(chan byte, 64)
	go func() {
		buf := make([]byte, 64)
		for {
			n, err := remote.Read(buf)
			for _, b := range buf[:n] {
				wire <- b
			}
			if err != nil {
				close(wire)
				return
			}
		}
	}()
	return s, remote, wire
}

func nextWireByte(t *testing.T, wire <-chan byte) byte {
	t.Helper()
	select {
	case b, ok := <-wire:
		if !ok {
			t.Fatal("wire closed while waiting for a byte")
		}
		return b
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a wire byte")
	}
	return 0
}

func nextNotice(t *testing.T, s *Session) Notice {
	t.Helper()
	select {
	case n := <-s.Notices():
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a notice")
	}
	return Notice{}
}

func expectNoWireByte(t *testing.T, wire <-chan byte) {
	t.Helper()
	select {
	case b := <-wire:
		t.Fatalf("unexpected wire byte 0x%02X", b)
	case <-time.After(50 * time.Millisecond):
	}
}

func writePacket(t *testing.T, remote net.Conn, pkt protocol.Packet) {
	t.Helper()
	if _, err := remote.Write([]byte{protocol.Encode(pkt)}); err != nil {
		t.Fatalf("peer write failed: %v", err)
	}
}

func TestStartGameAnnouncesSpawnHeading(t *testing.T) {
	s, _, wire := newTestSession(t)

	outcomes, err := s.StartGame()
	if err != nil {
		t.Fatalf("start game failed: %v", err)
	}
	if len(outcomes) != 0 {
		t.Fatalf("start game should produce no outcomes, got %+v", outcomes)
	}

	pkt, err := protocol.Decode(nextWireByte(t, wire))
	if err != nil {
		t.Fatalf("undecodable announcement: %v", err)
	}
	ann, ok := pkt.(protocol.SetDirection)
	if !ok || ann.Direction != game.Right || ann.FrameParity != protocol.FrameParity(1) {
		t.Fatalf("unexpected announcement %+v", pkt)
	}
}

// Scenario: peer A steers right and commits; peer B's commit and steering
// arrive in either order. Exactly one RunFrame either way.
func TestRunFrameCommutesWithArrivalOrder(t *testing.T) {
	for _, commitFirst := range []bool{true, false} {
		name := "remote_commit_first"
		if !commitFirst {
			name = "remote_direction_first"
		}
		t.Run(name, func(t *testing.T) {
			s, remote, wire := newTestSession(t)
			if _, err := s.StartGame(); err != nil {
				t.Fatalf("start game failed: %v", err)
			}
			nextWireByte(t, wire)

			if _, err := s.SetDirection(game.Right); err != nil {
				t.Fatalf("set direction failed: %v", err)
			}
			nextWireByte(t, wire)

			commit := protocol.CommitFrame{FrameParity: protocol.FrameParity(1)}
			steer := protocol.SetDirection{FrameParity: protocol.FrameParity(1), Direction: game.Left}

			runFrames := 0
			if commitFirst {
				writePacket(t, remote, commit)
				writePacket(t, remote, steer)
			} else {
				writePacket(t, remote, steer)
				writePacket(t, remote, commit)
			}

			// The peer's steering packet always produces a notice; its lone
			// commit does not (the barrier is still open).
			n := nextNotice(t, s)
			if n.Err != nil {
				t.Fatalf("unexpected notice error: %v", n.Err)
			}
			runFrames += countRunFrames(n.Outcomes)

			outcomes, err := s.CommitFrame()
			if err != nil {
				t.Fatalf("commit failed: %v", err)
			}
			runFrames += countRunFrames(outcomes)

			// If the local commit raced ahead of the peer's, the release
			// arrives through a notice instead.
			if runFrames == 0 {
				n = nextNotice(t, s)
				if n.Err != nil {
					t.Fatalf("unexpected notice error: %v", n.Err)
				}
				runFrames += countRunFrames(n.Outcomes)
			}

			if runFrames != 1 {
				t.Fatalf("expected exactly one RunFrame, got %d", runFrames)
			}

			// And never a second release for the same frame.
			select {
			case n := <-s.Notices():
				if countRunFrames(n.Outcomes) > 0 {
					t.Fatal("frame released twice")
				}
			case <-time.After(100 * time.Millisecond):
			}
		})
	}
}

func TestQueuedDirectionAnnouncedAtNextFrameOnly(t *testing.T) {
	s, _, wire := newTestSession(t)
	if _, err := s.StartGame(); err != nil {
		t.Fatalf("start game failed: %v", err)
	}
	nextWireByte(t, wire)

	if _, err := s.CommitFrame(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	nextWireByte(t, wire) // the commit packet

	outcomes, err := s.SetDirection(game.Down)
	if err != nil {
		t.Fatalf("set direction failed: %v", err)
	}
	if len(outcomes) != 0 {
		t.Fatalf("post-commit steering must produce no outcome yet, got %+v", outcomes)
	}
	expectNoWireByte(t, wire)

	outcomes, err = s.StartNewFrame(2)
	if err != nil {
		t.Fatalf("start new frame failed: %v", err)
	}
	applied := 0
	for _, o := range outcomes {
		if c, ok := o.(PlayerControl); ok && c.Player == 0 && c.Direction == game.Down {
			applied++
		}
	}
	if applied != 1 {
		t.Fatalf("queued direction must apply exactly once, got %d in %+v", applied, outcomes)
	}

	pkt, err := protocol.Decode(nextWireByte(t, wire))
	if err != nil {
		t.Fatalf("undecodable announcement: %v", err)
	}
	ann := pkt.(protocol.SetDirection)
	if ann.Direction != game.Down || ann.FrameParity != protocol.FrameParity(2) {
		t.Fatalf("announcement should carry the queued heading for frame 2, got %+v", ann)
	}
}

// Scenario: the peer steers for the next frame before committing the current
// one; the control surfaces exactly once, after the frame boundary.
func TestEarlyRemoteSteeringSurfacesAfterFrameBoundary(t *testing.T) {
	s, remote, wire := newTestSession(t)
	if _, err := s.StartGame(); err != nil {
		t.Fatalf("start game failed: %v", err)
	}
	nextWireByte(t, wire)

	writePacket(t, remote, protocol.SetDirection{
		FrameParity: protocol.FrameParity(2),
		Direction:   game.Up,
	})

	// The early packet is buffered silently; nothing may surface yet.
	select {
	case n := <-s.Notices():
		t.Fatalf("early steering must not surface before the frame boundary: %+v", n)
	case <-time.After(50 * time.Millisecond):
	}

	outcomes, err := s.StartNewFrame(2)
	if err != nil {
		t.Fatalf("start new frame failed: %v", err)
	}
	found := 0
	for _, o := range outcomes {
		if c, ok := o.(PlayerControl); ok && c.Player == 1 && c.Direction == game.Up {
			found++
		}
	}
	if found != 1 {
		t.Fatalf("expected buffered remote control exactly once, got %+v", outcomes)
	}
}

func TestGoodByeSurfacesAsPoliteRemoteLeft(t *testing.T) {
	s, remote, wire := newTestSession(t)
	if _, err := s.StartGame(); err != nil {
		t.Fatalf("start game failed: %v", err)
	}
	nextWireByte(t, wire)

	if _, err := remote.Write([]byte{0b1000_0000}); err != nil {
		t.Fatalf("peer write failed: %v", err)
	}

	n := nextNotice(t, s)
	if n.Err != nil {
		t.Fatalf("goodbye is not an error: %v", n.Err)
	}
	if len(n.Outcomes) != 1 {
		t.Fatalf("expected one outcome, got %+v", n.Outcomes)
	}
	left, ok := n.Outcomes[0].(RemoteLeft)
	if !ok || !left.Politely {
		t.Fatalf("expected polite RemoteLeft, got %+v", n.Outcomes[0])
	}
}

func TestDisconnectSurfacesAsImpoliteRemoteLeft(t *testing.T) {
	s, remote, wire := newTestSession(t)
	if _, err := s.StartGame(); err != nil {
		t.Fatalf("start game failed: %v", err)
	}
	nextWireByte(t, wire)

	remote.Close()

	n := nextNotice(t, s)
	if len(n.Outcomes) != 1 {
		t.Fatalf("expected one outcome, got %+v", n.Outcomes)
	}
	left, ok := n.Outcomes[0].(RemoteLeft)
	if !ok || left.Politely {
		t.Fatalf("expected impolite RemoteLeft, got %+v", n.Outcomes[0])
	}
}

func TestUndecodableByteSurfacesAsTypedError(t *testing.T) {
	s, remote, wire := newTestSession(t)
	if _, err := s.StartGame(); err != nil {
		t.Fatalf("start game failed: %v", err)
	}
	nextWireByte(t, wire)

	// High bit set, low bits 00, not the goodbye byte.
	if _, err := remote.Write([]byte{0b1000_0100}); err != nil {
		t.Fatalf("peer write failed: %v", err)
	}

	n := nextNotice(t, s)
	var decodeErr *protocol.DecodeError
	if !errors.As(n.Err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", n.Err)
	}
}

func TestOutOfWindowPacketSurfacesAsTypedError(t *testing.T) {
	s, remote, wire := newTestSession(t)
	if _, err := s.StartGame(); err != nil {
		t.Fatalf("start game failed: %v", err)
	}
	nextWireByte(t, wire)

	writePacket(t, remote, protocol.CommitFrame{FrameParity: protocol.FrameParity(5)})

	n := nextNotice(t, s)
	var windowErr *FrameWindowError
	if !errors.As(n.Err, &windowErr) {
		t.Fatalf("expected FrameWindowError, got %v", n.Err)
	}
}

func TestExitSendsGoodBye(t *testing.T) {
	s, _, wire := newTestSession(t)
	if _, err := s.StartGame(); err != nil {
		t.Fatalf("start game failed: %v", err)
	}
	nextWireByte(t, wire)

	s.Exit()

	if b := nextWireByte(t, wire); b != 0b1000_0000 {
		t.Fatalf("expected goodbye byte, got 0x%02X", b)
	}
}
