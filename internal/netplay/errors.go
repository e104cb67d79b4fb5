package netplay

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"

	"github.com/kurve-project/kurve/internal/protocol"
)

// ErrRemoteClosed marks I/O failures caused by the peer closing or resetting
// the connection. It is a normal game-ending event, not a protocol failure:
// callers surface it as RemoteLeft{Politely: false}.
var ErrRemoteClosed = errors.New("remote peer closed the connection")

// ErrSessionClosed is returned by session operations after Exit.
var ErrSessionClosed = errors.New("session is closed")

// FrameWindowError reports a packet whose frame parity falls outside the
// {current, next} window and is not a stale duplicate of the previous frame.
// It means the peers' frame counters have drifted more than the protocol can
// express, which the session cannot recover from; the error is typed and
// returned to the driver rather than crashing the process.
type FrameWindowError struct {
	Parity uint8
	Frame  uint32
}

func (e *FrameWindowError) Error() string {
	return fmt.Sprintf("frame parity %d outside window {%d, %d} at frame %d",
		e.Parity, protocol.FrameParity(e.Frame), protocol.FrameParity(e.Frame+1), e.Frame)
}

// classifyIOError folds the zoo of "peer went away" errors into
// ErrRemoteClosed and leaves everything else untouched.
func classifyIOError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return ErrRemoteClosed
	}
	return err
}
