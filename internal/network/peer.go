// Package network establishes the TCP connection between the two peers of a
// match and runs the opening handshake on it.
package network

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kurve-project/kurve/internal/game"
	"github.com/kurve-project/kurve/internal/protocol"
)

// PeerMatch is an established connection to the other player, with the
// board and slot assignment both sides agreed on. The host always plays
// slot 0 spawning west, the joiner slot 1 spawning east.
type PeerMatch struct {
	Conn        net.Conn
	LocalName   string
	RemoteName  string
	Width       int
	Height      int
	LocalIndex  game.PlayerIndex
	RemoteIndex game.PlayerIndex
}

// Host listens on addr, accepts the first peer, and completes the handshake.
// The board size is dictated by the host.
func Host(ctx context.Context, addr string, width, height int, name string) (*PeerMatch, error) {
	// SO_REUSEADDR allows immediate rebinding after a previous match.
	lc := ReuseAddrListenConfig()
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	defer listener.Close()

	log.Info().Str("addr", listener.Addr().String()).Msg("waiting for peer")

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	conn, err := listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to accept peer: %w", err)
	}

	remoteName, err := protocol.HostHandshake(conn, width, height, name)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake with %s failed: %w", conn.RemoteAddr(), err)
	}

	log.Info().
		Str("remote", conn.RemoteAddr().String()).
		Str("remote_name", remoteName).
		Msg("peer connected")

	return &PeerMatch{
		Conn:        conn,
		LocalName:   name,
		RemoteName:  remoteName,
		Width:       width,
		Height:      height,
		LocalIndex:  0,
		RemoteIndex: 1,
	}, nil
}

// Join dials the host at addr and completes the handshake. The host's
// reply carries the board size.
func Join(ctx context.Context, addr string, timeout time.Duration, name string) (*PeerMatch, error) {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to host %s: %w", addr, err)
	}

	info, err := protocol.JoinHandshake(conn, name)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake with %s failed: %w", addr, err)
	}

	log.Info().
		Str("host", addr).
		Str("remote_name", info.RemoteName).
		Int("width", info.Width).
		Int("height", info.Height).
		Msg("joined host")

	return &PeerMatch{
		Conn:        conn,
		LocalName:   name,
		RemoteName:  info.RemoteName,
		Width:       info.Width,
		Height:      info.Height,
		LocalIndex:  1,
		RemoteIndex: 0,
	}, nil
}
