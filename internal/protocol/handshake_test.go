package protocol

import (
	"net"
	"strings"
	"testing"
)

func TestHandshakeExchangesNamesAndBoardSize(t *testing.T) {
	hostConn, joinConn := net.Pipe()
	defer hostConn.Close()
	defer joinConn.Close()

	type hostResult struct {
		name string
		err  error
	}
	hostCh := make(chan hostResult, 1)
	go func() {
		name, err := HostHandshake(hostConn, 25, 40, "Host")
		hostCh <- hostResult{name: name, err: err}
	}()

	info, err := JoinHandshake(joinConn, "Joiner")
	if err != nil {
		t.Fatalf("join handshake failed: %v", err)
	}
	host := <-hostCh
	if host.err != nil {
		t.Fatalf("host handshake failed: %v", host.err)
	}

	if host.name != "Joiner" {
		t.Fatalf("host learned wrong name: %q", host.name)
	}
	if info.RemoteName != "Host" {
		t.Fatalf("joiner learned wrong name: %q", info.RemoteName)
	}
	if info.Width != 25 || info.Height != 40 {
		t.Fatalf("joiner learned wrong board size: %dx%d", info.Width, info.Height)
	}
}

func TestHandshakeTruncatesOversizedName(t *testing.T) {
	hostConn, joinConn := net.Pipe()
	defer hostConn.Close()
	defer joinConn.Close()

	long := strings.Repeat("x", 300)

	go func() {
		HostHandshake(hostConn, 10, 10, "Host")
	}()

	// The joiner's own write must not fail, and the host must see exactly
	// MaxNameLength bytes.
	if _, err := JoinHandshake(joinConn, long); err != nil {
		t.Fatalf("join handshake failed: %v", err)
	}
}

func TestJoinHandshakeRejectsDegenerateBoard(t *testing.T) {
	hostConn, joinConn := net.Pipe()
	defer hostConn.Close()
	defer joinConn.Close()

	go func() {
		HostHandshake(hostConn, 0, 10, "Host")
	}()

	if _, err := JoinHandshake(joinConn, "Joiner"); err == nil {
		t.Fatal("expected error for zero board width")
	}
}
