package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Handshake wire format, big-endian, joiner speaks first:
//
//	joiner -> host: [name length:1][name bytes...]
//	host -> joiner: [width:2][height:2][name length:1][name bytes...]
//
// The joiner adopts the host's board size. Runs once, before any control
// message is exchanged.

// MaxNameLength bounds the display name on the wire; longer names are
// truncated by the writer.
const MaxNameLength = 255

// GameInfo is what a joining peer learns from the host's welcome.
type GameInfo struct {
	Width      int
	Height     int
	RemoteName string
}

// HostHandshake runs the host side of the handshake on rw: it reads the
// joiner's hello, then answers with the board size and the host's name.
// Returns the joiner's display name.
func HostHandshake(rw io.ReadWriter, width, height int, name string) (string, error) {
	remoteName, err := readName(rw)
	if err != nil {
		return "", fmt.Errorf("failed to read joiner hello: %w", err)
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint16(width))
	binary.Write(&buf, binary.BigEndian, uint16(height))
	writeName(&buf, name)
	if _, err := rw.Write(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to send host welcome: %w", err)
	}

	return remoteName, nil
}

// JoinHandshake runs the joining side of the handshake on rw: it announces
// the local name, then reads the board size and host name from the welcome.
func JoinHandshake(rw io.ReadWriter, name string) (GameInfo, error) {
	var buf bytes.Buffer
	writeName(&buf, name)
	if _, err := rw.Write(buf.Bytes()); err != nil {
		return GameInfo{}, fmt.Errorf("failed to send joiner hello: %w", err)
	}

	var width, height uint16
	if err := binary.Read(rw, binary.BigEndian, &width); err != nil {
		return GameInfo{}, fmt.Errorf("failed to read board width: %w", err)
	}
	if err := binary.Read(rw, binary.BigEndian, &height); err != nil {
		return GameInfo{}, fmt.Errorf("failed to read board height: %w", err)
	}
	if width == 0 || height == 0 {
		return GameInfo{}, fmt.Errorf("host announced degenerate board size %dx%d", width, height)
	}

	remoteName, err := readName(rw)
	if err != nil {
		return GameInfo{}, fmt.Errorf("failed to read host name: %w", err)
	}

	return GameInfo{
		Width:      int(width),
		Height:     int(height),
		RemoteName: remoteName,
	}, nil
}

// writeName appends a length-prefixed UTF-8 name to buf.
// Format: [length:1][name bytes...]
func writeName(buf *bytes.Buffer, name string) {
	data := []byte(name)
	if len(data) > MaxNameLength {
		data = data[:MaxNameLength]
	}
	buf.WriteByte(byte(len(data)))
	buf.Write(data)
}

// readName reads a length-prefixed UTF-8 name.
func readName(r io.Reader) (string, error) {
	var length uint8
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return "", err
	}
	if length == 0 {
		return "", nil
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
