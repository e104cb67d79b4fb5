// Package protocol implements the kurve wire protocol: the single-byte
// lockstep control messages exchanged every frame, and the one-shot
// handshake that precedes a session. Control messages are fixed at one byte
// so no framing is needed beyond the byte boundary.
package protocol

import (
	"fmt"

	"github.com/kurve-project/kurve/internal/game"
)

// FrameWindow is the modulus applied to frame numbers on the wire. Frames
// that are FrameWindow or more apart cannot be told from each other; the
// per-frame round-trip pacing of the protocol keeps the peers within one
// frame of each other, far inside the window.
const FrameWindow = 32

// FrameParity compresses a frame number into its wire representation.
func FrameParity(frame uint32) uint8 {
	return uint8(frame % FrameWindow)
}

// Packet is one decoded control message. Exactly three kinds exist:
// SetDirection, CommitFrame and GoodBye.
type Packet interface {
	isPacket()
}

// SetDirection announces the sender's current heading for the frame with
// the given parity. It doubles as a liveness signal at every frame start.
type SetDirection struct {
	FrameParity uint8
	Direction   game.Direction
}

// CommitFrame declares that the sender has no more input to contribute for
// the frame with the given parity.
type CommitFrame struct {
	FrameParity uint8
}

// GoodBye announces an orderly departure.
type GoodBye struct{}

func (SetDirection) isPacket() {}
func (CommitFrame) isPacket()  {}
func (GoodBye) isPacket()      {}

// Wire layout (W = FrameWindow = 32):
//
//	1000_0000 = GoodBye
//	1fffff11  = CommitFrame(frame parity fffff)
//	0fffffdd  = SetDirection(frame parity fffff, direction dd)
//	            dd: 00=up 01=left 10=down 11=right
const (
	goodByeByte   = 0b1000_0000
	kindBit       = 0b1000_0000
	parityMask    = 0b0111_1100
	parityShift   = 2
	directionMask = 0b0000_0011
	commitLowBits = 0b0000_0011
)

// DecodeError reports a byte that matches no control message.
type DecodeError struct {
	Byte byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("undecodable wire byte 0x%02X", e.Byte)
}

// Decode parses one wire byte. It never drops bytes silently: anything that
// matches no message layout is returned as a *DecodeError.
func Decode(b byte) (Packet, error) {
	if b == goodByeByte {
		return GoodBye{}, nil
	}

	parity := (b & parityMask) >> parityShift

	if b&kindBit != 0 {
		// CommitFrame carries fixed low bits so that a corrupt byte with
		// the high bit set is distinguishable from a real commit.
		if b&directionMask != commitLowBits {
			return nil, &DecodeError{Byte: b}
		}
		return CommitFrame{FrameParity: parity}, nil
	}

	return SetDirection{
		FrameParity: parity,
		Direction:   game.Direction(b & directionMask),
	}, nil
}

// Encode serializes a control message into its single wire byte. Encoding
// is total for valid inputs; a direction outside the four cardinal values
// is a programming error and panics.
func Encode(p Packet) byte {
	switch pkt := p.(type) {
	case GoodBye:
		return goodByeByte
	case CommitFrame:
		return kindBit | pkt.FrameParity<<parityShift | commitLowBits
	case SetDirection:
		if !pkt.Direction.Valid() {
			panic(fmt.Sprintf("protocol: cannot encode direction %d", pkt.Direction))
		}
		return pkt.FrameParity<<parityShift | byte(pkt.Direction)
	default:
		panic(fmt.Sprintf("protocol: unknown packet type %T", p))
	}
}
