// Package events defines the match lifecycle events published by the driver
// loop and the asynchronous bus that carries them to observers (the history
// recorder, the spectator server).
package events

import (
	"time"

	"github.com/kurve-project/kurve/internal/game"
)

// EventType discriminates events on the bus.
type EventType string

const (
	EventMatchStarted  EventType = "match_started"
	EventFrameAdvanced EventType = "frame_advanced"
	EventPlayerCrashed EventType = "player_crashed"
	EventMatchEnded    EventType = "match_ended"
	EventRemoteLeft    EventType = "remote_left"
	EventShutdown      EventType = "shutdown"
)

// Event is one message on the bus.
type Event struct {
	Type    EventType
	Source  string
	Payload any
}

// MatchMode is how the local process participates in a match.
type MatchMode string

const (
	ModeHost     MatchMode = "host"
	ModeJoin     MatchMode = "join"
	ModeOffline  MatchMode = "offline"
	ModeHeadless MatchMode = "headless"
)

// MatchStartedPayload accompanies EventMatchStarted.
type MatchStartedPayload struct {
	Mode      MatchMode
	Players   []string
	Width     int
	Height    int
	StartedAt time.Time
}

// FrameAdvancedPayload accompanies EventFrameAdvanced.
type FrameAdvancedPayload struct {
	Snapshot game.Snapshot
}

// PlayerCrashedPayload accompanies EventPlayerCrashed.
type PlayerCrashedPayload struct {
	Player game.PlayerIndex
	Name   string
	Frame  uint32
}

// MatchEndedPayload accompanies EventMatchEnded. Winner is empty when
// everyone crashed.
type MatchEndedPayload struct {
	Mode     MatchMode
	Players  []string
	Winner   string
	Frames   uint32
	Duration time.Duration
}

// RemoteLeftPayload accompanies EventRemoteLeft.
type RemoteLeftPayload struct {
	Politely bool
}
