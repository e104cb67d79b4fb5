package spectate

import (
	"sync"

	"github.com/kurve-project/kurve/internal/events"
	"github.com/kurve-project/kurve/internal/game"
)

// matchState tracks the most recent match as seen from the bus.
type matchState struct {
	mu       sync.RWMutex
	started  bool
	finished bool
	mode     events.MatchMode
	players  []string
	winner   string
	snapshot *game.Snapshot
}

func (ms *matchState) start(payload events.MatchStartedPayload) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.started = true
	ms.finished = false
	ms.mode = payload.Mode
	ms.players = append([]string(nil), payload.Players...)
	ms.winner = ""
	ms.snapshot = nil
}

func (ms *matchState) advance(snapshot game.Snapshot) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.snapshot = &snapshot
}

func (ms *matchState) end(payload events.MatchEndedPayload) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.finished = true
	ms.winner = payload.Winner
}

// view returns a copy safe to marshal, or false when no match has started.
func (ms *matchState) view() (MatchView, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if !ms.started {
		return MatchView{}, false
	}

	status := "running"
	if ms.finished {
		status = "finished"
	}

	return MatchView{
		Status:   status,
		Mode:     string(ms.mode),
		Players:  append([]string(nil), ms.players...),
		Winner:   ms.winner,
		Snapshot: ms.snapshot,
	}, true
}
