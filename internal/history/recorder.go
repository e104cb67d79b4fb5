package history

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kurve-project/kurve/internal/events"
	"github.com/kurve-project/kurve/internal/util"
)

// Recorder persists finished matches as they are announced on the bus.
type Recorder struct {
	store  *Store
	logger zerolog.Logger
}

// NewRecorder creates a Recorder writing to store and subscribes it to bus.
func NewRecorder(store *Store, bus *events.Bus) *Recorder {
	r := &Recorder{
		store:  store,
		logger: util.ComponentLogger("history"),
	}
	bus.Subscribe(events.EventMatchEnded, "history-recorder", r.onMatchEnded)
	return r
}

func (r *Recorder) onMatchEnded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.MatchEndedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for %s", event.Payload, event.Type)
	}

	id, err := r.store.Insert(Record{
		Mode:     string(payload.Mode),
		Players:  payload.Players,
		Winner:   payload.Winner,
		Frames:   payload.Frames,
		Duration: payload.Duration,
		PlayedAt: time.Now(),
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to record match")
		return err
	}

	r.logger.Info().
		Int64("id", id).
		Str("winner", payload.Winner).
		Uint32("frames", payload.Frames).
		Msg("match recorded")
	return nil
}
