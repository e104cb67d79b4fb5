package game

// Snapshot is a copyable view of the match for observers (the spectator
// server, the history recorder). Trails are copied so a snapshot stays
// valid while the simulation keeps appending.
type Snapshot struct {
	Width   int              `json:"width"`
	Height  int              `json:"height"`
	Frame   uint32           `json:"frame"`
	Over    bool             `json:"over"`
	Players []PlayerSnapshot `json:"players"`
}

// PlayerSnapshot is one player's state inside a Snapshot.
type PlayerSnapshot struct {
	Name      string    `json:"name"`
	Trail     []Point   `json:"trail"`
	Direction Direction `json:"direction"`
	Crashed   bool      `json:"crashed"`
}

// Snapshot copies the current match state.
func (g *Game) Snapshot() Snapshot {
	players := make([]PlayerSnapshot, len(g.Players))
	for i, p := range g.Players {
		trail := make([]Point, len(p.Trail))
		copy(trail, p.Trail)
		players[i] = PlayerSnapshot{
			Name:      p.Name,
			Trail:     trail,
			Direction: p.Direction,
			Crashed:   p.Crashed,
		}
	}
	return Snapshot{
		Width:   g.Width,
		Height:  g.Height,
		Frame:   g.Frame,
		Over:    g.Over,
		Players: players,
	}
}
