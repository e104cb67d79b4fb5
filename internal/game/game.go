// Package game implements the deterministic per-frame simulation for kurve:
// trail advancement, wall and trail collision, and win detection. The
// simulation is driven entirely by externally supplied per-player directions;
// it knows nothing about input devices or the network.
package game

// PlayerIndex identifies a slot in the Game's player array.
type PlayerIndex = int

// Player is one trail on the arena. The trail only ever grows; a crashed
// player's trail stays on the board as a permanent obstacle.
type Player struct {
	Name      string    `json:"name"`
	Trail     []Point   `json:"trail"`
	Direction Direction `json:"direction"`
	Crashed   bool      `json:"crashed"`
}

// NewPlayer creates a player with a single-cell trail at the spawn position.
func NewPlayer(name string, spawn Spawn) *Player {
	return &Player{
		Name:      name,
		Trail:     []Point{spawn.Position},
		Direction: spawn.Direction,
	}
}

// Head returns the most recently occupied cell.
func (p *Player) Head() Point {
	return p.Trail[len(p.Trail)-1]
}

// tail is the trail excluding the head. A player can never crash into its
// own head, only into its historical tail.
func (p *Player) tail() []Point {
	return p.Trail[:len(p.Trail)-1]
}

func (p *Player) advanceOneStep() {
	p.Trail = append(p.Trail, p.Head().Translated(p.Direction))
}

// Spawn is a starting cell and initial heading.
type Spawn struct {
	Position  Point
	Direction Direction
}

// SpawnSlots returns the four canonical spawn positions for a board of the
// given size: west and east facing inward (the two networked slots), then
// top and bottom (extra offline slots).
func SpawnSlots(width, height int) [4]Spawn {
	return [4]Spawn{
		{Position: Point{X: 1, Y: height / 2}, Direction: Right},
		{Position: Point{X: width - 2, Y: height / 2}, Direction: Left},
		{Position: Point{X: width / 2, Y: 1}, Direction: Down},
		{Position: Point{X: width / 2, Y: height - 2}, Direction: Up},
	}
}

// EventKind discriminates frame events.
type EventKind uint8

const (
	EventPlayerCrashed EventKind = iota
	EventPlayerWon
	EventEveryoneCrashed
)

// Event is something observable that happened during a frame.
type Event struct {
	Kind   EventKind
	Player PlayerIndex // set for PlayerCrashed and PlayerWon
}

// Game holds the full simulation state for one match.
type Game struct {
	Width   int
	Height  int
	Players []*Player
	Frame   uint32
	Over    bool
}

// New creates a game on a width x height board. The outermost cell ring is
// the wall; players move strictly inside it.
func New(width, height int, players []*Player, frame uint32) *Game {
	return &Game{
		Width:   width,
		Height:  height,
		Players: players,
		Frame:   frame,
	}
}

// RunFrame advances every non-crashed player one step, runs crash detection,
// and determines whether the match ended. The frame counter advances as the
// last step regardless of outcome.
func (g *Game) RunFrame() []Event {
	var events []Event

	for _, p := range g.Players {
		if !p.Crashed {
			p.advanceOneStep()
		}
	}

	for i, p := range g.Players {
		if !p.Crashed && g.isPlayerCrashing(i) {
			p.Crashed = true
			events = append(events, Event{Kind: EventPlayerCrashed, Player: i})
		}
	}

	survivor := -1
	survivors := 0
	for i, p := range g.Players {
		if !p.Crashed {
			survivor = i
			survivors++
		}
	}
	switch survivors {
	case 0:
		events = append(events, Event{Kind: EventEveryoneCrashed})
		g.Over = true
	case 1:
		events = append(events, Event{Kind: EventPlayerWon, Player: survivor})
		g.Over = true
	}

	g.Frame++

	return events
}

// isWithinBounds reports whether p is strictly inside the arena walls.
func (g *Game) isWithinBounds(p Point) bool {
	return p.X > 0 && p.Y > 0 && p.X < g.Width-1 && p.Y < g.Height-1
}

// IsVacant reports whether a cell is inside the arena and free of every
// player's trail. Used by the autopilot to probe candidate moves.
func (g *Game) IsVacant(p Point) bool {
	if !g.isWithinBounds(p) {
		return false
	}
	for _, player := range g.Players {
		if containsPoint(player.Trail, p) {
			return false
		}
	}
	return true
}

func (g *Game) isPlayerCrashing(i PlayerIndex) bool {
	head := g.Players[i].Head()
	if !g.isWithinBounds(head) {
		return true
	}
	for j, player := range g.Players {
		obstacle := player.Trail
		if j == i {
			obstacle = player.tail()
		}
		if containsPoint(obstacle, head) {
			return true
		}
	}
	return false
}

func containsPoint(cells []Point, p Point) bool {
	for _, c := range cells {
		if c == p {
			return true
		}
	}
	return false
}
