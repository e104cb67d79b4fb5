package game

// Direction is one of the four cardinal movement directions.
type Direction uint8

const (
	Up Direction = iota
	Left
	Down
	Right
)

// Directions lists all cardinal directions in wire order.
var Directions = [4]Direction{Up, Left, Down, Right}

// directionVectors maps a Direction to its (dx, dy) step. The Y axis grows
// downward, matching terminal cell coordinates.
var directionVectors = [4][2]int{
	Up:    {0, -1},
	Left:  {-1, 0},
	Down:  {0, 1},
	Right: {1, 0},
}

// Vector returns the (dx, dy) step for the direction.
func (d Direction) Vector() (int, int) {
	v := directionVectors[d]
	return v[0], v[1]
}

// Valid reports whether d is one of the four cardinal directions.
func (d Direction) Valid() bool {
	return d <= Right
}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// String returns the lowercase name of the direction.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Left:
		return "left"
	case Down:
		return "down"
	case Right:
		return "right"
	default:
		return "invalid"
	}
}

// Point is a cell on the arena grid.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Translated returns the point one step away in the given direction.
func (p Point) Translated(d Direction) Point {
	dx, dy := d.Vector()
	return Point{X: p.X + dx, Y: p.Y + dy}
}
