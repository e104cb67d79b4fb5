package game

import "testing"

func singlePlayerGame(width, height int, spawn Spawn) *Game {
	p := NewPlayer("P1", spawn)
	return New(width, height, []*Player{p}, 1)
}

func TestRunFrameAdvancesTrailAndFrame(t *testing.T) {
	g := singlePlayerGame(10, 10, Spawn{Position: Point{X: 1, Y: 5}, Direction: Right})

	events := g.RunFrame()

	if got := g.Players[0].Head(); got != (Point{X: 2, Y: 5}) {
		t.Fatalf("expected head at (2,5), got %+v", got)
	}
	if len(g.Players[0].Trail) != 2 {
		t.Fatalf("expected trail of 2 cells, got %d", len(g.Players[0].Trail))
	}
	if g.Frame != 2 {
		t.Fatalf("expected frame 2 after one step, got %d", g.Frame)
	}
	// A lone survivor wins immediately; only the win event is expected.
	if len(events) != 1 || events[0].Kind != EventPlayerWon {
		t.Fatalf("expected single PlayerWon event, got %+v", events)
	}
}

func TestPlayerCrashesIntoRightWall(t *testing.T) {
	// Four-cell-wide arena: interior columns are 1 and 2. Starting at x=1
	// moving right, the head reaches x=2 on frame one (fine) and x=3 (the
	// wall) on frame two.
	g := singlePlayerGame(4, 10, Spawn{Position: Point{X: 1, Y: 5}, Direction: Right})

	g.RunFrame()
	if g.Players[0].Crashed {
		t.Fatal("player crashed one cell before the wall")
	}

	events := g.RunFrame()
	if !g.Players[0].Crashed {
		t.Fatal("player should have crashed into the right wall")
	}
	if !g.Over {
		t.Fatal("game should be over after the only player crashed")
	}
	var sawCrash, sawAllCrashed bool
	for _, ev := range events {
		switch ev.Kind {
		case EventPlayerCrashed:
			sawCrash = true
			if ev.Player != 0 {
				t.Fatalf("wrong player index in crash event: %d", ev.Player)
			}
		case EventEveryoneCrashed:
			sawAllCrashed = true
		}
	}
	if !sawCrash || !sawAllCrashed {
		t.Fatalf("expected PlayerCrashed and EveryoneCrashed, got %+v", events)
	}
}

func TestVacatedHeadCellIsNotACrash(t *testing.T) {
	// Moving straight ahead, the previous head becomes tail but the new head
	// never touches it. Turning back onto it must crash.
	g := singlePlayerGame(20, 20, Spawn{Position: Point{X: 5, Y: 5}, Direction: Right})

	g.RunFrame()
	if g.Players[0].Crashed {
		t.Fatal("player crashed while moving into open space")
	}

	// Head is at (6,5) with tail cell (5,5). A U-turn straight back lands on
	// the tail cell and must crash.
	g.Players[0].Direction = Left
	g.RunFrame()
	if !g.Players[0].Crashed {
		t.Fatal("player should crash when reversing onto its own tail")
	}
}

func TestSelfCrashExcludesOwnHead(t *testing.T) {
	// A tight clockwise loop: the head eventually lands on the trail cell
	// occupied three frames earlier.
	g := singlePlayerGame(20, 20, Spawn{Position: Point{X: 5, Y: 5}, Direction: Right})

	for _, dir := range []Direction{Right, Down, Left, Up} {
		g.Players[0].Direction = dir
		g.RunFrame()
	}
	if !g.Players[0].Crashed {
		t.Fatal("player should crash when closing a loop onto its own trail")
	}
}

func TestCrashIntoOtherPlayersTrail(t *testing.T) {
	p0 := NewPlayer("P1", Spawn{Position: Point{X: 3, Y: 5}, Direction: Right})
	p1 := NewPlayer("P2", Spawn{Position: Point{X: 4, Y: 4}, Direction: Down})
	g := New(20, 20, []*Player{p0, p1}, 1)

	// P2 steps onto (4,5); P1 steps onto (4,5) as well. Heads collide: both
	// see the other's full trail and crash.
	events := g.RunFrame()

	if !p0.Crashed || !p1.Crashed {
		t.Fatalf("expected head-on collision to crash both players, got p0=%v p1=%v",
			p0.Crashed, p1.Crashed)
	}
	last := events[len(events)-1]
	if last.Kind != EventEveryoneCrashed {
		t.Fatalf("expected EveryoneCrashed, got %+v", events)
	}
}

func TestWinnerDeclaredWhenOneSurvives(t *testing.T) {
	p0 := NewPlayer("Doomed", Spawn{Position: Point{X: 1, Y: 5}, Direction: Left})
	p1 := NewPlayer("Winner", Spawn{Position: Point{X: 5, Y: 5}, Direction: Right})
	g := New(20, 20, []*Player{p0, p1}, 1)

	events := g.RunFrame()

	if !g.Over {
		t.Fatal("game should be over")
	}
	last := events[len(events)-1]
	if last.Kind != EventPlayerWon || last.Player != 1 {
		t.Fatalf("expected player 1 to win, got %+v", events)
	}
	// Crashed trails stay on the board.
	if len(p0.Trail) != 2 {
		t.Fatalf("crashed player's trail should be intact, got %d cells", len(p0.Trail))
	}
}

func TestAutopilotTakesLastVacantDirection(t *testing.T) {
	// Player heading right with the wall directly ahead. Up, left and down
	// are all vacant; the scan order is up, left, down, right, so down wins.
	g := singlePlayerGame(10, 10, Spawn{Position: Point{X: 8, Y: 5}, Direction: Right})

	Autopilot(g, 0)

	if got := g.Players[0].Direction; got != Down {
		t.Fatalf("expected autopilot to settle on down, got %v", got)
	}
}

func TestAutopilotKeepsHeadingWhenClear(t *testing.T) {
	g := singlePlayerGame(10, 10, Spawn{Position: Point{X: 2, Y: 5}, Direction: Right})

	Autopilot(g, 0)

	if got := g.Players[0].Direction; got != Right {
		t.Fatalf("autopilot should not steer with open space ahead, got %v", got)
	}
}

func TestSpawnSlotsFaceInward(t *testing.T) {
	slots := SpawnSlots(25, 20)
	if slots[0].Position != (Point{X: 1, Y: 10}) || slots[0].Direction != Right {
		t.Fatalf("unexpected west spawn: %+v", slots[0])
	}
	if slots[1].Position != (Point{X: 23, Y: 10}) || slots[1].Direction != Left {
		t.Fatalf("unexpected east spawn: %+v", slots[1])
	}
}
