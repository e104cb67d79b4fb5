package ui

import (
	"github.com/nsf/termbox-go"

	"github.com/kurve-project/kurve/internal/game"
)

// KeyboardControls maps key presses to directions for one player.
type KeyboardControls struct {
	keys  [4]termbox.Key
	runes [4]rune
}

// ArrowControls steers with the arrow keys.
func ArrowControls() KeyboardControls {
	return KeyboardControls{
		keys: [4]termbox.Key{
			termbox.KeyArrowUp,
			termbox.KeyArrowLeft,
			termbox.KeyArrowDown,
			termbox.KeyArrowRight,
		},
	}
}

// WASDControls steers with w, a, s, d.
func WASDControls() KeyboardControls {
	return KeyboardControls{
		runes: [4]rune{'w', 'a', 's', 'd'},
	}
}

// ControlsByName resolves a configured control scheme name, defaulting to
// WASD.
func ControlsByName(name string) KeyboardControls {
	if name == "arrows" {
		return ArrowControls()
	}
	return WASDControls()
}

// Handle translates a key event into a direction, or false when the event
// is not bound.
func (kc KeyboardControls) Handle(ev termbox.Event) (game.Direction, bool) {
	for i, d := range game.Directions {
		if ev.Ch != 0 {
			if kc.runes[i] != 0 && ev.Ch == kc.runes[i] {
				return d, true
			}
		} else if kc.keys[i] != 0 && ev.Key == kc.keys[i] {
			return d, true
		}
	}
	return 0, false
}

// IsQuit reports whether the event asks to leave the game.
func IsQuit(ev termbox.Event) bool {
	if ev.Type != termbox.EventKey {
		return false
	}
	return ev.Ch == 'q' || ev.Key == termbox.KeyCtrlC || ev.Key == termbox.KeyEsc
}

// PollEvents forwards termbox events into out until the terminal is closed.
// Run it in its own goroutine.
func PollEvents(out chan<- termbox.Event) {
	for {
		ev := termbox.PollEvent()
		if ev.Type == termbox.EventInterrupt || ev.Type == termbox.EventError {
			return
		}
		select {
		case out <- ev:
		default:
		}
	}
}
