// Package ui renders the arena in the terminal and turns key presses into
// game input.
package ui

import (
	"fmt"

	"github.com/nsf/termbox-go"

	"github.com/kurve-project/kurve/internal/game"
)

// PlayerAttrs are the trail colors assigned to player slots in order.
var PlayerAttrs = []termbox.Attribute{
	termbox.ColorBlue,
	termbox.ColorGreen,
	termbox.ColorMagenta,
	termbox.ColorCyan,
}

// Terminal draws the arena with termbox. It owns the terminal between Open
// and Close; nothing else may write to stdout in that window.
type Terminal struct {
	width      int
	height     int
	banner     string
	bannerAttr termbox.Attribute
	frame      uint32
}

// Open claims the terminal and returns a renderer for a width x height
// board.
func Open(width, height int) (*Terminal, error) {
	if err := termbox.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	termbox.SetInputMode(termbox.InputEsc)
	termbox.HideCursor()

	return &Terminal{
		width:      width,
		height:     height,
		bannerAttr: termbox.ColorWhite,
	}, nil
}

// Close restores the terminal.
func (t *Terminal) Close() {
	termbox.Close()
}

// Size returns the current terminal dimensions.
func Size() (int, int, error) {
	if err := termbox.Init(); err != nil {
		return 0, 0, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	w, h := termbox.Size()
	termbox.Close()
	return w, h, nil
}

// SetBanner replaces the text shown in the top border.
func (t *Terminal) SetBanner(attr termbox.Attribute, banner string) {
	t.bannerAttr = attr
	t.banner = banner
}

// SetFrame updates the frame counter shown in the bottom border.
func (t *Terminal) SetFrame(frame uint32) {
	t.frame = frame
}

// Draw renders the border, banner, and every trail, then flips the buffer.
func (t *Terminal) Draw(g *game.Game) error {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

	t.drawBorder()

	for i, player := range g.Players {
		attr := PlayerAttrs[i%len(PlayerAttrs)]
		for _, point := range player.Trail {
			termbox.SetCell(point.X, point.Y, '#', attr, termbox.ColorDefault)
		}
	}

	if err := termbox.Flush(); err != nil {
		return fmt.Errorf("failed to flush terminal: %w", err)
	}
	return nil
}

func (t *Terminal) drawBorder() {
	top := fmt.Sprintf("+-- %s ", t.banner)
	bottom := fmt.Sprintf("+-- press q to exit -- frame %d ", t.frame)

	t.drawBorderRow(0, top, t.bannerAttr)
	t.drawBorderRow(t.height-1, bottom, termbox.ColorDefault)

	for y := 1; y < t.height-1; y++ {
		termbox.SetCell(0, y, '|', termbox.ColorDefault, termbox.ColorDefault)
		termbox.SetCell(t.width-1, y, '|', termbox.ColorDefault, termbox.ColorDefault)
	}
}

// drawBorderRow writes label into a horizontal border, padding with dashes.
// The label is clipped when the board is narrower than the text.
func (t *Terminal) drawBorderRow(y int, label string, attr termbox.Attribute) {
	x := 0
	for _, r := range label {
		if x >= t.width-1 {
			break
		}
		cellAttr := termbox.ColorDefault
		if x >= 4 {
			cellAttr = attr
		}
		termbox.SetCell(x, y, r, cellAttr, termbox.ColorDefault)
		x++
	}
	for ; x < t.width-1; x++ {
		termbox.SetCell(x, y, '-', termbox.ColorDefault, termbox.ColorDefault)
	}
	termbox.SetCell(t.width-1, y, '+', termbox.ColorDefault, termbox.ColorDefault)
}
