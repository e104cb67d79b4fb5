package game

// Autopilot steers a computer-controlled player. If the cell straight ahead
// is blocked it scans all four directions in wire order and takes the last
// vacant one; if nothing is vacant the heading is left alone and the player
// crashes next frame.
func Autopilot(g *Game, i PlayerIndex) {
	player := g.Players[i]
	head := player.Head()
	if g.IsVacant(head.Translated(player.Direction)) {
		return
	}
	for _, dir := range Directions {
		if g.IsVacant(head.Translated(dir)) {
			player.Direction = dir
		}
	}
}
