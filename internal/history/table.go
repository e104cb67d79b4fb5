package history

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// WriteTable renders match records as a table, newest first.
func WriteTable(w io.Writer, records []Record) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"ID", "Played", "Mode", "Players", "Winner", "Frames", "Duration"})
	tw.SetBorder(true)
	tw.SetAutoWrapText(false)

	for _, rec := range records {
		winner := rec.Winner
		if winner == "" {
			winner = "draw"
		}
		tw.Append([]string{
			fmt.Sprintf("%d", rec.ID),
			rec.PlayedAt.Local().Format("2006-01-02 15:04"),
			rec.Mode,
			strings.Join(rec.Players, ", "),
			winner,
			fmt.Sprintf("%d", rec.Frames),
			rec.Duration.Round(100 * time.Millisecond).String(),
		})
	}

	tw.Render()
}
