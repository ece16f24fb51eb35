package leaderboard

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/mauv0809/ranking-tribble/internal/ranking"
)

// ExportColumns is the fixed rankings export layout.
var ExportColumns = []string{"rank", "name", "country", "points"}

// WriteRankingsCSV writes ranked rows in export layout.
func WriteRankingsCSV(w io.Writer, rows []ranking.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{strconv.Itoa(r.Rank), r.Name, r.Country, strconv.Itoa(r.TotalPoints)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
