package ranking

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// CurrentWindowDays is the trailing window of the current ranking.
const CurrentWindowDays = 365

// PlayerRef is the player data a ranking row displays.
type PlayerRef struct {
	ID      string
	Name    string
	Country string
}

// Result is one stored, already scored result as seen by the aggregator.
type Result struct {
	Player    PlayerRef
	Category  Category
	Points    int
	EventDate time.Time
}

// Row is one ranked player.
type Row struct {
	PlayerID    string `json:"player_id"`
	Name        string `json:"name"`
	Country     string `json:"country"`
	TotalPoints int    `json:"total_points"`
	Results     int    `json:"results"`
	Rank        int    `json:"rank"`
}

// Ranking is the ranked output for one category and view. WindowDays is zero
// for the lifetime view.
type Ranking struct {
	Category   Category  `json:"category"`
	AsOf       time.Time `json:"as_of"`
	WindowDays int       `json:"window_days"`
	Rows       []Row     `json:"rows"`
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// InWindow reports whether eventDate falls in [asOf-windowDays, asOf], both
// ends inclusive, compared by calendar day.
func InWindow(eventDate, asOf time.Time, windowDays int) bool {
	end := Day(asOf)
	start := end.AddDate(0, 0, -windowDays)
	d := Day(eventDate)
	return !d.Before(start) && !d.After(end)
}

// ComputeRankings sums the points of every player with results in category.
// A positive windowDays restricts the sum to the rolling window ending at
// asOf; zero or less computes the lifetime view and ignores asOf.
func ComputeRankings(results []Result, category Category, asOf time.Time, windowDays int) ([]Row, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	byPlayer := make(map[string]*Row)
	for _, r := range results {
		if r.Category != category {
			continue
		}
		if windowDays > 0 && !InWindow(r.EventDate, asOf, windowDays) {
			continue
		}
		row, ok := byPlayer[r.Player.ID]
		if !ok {
			row = &Row{PlayerID: r.Player.ID, Name: r.Player.Name, Country: r.Player.Country}
			byPlayer[r.Player.ID] = row
		}
		row.TotalPoints += r.Points
		row.Results++
	}

	rows := make([]Row, 0, len(byPlayer))
	for _, row := range byPlayer {
		rows = append(rows, *row)
	}
	assignRanks(rows)
	return rows, nil
}

// assignRanks sorts rows by total descending, breaking ties by name and then
// id, and applies standard competition ranking (1, 1, 3).
func assignRanks(rows []Row) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalPoints != rows[j].TotalPoints {
			return rows[i].TotalPoints > rows[j].TotalPoints
		}
		ni, nj := strings.ToLower(rows[i].Name), strings.ToLower(rows[j].Name)
		if ni != nj {
			return ni < nj
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})

	for i := range rows {
		if i > 0 && rows[i].TotalPoints == rows[i-1].TotalPoints {
			rows[i].Rank = rows[i-1].Rank
		} else {
			rows[i].Rank = i + 1
		}
	}
}
