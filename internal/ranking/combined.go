package ranking

import (
	"fmt"
	"time"
)

// CombinedRanking sums a gender's doubles and mixed doubles totals.
type CombinedRanking struct {
	Gender Gender    `json:"gender"`
	AsOf   time.Time `json:"as_of"`
	Rows   []Row     `json:"rows"`
}

// ComputeCombined merges two already computed rankings of the same view. It
// never stores its totals; callers derive it on every read.
func ComputeCombined(gender Gender, doubles, mixed Ranking) (CombinedRanking, error) {
	if !gender.Valid() {
		return CombinedRanking{}, fmt.Errorf("%w: %q", ErrInvalidGender, gender)
	}
	if doubles.Category != DoublesFor(gender) {
		return CombinedRanking{}, fmt.Errorf("%w: want %s, got %s", ErrCategoryMismatch, DoublesFor(gender), doubles.Category)
	}
	if mixed.Category != MixedFor(gender) {
		return CombinedRanking{}, fmt.Errorf("%w: want %s, got %s", ErrCategoryMismatch, MixedFor(gender), mixed.Category)
	}
	if !doubles.AsOf.Equal(mixed.AsOf) {
		return CombinedRanking{}, fmt.Errorf("%w: as of %s and %s", ErrCategoryMismatch, doubles.AsOf.Format(time.DateOnly), mixed.AsOf.Format(time.DateOnly))
	}

	byPlayer := make(map[string]*Row)
	add := func(rows []Row) {
		for _, r := range rows {
			row, ok := byPlayer[r.PlayerID]
			if !ok {
				row = &Row{PlayerID: r.PlayerID, Name: r.Name, Country: r.Country}
				byPlayer[r.PlayerID] = row
			}
			row.TotalPoints += r.TotalPoints
			row.Results += r.Results
		}
	}
	add(doubles.Rows)
	add(mixed.Rows)

	rows := make([]Row, 0, len(byPlayer))
	for _, row := range byPlayer {
		if row.TotalPoints == 0 {
			continue
		}
		rows = append(rows, *row)
	}
	assignRanks(rows)
	return CombinedRanking{Gender: gender, AsOf: doubles.AsOf, Rows: rows}, nil
}
