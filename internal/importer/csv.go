package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Columns is the fixed import layout, in template order.
var Columns = []string{
	"player_name",
	"player_code",
	"country",
	"gender",
	"category",
	"finishing_position",
	"event_date",
	"tournament_name",
	"tier",
}

// Optional columns read when the header carries them.
const (
	colEmail       = "email"
	colRatingID    = "external_rating_id"
	colDateOfBirth = "date_of_birth"
	colPoints      = "points"
)

// WriteTemplate writes the header-only import template.
func WriteTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// ParseCSV reads rows by header name. Column order is free and blank lines
// are skipped.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		index[col] = i
	}
	var missing []string
	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	rows := []Row{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		if blank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		rows = append(rows, Row{
			Line:             line,
			PlayerName:       get("player_name"),
			PlayerCode:       get("player_code"),
			Country:          get("country"),
			Gender:           get("gender"),
			Category:         get("category"),
			Position:         get("finishing_position"),
			EventDate:        get("event_date"),
			Tournament:       get("tournament_name"),
			Tier:             get("tier"),
			Email:            get(colEmail),
			ExternalRatingID: get(colRatingID),
			DateOfBirth:      get(colDateOfBirth),
			Points:           get(colPoints),
		})
	}
	return rows, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
