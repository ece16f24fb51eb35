package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mauv0809/ranking-tribble/internal/club"
	"github.com/mauv0809/ranking-tribble/internal/ranking"
)

const dateLayout = "2006-01-02"

// classify validates every row and matches it against the tenant's players.
func (i *Importer) classify(ctx context.Context, tenantID string, rows []Row) ([]Classification, error) {
	players, err := i.store.ListPlayers(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	out := make([]Classification, len(rows))
	for idx, row := range rows {
		out[idx] = classifyRow(row, players)
	}
	return out, nil
}

func classifyRow(row Row, players []club.Player) Classification {
	c := Classification{Line: row.Line, Row: row, State: StateUnresolved}

	parsed, err := validate(row)
	if err != nil {
		c.State = StateInvalid
		c.Reason = err.Error()
		return c
	}
	c.parsed = parsed

	level, found := findCandidates(row, players)
	c.Level = level
	switch {
	case len(found) == 0:
		c.Missing = missingFields(row)
		c.State = StateNewComplete
		if len(c.Missing) > 0 {
			c.State = StateIncomplete
		}
		c.Suggestion = &Resolution{Action: ActionCreateNew}

	case level != LevelName && len(found) == 1:
		p := found[0]
		if !parsed.category.Allows(p.Gender) {
			c.State = StateInvalid
			c.Reason = fmt.Sprintf("%v: player %s is %s, category is %s", ranking.ErrCategoryGender, p.Code, p.Gender, parsed.category)
			return c
		}
		c.State = StateMatchedExisting
		c.PlayerID = p.ID

	default:
		// Several strong matches, or any name match, need the operator.
		c.State = StateDuplicatePending
		c.Candidates = toCandidates(row, found)
		var same []club.Player
		for _, p := range found {
			if identical(row, p) {
				same = append(same, p)
			}
		}
		if len(same) == 1 {
			c.Suggestion = &Resolution{Action: ActionUseExisting, PlayerID: same[0].ID}
		}
	}
	return c
}

// validate checks the event fields of a row. Player fields are checked only
// when present; their absence makes a row incomplete, not invalid.
func validate(row Row) (parsedRow, error) {
	var p parsedRow
	invalid := func(err error) (parsedRow, error) {
		return parsedRow{}, fmt.Errorf("%w: %w", ErrInvalidRow, err)
	}

	if row.Tournament == "" {
		return invalid(fmt.Errorf("tournament_name is required"))
	}
	date, err := time.Parse(dateLayout, row.EventDate)
	if err != nil {
		return invalid(fmt.Errorf("event_date %q is not YYYY-MM-DD", row.EventDate))
	}
	p.date = date
	if p.category, err = ranking.ParseCategory(row.Category); err != nil {
		return invalid(err)
	}
	if p.position, err = ranking.ParsePosition(row.Position); err != nil {
		return invalid(err)
	}
	if p.tier, err = ranking.ParseTier(row.Tier); err != nil {
		return invalid(err)
	}
	if row.Gender != "" {
		if p.gender, err = ranking.ParseGender(row.Gender); err != nil {
			return invalid(err)
		}
		if !p.category.Allows(p.gender) {
			return invalid(fmt.Errorf("%w: %s in %s", ranking.ErrCategoryGender, p.gender, p.category))
		}
	}
	if row.Points != "" {
		n, err := strconv.Atoi(row.Points)
		if err != nil {
			return invalid(fmt.Errorf("points %q is not a whole number", row.Points))
		}
		p.points = &n
	}
	if _, err := ranking.AwardPoints(p.tier, p.position, p.points); err != nil {
		return invalid(err)
	}
	return p, nil
}

func missingFields(row Row) []string {
	var missing []string
	if row.PlayerName == "" {
		missing = append(missing, "player_name")
	}
	if row.Country == "" {
		missing = append(missing, "country")
	}
	if row.Gender == "" {
		missing = append(missing, "gender")
	}
	return missing
}

// normalizeGender returns the canonical gender tag or "" when unparseable.
func normalizeGender(s string) string {
	g, err := ranking.ParseGender(s)
	if err != nil {
		return ""
	}
	return string(g)
}

// newPlayer builds the player a row creates, applying operator overrides.
func newPlayer(tenantID string, row Row, o *Overrides) (*club.Player, error) {
	p := &club.Player{
		TenantID:         tenantID,
		Code:             row.PlayerCode,
		Name:             row.PlayerName,
		Country:          strings.ToUpper(row.Country),
		Email:            row.Email,
		ExternalRatingID: row.ExternalRatingID,
		DateOfBirth:      row.DateOfBirth,
	}
	gender := row.Gender
	if o != nil {
		if o.Name != "" {
			p.Name = o.Name
		}
		if o.Country != "" {
			p.Country = strings.ToUpper(o.Country)
		}
		if o.Gender != "" {
			gender = o.Gender
		}
		if o.Email != "" {
			p.Email = o.Email
		}
	}
	var missing []string
	if p.Name == "" {
		missing = append(missing, "player_name")
	}
	if p.Country == "" {
		missing = append(missing, "country")
	}
	g, err := ranking.ParseGender(gender)
	if err != nil {
		missing = append(missing, "gender")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrIncompletePlayer, strings.Join(missing, ", "))
	}
	p.Gender = g
	return p, nil
}

// identityKey groups rows of one batch that create the same new player. A
// row with a code is only ever the player holding that code.
func identityKey(p *club.Player) string {
	if p.Code != "" {
		return codeKey(p.Code)
	}
	return nameKey(p)
}

// identityKeys are all the keys a created player answers to later in the
// batch, so a codeless row reuses a player an earlier row created by code.
func identityKeys(p *club.Player) []string {
	keys := []string{nameKey(p)}
	if p.Code != "" {
		keys = append(keys, codeKey(p.Code))
	}
	return keys
}

func codeKey(code string) string {
	return "code:" + code
}

func nameKey(p *club.Player) string {
	return "name:" + normalizeName(p.Name) + "|" + strings.ToLower(p.Country) + "|" + string(p.Gender)
}
