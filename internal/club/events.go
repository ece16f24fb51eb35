package club

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mauv0809/ranking-tribble/internal/ranking"
)

const eventColumns = `id, tenant_id, name, event_date, tier, category, visibility, import_batch_id, created_at`

// GetOrCreateEvent returns the event identified by (tenant, name, date,
// category), creating it when absent. The bool reports whether it was created.
// Concurrent callers converge on the same row through the unique key.
func (s *store) GetOrCreateEvent(ctx context.Context, e *Event) (*Event, bool, error) {
	id := uuid.NewString()
	visibility := e.Visibility
	if visibility == "" {
		visibility = VisibilityPublic
	}
	date := ranking.Day(e.Date).Format(dateLayout)
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO events (id, tenant_id, name, event_date, tier, category, visibility, import_batch_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id, name, event_date, category) DO NOTHING
	`, id, e.TenantID, e.Name, date, e.Tier, e.Category, visibility, nullString(e.ImportBatchID), time.Now().UTC().Unix())
	if err != nil {
		return nil, false, err
	}

	row := s.q.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE tenant_id = ? AND name = ? AND event_date = ? AND category = ?`,
		e.TenantID, e.Name, date, e.Category)
	got, err := scanEvent(row)
	if err != nil {
		return nil, false, err
	}
	return got, got.ID == id, nil
}

func (s *store) GetEvent(ctx context.Context, tenantID, eventID string) (*Event, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE tenant_id = ? AND id = ?`, tenantID, eventID)
	return scanEvent(row)
}

// ListEvents returns the tenant's events, newest first.
func (s *store) ListEvents(ctx context.Context, tenantID string) ([]Event, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+eventColumns+` FROM events WHERE tenant_id = ? ORDER BY event_date DESC, name`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// SetEventVisibility hides or republishes an event. Hidden events keep their
// results but drop out of every ranking.
func (s *store) SetEventVisibility(ctx context.Context, tenantID, eventID string, v Visibility) error {
	res, err := s.q.ExecContext(ctx, `UPDATE events SET visibility = ? WHERE tenant_id = ? AND id = ?`, v, tenantID, eventID)
	return expectAffected(res, err)
}

func (s *store) DeleteEvent(ctx context.Context, tenantID, eventID string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM events WHERE tenant_id = ? AND id = ?`, tenantID, eventID)
	return expectAffected(res, err)
}

// InsertResult stores a result. A player may hold one result per event.
func (s *store) InsertResult(ctx context.Context, r *Result) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = time.Now().UTC().Truncate(time.Second)
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO results (id, event_id, player_id, position, points_awarded, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.EventID, r.PlayerID, r.Position, r.PointsAwarded, r.CreatedAt.Unix())
	if isUniqueViolation(err, "results.") {
		return ErrDuplicateResult
	}
	return err
}

// UpdateResult corrects the position and points snapshot of a result of
// eventID.
func (s *store) UpdateResult(ctx context.Context, tenantID, eventID, resultID string, position ranking.Position, points int) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE results SET position = ?, points_awarded = ?
		WHERE id = ? AND event_id = ? AND event_id IN (SELECT id FROM events WHERE tenant_id = ?)
	`, position, points, resultID, eventID, tenantID)
	return expectAffected(res, err)
}

// ListResultsForPlayer returns all of a player's results, hidden events
// included, newest first.
func (s *store) ListResultsForPlayer(ctx context.Context, tenantID, playerID string) ([]PlayerResult, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT r.id, r.event_id, r.player_id, r.position, r.points_awarded, r.created_at,
			e.id, e.tenant_id, e.name, e.event_date, e.tier, e.category, e.visibility, e.import_batch_id, e.created_at
		FROM results r
		JOIN events e ON e.id = r.event_id
		WHERE e.tenant_id = ? AND r.player_id = ?
		ORDER BY e.event_date DESC, e.name
	`, tenantID, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []PlayerResult{}
	for rows.Next() {
		var pr PlayerResult
		var resultCreated, eventCreated int64
		var date string
		var batchID sql.NullString
		if err := rows.Scan(&pr.ID, &pr.EventID, &pr.PlayerID, &pr.Position, &pr.PointsAwarded, &resultCreated,
			&pr.Event.ID, &pr.Event.TenantID, &pr.Event.Name, &date, &pr.Event.Tier, &pr.Event.Category,
			&pr.Event.Visibility, &batchID, &eventCreated); err != nil {
			return nil, err
		}
		pr.CreatedAt = time.Unix(resultCreated, 0).UTC()
		pr.Event.CreatedAt = time.Unix(eventCreated, 0).UTC()
		pr.Event.ImportBatchID = batchID.String
		if pr.Event.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, err
		}
		results = append(results, pr)
	}
	return results, rows.Err()
}

// ListScoredResults returns the scored results of public events in the given
// categories, or in every category when none are given.
func (s *store) ListScoredResults(ctx context.Context, tenantID string, categories ...ranking.Category) ([]ranking.Result, error) {
	query := `
		SELECT p.id, p.name, p.country, e.category, r.points_awarded, e.event_date
		FROM results r
		JOIN events e ON e.id = r.event_id
		JOIN players p ON p.id = r.player_id
		WHERE e.tenant_id = ? AND e.visibility = ?`
	args := []any{tenantID, VisibilityPublic}
	if len(categories) > 0 {
		query += ` AND e.category IN (` + placeholders(len(categories)) + `)`
		args = append(args, ToAnySlice(categories)...)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []ranking.Result{}
	for rows.Next() {
		var r ranking.Result
		var date string
		if err := rows.Scan(&r.Player.ID, &r.Player.Name, &r.Player.Country, &r.Category, &r.Points, &date); err != nil {
			return nil, err
		}
		if r.EventDate, err = time.Parse(dateLayout, date); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ReassignResults moves every result of one player to another and returns
// how many moved.
func (s *store) ReassignResults(ctx context.Context, tenantID, fromPlayerID, toPlayerID string) (int64, error) {
	res, err := s.q.ExecContext(ctx, `
		UPDATE results SET player_id = ?
		WHERE player_id = ? AND event_id IN (SELECT id FROM events WHERE tenant_id = ?)
	`, toPlayerID, fromPlayerID, tenantID)
	if isUniqueViolation(err, "results.") {
		return 0, ErrDuplicateResult
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanEvent(scanner interface{ Scan(...any) error }) (*Event, error) {
	var e Event
	var date string
	var batchID sql.NullString
	var createdAt int64
	err := scanner.Scan(&e.ID, &e.TenantID, &e.Name, &date, &e.Tier, &e.Category, &e.Visibility, &batchID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if e.Date, err = time.Parse(dateLayout, date); err != nil {
		return nil, err
	}
	e.ImportBatchID = batchID.String
	e.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &e, nil
}
