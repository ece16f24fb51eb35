package club

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const codeAttempts = 3

// New creates a new ClubStore.
func New(db *sql.DB) ClubStore {
	return &store{
		db: db,
		q:  db,
		mu: &sync.Mutex{},
	}
}

// WithTx serializes write transactions so concurrent imports and merges never
// interleave. A nested call joins the outer transaction.
func (s *store) WithTx(ctx context.Context, fn func(tx ClubStore) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&store{db: s.db, q: tx, mu: s.mu, inTx: true}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("Failed to roll back transaction", "error", rbErr)
		}
		return err
	}
	return tx.Commit()
}

// CreatePlayer inserts a new player. A missing code is generated from the
// country and retried on collision.
func (s *store) CreatePlayer(ctx context.Context, p *Player) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Second)
	p.CreatedAt, p.UpdatedAt = now, now
	if p.AlternateNames == nil {
		p.AlternateNames = []string{}
	}
	altJSON, err := json.Marshal(p.AlternateNames)
	if err != nil {
		return err
	}

	generated := p.Code == ""
	for attempt := 0; ; attempt++ {
		if generated {
			p.Code = GenerateCode(p.Country)
		}
		_, err = s.q.ExecContext(ctx, `
			INSERT INTO players (id, tenant_id, code, name, country, gender, email, date_of_birth, external_rating_id, alternate_names_json, avatar_ref, user_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, p.TenantID, p.Code, p.Name, p.Country, p.Gender, nullString(p.Email), nullString(p.DateOfBirth),
			nullString(p.ExternalRatingID), string(altJSON), nullString(p.AvatarRef), nullString(p.UserID), now.Unix(), now.Unix())
		switch {
		case err == nil:
			return nil
		case isUniqueViolation(err, "players.code"):
			if generated && attempt+1 < codeAttempts {
				log.Warn("Generated player code collided, retrying", "code", p.Code)
				continue
			}
			return fmt.Errorf("%w: %s", ErrCodeTaken, p.Code)
		case isUniqueViolation(err, "players.user_id"):
			return ErrAccountLinked
		default:
			return err
		}
	}
}

// GenerateCode builds a player code such as "GBR-3F9A1C".
func GenerateCode(country string) string {
	prefix := strings.ToUpper(strings.TrimSpace(country))
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	if prefix == "" {
		prefix = "PLY"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return prefix + "-" + suffix
}

const playerColumns = `id, tenant_id, code, name, country, gender, email, date_of_birth, external_rating_id, alternate_names_json, avatar_ref, user_id, created_at, updated_at`

func (s *store) GetPlayer(ctx context.Context, tenantID, playerID string) (*Player, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE tenant_id = ? AND id = ?`, tenantID, playerID)
	return scanPlayer(row)
}

func (s *store) GetPlayerByCode(ctx context.Context, tenantID, code string) (*Player, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE tenant_id = ? AND code = ?`, tenantID, code)
	return scanPlayer(row)
}

// ListPlayers returns every player of the tenant ordered by name.
func (s *store) ListPlayers(ctx context.Context, tenantID string) ([]Player, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+playerColumns+` FROM players WHERE tenant_id = ? ORDER BY name COLLATE NOCASE, id`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

// UpdatePlayer writes the mutable fields of a player. The code never changes.
func (s *store) UpdatePlayer(ctx context.Context, p *Player) error {
	if p.AlternateNames == nil {
		p.AlternateNames = []string{}
	}
	altJSON, err := json.Marshal(p.AlternateNames)
	if err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := s.q.ExecContext(ctx, `
		UPDATE players SET name = ?, country = ?, gender = ?, email = ?, date_of_birth = ?, external_rating_id = ?,
			alternate_names_json = ?, avatar_ref = ?, user_id = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?
	`, p.Name, p.Country, p.Gender, nullString(p.Email), nullString(p.DateOfBirth), nullString(p.ExternalRatingID),
		string(altJSON), nullString(p.AvatarRef), nullString(p.UserID), p.UpdatedAt.Unix(), p.TenantID, p.ID)
	if isUniqueViolation(err, "players.user_id") {
		return ErrAccountLinked
	}
	return expectAffected(res, err)
}

// DeletePlayer removes a player and, through the foreign key, their results.
func (s *store) DeletePlayer(ctx context.Context, tenantID, playerID string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM players WHERE tenant_id = ? AND id = ?`, tenantID, playerID)
	return expectAffected(res, err)
}

// Clear removes all data of a tenant.
func (s *store) Clear(ctx context.Context, tenantID string) error {
	return s.WithTx(ctx, func(tx ClubStore) error {
		q := tx.(*store).q
		for _, stmt := range []string{
			`DELETE FROM events WHERE tenant_id = ?`,
			`DELETE FROM import_batches WHERE tenant_id = ?`,
			`DELETE FROM players WHERE tenant_id = ?`,
		} {
			if _, err := q.ExecContext(ctx, stmt, tenantID); err != nil {
				return err
			}
		}
		log.Info("Cleared tenant data", "tenant", tenantID)
		return nil
	})
}

// scanPlayer is a helper function to scan a single player row.
func scanPlayer(scanner interface{ Scan(...any) error }) (*Player, error) {
	var p Player
	var email, dob, ratingID, avatar, userID sql.NullString
	var altJSON string
	var createdAt, updatedAt int64
	err := scanner.Scan(&p.ID, &p.TenantID, &p.Code, &p.Name, &p.Country, &p.Gender, &email, &dob, &ratingID,
		&altJSON, &avatar, &userID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Email = email.String
	p.DateOfBirth = dob.String
	p.ExternalRatingID = ratingID.String
	p.AvatarRef = avatar.String
	p.UserID = userID.String
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	p.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	p.AlternateNames = []string{}
	if altJSON != "" {
		if err := json.Unmarshal([]byte(altJSON), &p.AlternateNames); err != nil {
			log.Error("Failed to unmarshal alternate_names_json", "error", err, "playerID", p.ID)
		}
	}
	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func expectAffected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ToAnySlice converts a slice of any type to a slice of empty interfaces.
func ToAnySlice[T any](s []T) []any {
	result := make([]any, len(s))
	for i, v := range s {
		result[i] = v
	}
	return result
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
