package club

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mauv0809/ranking-tribble/internal/ranking"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so the same store code runs
// inside and outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// store handles all database operations for the club.
type store struct {
	db   *sql.DB
	q    dbtx
	mu   *sync.Mutex
	inTx bool
}

// Player is a competitor registered with a club. Optional text fields are
// empty when unset.
type Player struct {
	ID               string         `json:"id"`
	TenantID         string         `json:"tenant_id"`
	Code             string         `json:"code"`
	Name             string         `json:"name"`
	Country          string         `json:"country"`
	Gender           ranking.Gender `json:"gender"`
	Email            string         `json:"email,omitempty"`
	DateOfBirth      string         `json:"date_of_birth,omitempty"`
	ExternalRatingID string         `json:"external_rating_id,omitempty"`
	AlternateNames   []string       `json:"alternate_names,omitempty"`
	AvatarRef        string         `json:"avatar_ref,omitempty"`
	UserID           string         `json:"user_id,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Ref is the player data shown on ranking rows.
func (p Player) Ref() ranking.PlayerRef {
	return ranking.PlayerRef{ID: p.ID, Name: p.Name, Country: p.Country}
}

type Visibility string

const (
	VisibilityPublic Visibility = "public"
	VisibilityHidden Visibility = "hidden"
)

func ParseVisibility(s string) (Visibility, error) {
	switch v := Visibility(strings.ToLower(strings.TrimSpace(s))); v {
	case VisibilityPublic, VisibilityHidden:
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadVisibility, s)
}

// Event is one tournament instance in one category.
type Event struct {
	ID            string           `json:"id"`
	TenantID      string           `json:"tenant_id"`
	Name          string           `json:"name"`
	Date          time.Time        `json:"date"`
	Tier          ranking.Tier     `json:"tier"`
	Category      ranking.Category `json:"category"`
	Visibility    Visibility       `json:"visibility"`
	ImportBatchID string           `json:"import_batch_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Result is one player's outcome in one event. PointsAwarded is the snapshot
// taken when the result was written.
type Result struct {
	ID            string           `json:"id"`
	EventID       string           `json:"event_id"`
	PlayerID      string           `json:"player_id"`
	Position      ranking.Position `json:"position"`
	PointsAwarded int              `json:"points_awarded"`
	CreatedAt     time.Time        `json:"created_at"`
}

// PlayerResult is a result together with its event.
type PlayerResult struct {
	Result
	Event Event `json:"event"`
}

// RowError is one failed import row.
type RowError struct {
	Line   int    `json:"line"`
	Player string `json:"player"`
	Reason string `json:"reason"`
}

// ImportBatch records one bulk import.
type ImportBatch struct {
	ID        string     `json:"id"`
	TenantID  string     `json:"tenant_id"`
	Filename  string     `json:"filename"`
	Operator  string     `json:"operator"`
	Total     int        `json:"total"`
	Succeeded int        `json:"succeeded"`
	Failed    int        `json:"failed"`
	Errors    []RowError `json:"errors"`
	CreatedAt time.Time  `json:"created_at"`
}

const dateLayout = "2006-01-02"
