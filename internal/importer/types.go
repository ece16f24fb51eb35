package importer

import (
	"errors"
	"time"

	"github.com/mauv0809/ranking-tribble/internal/club"
	"github.com/mauv0809/ranking-tribble/internal/metrics"
	"github.com/mauv0809/ranking-tribble/internal/notifier"
	"github.com/mauv0809/ranking-tribble/internal/pubsub"
	"github.com/mauv0809/ranking-tribble/internal/ranking"
)

var (
	ErrInvalidRow        = errors.New("invalid import row")
	ErrMissingColumns    = errors.New("csv is missing required columns")
	ErrUnresolvedRows    = errors.New("rows need a resolution before commit")
	ErrInvalidResolution = errors.New("invalid resolution")
	ErrStaleResolution   = errors.New("resolution refers to a player that no longer exists")
	ErrIncompletePlayer  = errors.New("player is missing required fields")
)

// Importer reconciles CSV rows against the club's players and commits their
// results.
type Importer struct {
	store    club.ClubStore
	notifier notifier.Notifier
	metrics  metrics.Metrics
	pubsub   pubsub.PubSubClient
}

// Row is one CSV data row as read. Line is the 1-based line in the file.
type Row struct {
	Line             int    `json:"line"`
	PlayerName       string `json:"player_name"`
	PlayerCode       string `json:"player_code"`
	Country          string `json:"country"`
	Gender           string `json:"gender"`
	Category         string `json:"category"`
	Position         string `json:"finishing_position"`
	EventDate        string `json:"event_date"`
	Tournament       string `json:"tournament_name"`
	Tier             string `json:"tier"`
	Email            string `json:"email,omitempty"`
	ExternalRatingID string `json:"external_rating_id,omitempty"`
	DateOfBirth      string `json:"date_of_birth,omitempty"`
	Points           string `json:"points,omitempty"`
}

// Batch identifies the file being imported.
type Batch struct {
	Filename string `json:"filename"`
	Operator string `json:"operator"`
}

// State is the reconciliation state of a row.
type State string

const (
	StateUnresolved       State = "unresolved"
	StateMatchedExisting  State = "matched_existing"
	StateNewComplete      State = "new_complete"
	StateIncomplete       State = "incomplete"
	StateDuplicatePending State = "duplicate_pending"
	StateInvalid          State = "invalid"
)

// Flagged reports whether the row needs an operator resolution.
func (s State) Flagged() bool {
	return s == StateIncomplete || s == StateDuplicatePending
}

// MatchLevel names the identity signal that produced the candidates.
type MatchLevel string

const (
	LevelNone     MatchLevel = ""
	LevelCode     MatchLevel = "player_code"
	LevelRatingID MatchLevel = "external_rating_id"
	LevelEmail    MatchLevel = "email"
	LevelName     MatchLevel = "name"
)

// Candidate is an existing player a row may refer to.
type Candidate struct {
	PlayerID         string  `json:"player_id"`
	Code             string  `json:"code"`
	Name             string  `json:"name"`
	Country          string  `json:"country"`
	Gender           string  `json:"gender"`
	Email            string  `json:"email,omitempty"`
	ExternalRatingID string  `json:"external_rating_id,omitempty"`
	Confidence       float64 `json:"confidence"`
}

// Action is the operator's decision for a flagged row.
type Action string

const (
	ActionCreateNew         Action = "create_new"
	ActionUseExisting       Action = "use_existing"
	ActionMergeWithExisting Action = "merge_with_existing"
)

// Resolution settles one row. Overrides apply to create_new only.
type Resolution struct {
	Action    Action     `json:"action"`
	PlayerID  string     `json:"player_id,omitempty"`
	Overrides *Overrides `json:"overrides,omitempty"`
}

// Overrides supplies player fields missing from the CSV.
type Overrides struct {
	Name    string `json:"name,omitempty"`
	Country string `json:"country,omitempty"`
	Gender  string `json:"gender,omitempty"`
	Email   string `json:"email,omitempty"`
}

// Classification is the dry-run verdict for one row.
type Classification struct {
	Line       int         `json:"line"`
	Row        Row         `json:"row"`
	State      State       `json:"state"`
	Level      MatchLevel  `json:"match_level,omitempty"`
	PlayerID   string      `json:"player_id,omitempty"`
	Candidates []Candidate `json:"candidates,omitempty"`
	Missing    []string    `json:"missing,omitempty"`
	Reason     string      `json:"reason,omitempty"`
	Suggestion *Resolution `json:"suggestion,omitempty"`

	parsed parsedRow
}

// Report is returned by Start and Commit. Committed is false when Start
// stopped for resolutions.
type Report struct {
	BatchID    string           `json:"batch_id,omitempty"`
	Committed  bool             `json:"committed"`
	DryRun     bool             `json:"dry_run,omitempty"`
	Total      int              `json:"total"`
	Succeeded  int              `json:"succeeded"`
	Failed     int              `json:"failed"`
	Duplicates []Classification `json:"duplicates"`
	Incomplete []Classification `json:"incomplete"`
	Errors     []club.RowError  `json:"errors"`
}

// parsedRow holds the validated event fields of a row.
type parsedRow struct {
	gender   ranking.Gender
	category ranking.Category
	position ranking.Position
	tier     ranking.Tier
	points   *int
	date     time.Time
}
