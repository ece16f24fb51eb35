package notifier

import (
	"context"

	"github.com/mauv0809/ranking-tribble/internal/club"
	"github.com/mauv0809/ranking-tribble/internal/ranking"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For administrators
	SendImportSummary(ctx context.Context, summary ImportSummary, dryRun bool) error
	SendMergeSummary(ctx context.Context, summary MergeSummary, dryRun bool) error
	// For ranking changes
	SendRankingsUpdate(ctx context.Context, title string, rows []ranking.Row, dryRun bool) error

	// For formatting responses for slash commands
	FormatRankingsResponse(title string, rows []ranking.Row) (any, error)
	FormatErrorResponse(text string) (any, error)
}

// ImportSummary describes a committed import batch.
type ImportSummary struct {
	BatchID   string
	Filename  string
	Operator  string
	Total     int
	Succeeded int
	Failed    int
	Errors    []club.RowError
}

// MergeSummary describes a completed player merge.
type MergeSummary struct {
	PrimaryName       string
	DuplicateName     string
	EventsTransferred int
	PointsTransferred int
}
