package notifier

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ranking-tribble/internal/ranking"
)

// Noop logs notifications instead of sending them. It is used when no Slack
// token is configured.
type Noop struct{}

var _ Notifier = Noop{}

func (Noop) SendImportSummary(_ context.Context, s ImportSummary, _ bool) error {
	log.Info("Notifications disabled, import summary", "batch", s.BatchID, "succeeded", s.Succeeded, "failed", s.Failed)
	return nil
}

func (Noop) SendMergeSummary(_ context.Context, s MergeSummary, _ bool) error {
	log.Info("Notifications disabled, merge summary", "primary", s.PrimaryName, "duplicate", s.DuplicateName)
	return nil
}

func (Noop) SendRankingsUpdate(_ context.Context, title string, rows []ranking.Row, _ bool) error {
	log.Info("Notifications disabled, rankings update", "title", title, "rows", len(rows))
	return nil
}

func (Noop) FormatRankingsResponse(title string, rows []ranking.Row) (any, error) {
	return map[string]any{"title": title, "rows": rows}, nil
}

func (Noop) FormatErrorResponse(text string) (any, error) {
	return map[string]string{"text": text}, nil
}
