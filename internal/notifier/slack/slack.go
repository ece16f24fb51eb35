package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ranking-tribble/internal/metrics"
	"github.com/mauv0809/ranking-tribble/internal/notifier"
	"github.com/mauv0809/ranking-tribble/internal/ranking"
	"github.com/slack-go/slack"
)

// Rows shown in a rankings message.
const topN = 10

// Row errors listed in an import summary before truncating.
const maxListedErrors = 5

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(ctx context.Context, message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendImportSummary(ctx context.Context, summary notifier.ImportSummary, dryRun bool) error {
	_, _, err := s.sendMessage(ctx, s.formatImportSummary(summary), dryRun)
	return err
}

func (s *Notifier) SendMergeSummary(ctx context.Context, summary notifier.MergeSummary, dryRun bool) error {
	_, _, err := s.sendMessage(ctx, s.formatMergeSummary(summary), dryRun)
	return err
}

func (s *Notifier) SendRankingsUpdate(ctx context.Context, title string, rows []ranking.Row, dryRun bool) error {
	_, _, err := s.sendMessage(ctx, s.formatRankings(title, rows), dryRun)
	return err
}

// FormatRankingsResponse formats a rankings message for a slash command response.
func (s *Notifier) FormatRankingsResponse(title string, rows []ranking.Row) (any, error) {
	return s.formatRankings(title, rows), nil
}

// FormatErrorResponse formats a plain error reply for a slash command response.
func (s *Notifier) FormatErrorResponse(text string) (any, error) {
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	), nil
}

func (s *Notifier) formatImportSummary(summary notifier.ImportSummary) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", ":inbox_tray: Results import finished", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	details := fmt.Sprintf("File: %s\nOperator: %s\nRows: %d | Imported: %d | Failed: %d",
		summary.Filename, summary.Operator, summary.Total, summary.Succeeded, summary.Failed)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", details, false, false), nil, nil))

	if len(summary.Errors) > 0 {
		var sb strings.Builder
		sb.WriteString("Failed rows:")
		for i, rowErr := range summary.Errors {
			if i == maxListedErrors {
				fmt.Fprintf(&sb, "\n• …and %d more", len(summary.Errors)-maxListedErrors)
				break
			}
			fmt.Fprintf(&sb, "\n• line %d (%s): %s", rowErr.Line, rowErr.Player, rowErr.Reason)
		}
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", sb.String(), false, false), nil, nil))
	}

	contextText := slack.NewTextBlockObject("mrkdwn", "Batch `"+summary.BatchID+"`", false, false)
	blocks = append(blocks, slack.NewContextBlock("", contextText))

	return slack.NewBlockMessage(blocks...)
}

func (s *Notifier) formatMergeSummary(summary notifier.MergeSummary) slack.Message {
	text := fmt.Sprintf("*%s* was merged into *%s*: %d events and %d points transferred.",
		summary.DuplicateName, summary.PrimaryName, summary.EventsTransferred, summary.PointsTransferred)
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}

func (s *Notifier) formatRankings(title string, rows []ranking.Row) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", ":trophy: "+title, true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(rows) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No ranked players yet.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, row := range rows {
		if i == topN {
			break
		}
		var medal string
		switch row.Rank {
		case 1:
			medal = ":first_place_medal: "
		case 2:
			medal = ":second_place_medal: "
		case 3:
			medal = ":third_place_medal: "
		}
		playerText := fmt.Sprintf("%d. %s%s (%s)\n> Points: %d | Results: %d", row.Rank, medal, row.Name, row.Country, row.TotalPoints, row.Results)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}

	if len(rows) > topN {
		more := slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("%d more ranked players", len(rows)-topN), false, false)
		blocks = append(blocks, slack.NewContextBlock("", more))
	}

	return slack.NewBlockMessage(blocks...)
}
