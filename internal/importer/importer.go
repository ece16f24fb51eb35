package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ranking-tribble/internal/club"
	"github.com/mauv0809/ranking-tribble/internal/metrics"
	"github.com/mauv0809/ranking-tribble/internal/notifier"
	"github.com/mauv0809/ranking-tribble/internal/pubsub"
	"github.com/mauv0809/ranking-tribble/internal/ranking"
)

// New creates a new Importer.
func New(store club.ClubStore, notifier notifier.Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Importer {
	return &Importer{
		store:    store,
		notifier: notifier,
		metrics:  metrics,
		pubsub:   pubsub,
	}
}

// Start is the dry-run pass. When any row is a duplicate or incomplete it
// writes nothing and returns the rows needing resolution; otherwise it
// commits straight away.
func (i *Importer) Start(ctx context.Context, tenantID string, batch Batch, rows []Row, dryRun bool) (Report, error) {
	classes, err := i.classify(ctx, tenantID, rows)
	if err != nil {
		return Report{}, err
	}

	report := newReport(classes)
	if len(report.Duplicates) > 0 || len(report.Incomplete) > 0 {
		log.Info("Import needs resolutions", "tenant", tenantID, "file", batch.Filename,
			"duplicates", len(report.Duplicates), "incomplete", len(report.Incomplete))
		return report, nil
	}
	return i.commit(ctx, tenantID, batch, classes, nil, dryRun)
}

// Commit is the write pass. Every duplicate or incomplete row needs a
// resolution keyed by its line; resolutions on other rows override their
// automatic outcome.
func (i *Importer) Commit(ctx context.Context, tenantID string, batch Batch, rows []Row, resolutions map[int]Resolution, dryRun bool) (Report, error) {
	classes, err := i.classify(ctx, tenantID, rows)
	if err != nil {
		return Report{}, err
	}
	if err := checkResolutions(classes, resolutions); err != nil {
		return newReport(classes), err
	}
	return i.commit(ctx, tenantID, batch, classes, resolutions, dryRun)
}

func newReport(classes []Classification) Report {
	report := Report{
		Total:      len(classes),
		Duplicates: []Classification{},
		Incomplete: []Classification{},
		Errors:     []club.RowError{},
	}
	for _, c := range classes {
		switch c.State {
		case StateDuplicatePending:
			report.Duplicates = append(report.Duplicates, c)
		case StateIncomplete:
			report.Incomplete = append(report.Incomplete, c)
		case StateInvalid:
			report.Errors = append(report.Errors, club.RowError{Line: c.Line, Player: c.Row.PlayerName, Reason: c.Reason})
		}
	}
	return report
}

func checkResolutions(classes []Classification, resolutions map[int]Resolution) error {
	lines := make(map[int]bool, len(classes))
	var unresolved []string
	for _, c := range classes {
		lines[c.Line] = true
		if _, ok := resolutions[c.Line]; c.State.Flagged() && !ok {
			unresolved = append(unresolved, fmt.Sprint(c.Line))
		}
	}
	for line, r := range resolutions {
		if !lines[line] {
			return fmt.Errorf("%w: no row on line %d", ErrInvalidResolution, line)
		}
		switch r.Action {
		case ActionCreateNew:
		case ActionUseExisting, ActionMergeWithExisting:
			if r.PlayerID == "" {
				return fmt.Errorf("%w: line %d: %s needs a player_id", ErrInvalidResolution, line, r.Action)
			}
		default:
			return fmt.Errorf("%w: line %d: unknown action %q", ErrInvalidResolution, line, r.Action)
		}
	}
	if len(unresolved) > 0 {
		return fmt.Errorf("%w: lines %s", ErrUnresolvedRows, strings.Join(unresolved, ", "))
	}
	return nil
}

func (i *Importer) commit(ctx context.Context, tenantID string, batch Batch, classes []Classification, resolutions map[int]Resolution, dryRun bool) (Report, error) {
	report := newReport(classes)
	report.Committed = true
	report.DryRun = dryRun
	report.Duplicates = []Classification{}
	report.Incomplete = []Classification{}

	if dryRun {
		for _, c := range classes {
			if c.State == StateInvalid {
				report.Failed++
				continue
			}
			res, hasRes := resolutions[c.Line]
			log.Info("[Dry Run] Would import row", "line", c.Line, "player", c.Row.PlayerName, "state", c.State,
				"resolution", res.Action, "resolved", hasRes, "event", c.Row.Tournament, "category", c.parsed.category)
			report.Succeeded++
		}
		return report, nil
	}

	record := &club.ImportBatch{
		TenantID: tenantID,
		Filename: batch.Filename,
		Operator: batch.Operator,
		Total:    len(classes),
	}
	if err := i.store.CreateImportBatch(ctx, record); err != nil {
		return Report{}, fmt.Errorf("create import batch: %w", err)
	}
	report.BatchID = record.ID
	report.Errors = []club.RowError{}

	created := make(map[string]string)
	categories := make(map[ranking.Category]bool)
	for _, c := range classes {
		if c.State == StateInvalid {
			report.fail(c, c.Reason)
			i.metrics.IncImportRows(metrics.OutcomeFailed)
			continue
		}
		var res *Resolution
		if r, ok := resolutions[c.Line]; ok {
			res = &r
		}

		var keys []string
		var playerID string
		err := i.store.WithTx(ctx, func(tx club.ClubStore) error {
			var err error
			keys, playerID, err = i.commitRow(ctx, tx, tenantID, record.ID, c, res, created)
			return err
		})
		if err != nil {
			log.Warn("Import row failed", "line", c.Line, "player", c.Row.PlayerName, "error", err)
			report.fail(c, err.Error())
			i.metrics.IncImportRows(metrics.OutcomeFailed)
			continue
		}
		for _, key := range keys {
			if _, ok := created[key]; !ok {
				created[key] = playerID
			}
		}
		report.Succeeded++
		categories[c.parsed.category] = true
		i.metrics.IncImportRows(metrics.OutcomeSucceeded)
	}

	record.Succeeded = report.Succeeded
	record.Failed = report.Failed
	record.Errors = report.Errors
	if err := i.store.UpdateImportBatch(ctx, record); err != nil {
		return report, fmt.Errorf("update import batch: %w", err)
	}
	log.Info("Import committed", "tenant", tenantID, "batch", record.ID, "total", record.Total,
		"succeeded", record.Succeeded, "failed", record.Failed)

	i.announce(ctx, record, categories)
	return report, nil
}

func (r *Report) fail(c Classification, reason string) {
	r.Failed++
	r.Errors = append(r.Errors, club.RowError{Line: c.Line, Player: c.Row.PlayerName, Reason: reason})
}

// commitRow writes one row inside tx. It returns the identity keys and id
// of a player it created so later rows of the batch reuse them.
func (i *Importer) commitRow(ctx context.Context, tx club.ClubStore, tenantID, batchID string, c Classification, res *Resolution, created map[string]string) ([]string, string, error) {
	player, keys, err := resolvePlayer(ctx, tx, tenantID, c, res, created)
	if err != nil {
		return nil, "", err
	}
	if !c.parsed.category.Allows(player.Gender) {
		return nil, "", fmt.Errorf("%w: player %s is %s, category is %s", ranking.ErrCategoryGender, player.Code, player.Gender, c.parsed.category)
	}

	event, _, err := tx.GetOrCreateEvent(ctx, &club.Event{
		TenantID:      tenantID,
		Name:          c.Row.Tournament,
		Date:          c.parsed.date,
		Tier:          c.parsed.tier,
		Category:      c.parsed.category,
		ImportBatchID: batchID,
	})
	if err != nil {
		return nil, "", fmt.Errorf("event: %w", err)
	}
	if event.Tier != c.parsed.tier {
		return nil, "", fmt.Errorf("%w: %s is %s", club.ErrTierMismatch, event.Name, event.Tier)
	}

	points, err := ranking.AwardPoints(c.parsed.tier, c.parsed.position, c.parsed.points)
	if err != nil {
		return nil, "", err
	}
	if err := tx.InsertResult(ctx, &club.Result{
		EventID:       event.ID,
		PlayerID:      player.ID,
		Position:      c.parsed.position,
		PointsAwarded: points,
	}); err != nil {
		return nil, "", err
	}
	return keys, player.ID, nil
}

// resolvePlayer turns a classified row into a concrete player, creating or
// updating it as the resolution says. Keys are set for created players.
func resolvePlayer(ctx context.Context, tx club.ClubStore, tenantID string, c Classification, res *Resolution, created map[string]string) (*club.Player, []string, error) {
	if res != nil && (res.Action == ActionUseExisting || res.Action == ActionMergeWithExisting) {
		p, err := tx.GetPlayer(ctx, tenantID, res.PlayerID)
		if errors.Is(err, club.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: %s", ErrStaleResolution, res.PlayerID)
		}
		if err != nil {
			return nil, nil, err
		}
		if res.Action == ActionMergeWithExisting {
			if err := mergeRow(ctx, tx, p, c.Row); err != nil {
				return nil, nil, err
			}
		}
		return p, nil, nil
	}

	if res == nil && c.State == StateMatchedExisting {
		p, err := tx.GetPlayer(ctx, tenantID, c.PlayerID)
		if errors.Is(err, club.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: %s", ErrStaleResolution, c.PlayerID)
		}
		return p, nil, err
	}

	var overrides *Overrides
	if res != nil {
		overrides = res.Overrides
	}
	p, err := newPlayer(tenantID, c.Row, overrides)
	if err != nil {
		return nil, nil, err
	}
	key := identityKey(p)
	if id, ok := created[key]; ok {
		existing, err := tx.GetPlayer(ctx, tenantID, id)
		return existing, nil, err
	}
	if err := tx.CreatePlayer(ctx, p); err != nil {
		return nil, nil, err
	}
	log.Debug("Created player from import", "line", c.Line, "player", p.Name, "code", p.Code)
	return p, identityKeys(p), nil
}

// mergeRow fills the player's empty fields from the row and keeps the row
// name as an alternate name.
func mergeRow(ctx context.Context, tx club.ClubStore, p *club.Player, row Row) error {
	changed := false
	fill := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
			changed = true
		}
	}
	fill(&p.Email, row.Email)
	fill(&p.ExternalRatingID, row.ExternalRatingID)
	fill(&p.DateOfBirth, row.DateOfBirth)
	if name := normalizeName(row.PlayerName); name != "" && !answersTo(*p, name) {
		p.AlternateNames = append(p.AlternateNames, strings.TrimSpace(row.PlayerName))
		changed = true
	}
	if !changed {
		return nil
	}
	return tx.UpdatePlayer(ctx, p)
}

// announce publishes the batch outcome and notifies administrators. Failures
// are logged; the import itself has already committed.
func (i *Importer) announce(ctx context.Context, record *club.ImportBatch, categories map[ranking.Category]bool) {
	cats := make([]string, 0, len(categories))
	for c := range categories {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)

	notice := pubsub.ChangeNotice{
		TenantID:   record.TenantID,
		Categories: cats,
		Source:     "import",
		Reference:  record.ID,
		Succeeded:  record.Succeeded,
		Failed:     record.Failed,
		OccurredAt: time.Now().UTC(),
	}
	if err := i.pubsub.SendMessage(ctx, pubsub.EventImportCommitted, notice); err != nil {
		log.Error("Failed to publish import notice", "error", err, "batch", record.ID)
	}
	if record.Succeeded == 0 {
		return
	}
	if err := i.pubsub.SendMessage(ctx, pubsub.EventResultsChanged, notice); err != nil {
		log.Error("Failed to publish results change", "error", err, "batch", record.ID)
	}

	summary := notifier.ImportSummary{
		BatchID:   record.ID,
		Filename:  record.Filename,
		Operator:  record.Operator,
		Total:     record.Total,
		Succeeded: record.Succeeded,
		Failed:    record.Failed,
		Errors:    record.Errors,
	}
	if err := i.notifier.SendImportSummary(ctx, summary, false); err != nil {
		log.Error("Failed to send import summary", "error", err, "batch", record.ID)
	}
}

// DeleteBatch undoes an import: it removes the batch record, the events the
// batch created and their results. Players created by the batch stay.
func (i *Importer) DeleteBatch(ctx context.Context, tenantID, batchID string, dryRun bool) (*club.ImportBatch, error) {
	var record *club.ImportBatch
	categories := make(map[ranking.Category]bool)
	err := i.store.WithTx(ctx, func(tx club.ClubStore) error {
		var err error
		record, err = tx.GetImportBatch(ctx, tenantID, batchID)
		if err != nil {
			return fmt.Errorf("batch %s: %w", batchID, err)
		}
		events, err := tx.ListEvents(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("list events: %w", err)
		}
		for _, e := range events {
			if e.ImportBatchID == batchID {
				categories[e.Category] = true
			}
		}
		if dryRun {
			log.Info("[Dry Run] Would delete import batch", "batch", batchID, "categories", len(categories))
			return nil
		}
		return tx.DeleteImportBatch(ctx, tenantID, batchID)
	})
	if err != nil || dryRun {
		return record, err
	}

	log.Info("Deleted import batch", "tenant", tenantID, "batch", batchID, "file", record.Filename)
	if len(categories) == 0 {
		return record, nil
	}
	cats := make([]string, 0, len(categories))
	for c := range categories {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)
	notice := pubsub.ChangeNotice{
		TenantID:   tenantID,
		Categories: cats,
		Source:     "import",
		Reference:  batchID,
		OccurredAt: time.Now().UTC(),
	}
	if err := i.pubsub.SendMessage(ctx, pubsub.EventResultsChanged, notice); err != nil {
		log.Error("Failed to publish results change", "error", err, "batch", batchID)
	}
	return record, nil
}
