package notifier

import (
	"context"
	"sync"

	"github.com/mauv0809/ranking-tribble/internal/ranking"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies
	SendImportSummaryFunc  func(summary ImportSummary) error
	SendMergeSummaryFunc   func(summary MergeSummary) error
	SendRankingsUpdateFunc func(title string, rows []ranking.Row) error

	// Call records
	SendImportSummaryCalls  []ImportSummary
	SendMergeSummaryCalls   []MergeSummary
	SendRankingsUpdateCalls []RankingsUpdateCall
	LastRankingsResponse    any
	LastErrorResponse       any
}

// RankingsUpdateCall holds the arguments for a call to SendRankingsUpdate.
type RankingsUpdateCall struct {
	Title string
	Rows  []ranking.Row
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendImportSummaryCalls = nil
	m.SendMergeSummaryCalls = nil
	m.SendRankingsUpdateCalls = nil
	m.LastRankingsResponse = nil
	m.LastErrorResponse = nil
}

func (m *Mock) SendImportSummary(_ context.Context, summary ImportSummary, _ bool) error {
	m.mu.Lock()
	m.SendImportSummaryCalls = append(m.SendImportSummaryCalls, summary)
	fn := m.SendImportSummaryFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(summary)
	}
	return nil
}

func (m *Mock) SendMergeSummary(_ context.Context, summary MergeSummary, _ bool) error {
	m.mu.Lock()
	m.SendMergeSummaryCalls = append(m.SendMergeSummaryCalls, summary)
	fn := m.SendMergeSummaryFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(summary)
	}
	return nil
}

func (m *Mock) SendRankingsUpdate(_ context.Context, title string, rows []ranking.Row, _ bool) error {
	m.mu.Lock()
	m.SendRankingsUpdateCalls = append(m.SendRankingsUpdateCalls, RankingsUpdateCall{Title: title, Rows: rows})
	fn := m.SendRankingsUpdateFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(title, rows)
	}
	return nil
}

func (m *Mock) FormatRankingsResponse(title string, rows []ranking.Row) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resp := map[string]any{"title": title, "rows": rows}
	m.LastRankingsResponse = resp
	return resp, nil
}

func (m *Mock) FormatErrorResponse(text string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resp := map[string]string{"text": text}
	m.LastErrorResponse = resp
	return resp, nil
}

func (m *Mock) ImportSummaries() []ImportSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ImportSummary(nil), m.SendImportSummaryCalls...)
}

func (m *Mock) MergeSummaries() []MergeSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MergeSummary(nil), m.SendMergeSummaryCalls...)
}

func (m *Mock) RankingsUpdates() []RankingsUpdateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RankingsUpdateCall(nil), m.SendRankingsUpdateCalls...)
}
