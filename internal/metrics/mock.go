package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu               sync.Mutex
	importRows       map[string]int
	resultsRecorded  int
	mergesCompleted  int
	rankingDurations map[string][]float64
	slackNotifSent   int
	slackNotifFailed int
	startupTime      float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		importRows:       make(map[string]int),
		rankingDurations: make(map[string][]float64),
	}
}

func (m *Mock) IncImportRows(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.importRows[outcome]++
}

func (m *Mock) IncResultsRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resultsRecorded++
}

func (m *Mock) IncMergesCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mergesCompleted++
}

func (m *Mock) ObserveRankingDuration(view string, duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rankingDurations[view] = append(m.rankingDurations[view], duration)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// ImportRows returns how many rows were counted with the given outcome.
func (m *Mock) ImportRows(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.importRows[outcome]
}

// ResultsRecorded returns the number of times IncResultsRecorded was called.
func (m *Mock) ResultsRecorded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultsRecorded
}

// MergesCompleted returns the number of times IncMergesCompleted was called.
func (m *Mock) MergesCompleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mergesCompleted
}

// RankingDurations returns the recorded durations for a view.
func (m *Mock) RankingDurations(view string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.rankingDurations[view]...)
}

func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}

func (m *Mock) StartupTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startupTime
}
