package club

import (
	"context"
	"sync"

	"github.com/mauv0809/ranking-tribble/internal/ranking"
)

// MockStore is a mock implementation of the ClubStore interface for testing.
// Unset funcs return zero values. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	CreatePlayerFunc         func(p *Player) error
	GetPlayerFunc            func(tenantID, playerID string) (*Player, error)
	GetPlayerByCodeFunc      func(tenantID, code string) (*Player, error)
	ListPlayersFunc          func(tenantID string) ([]Player, error)
	UpdatePlayerFunc         func(p *Player) error
	DeletePlayerFunc         func(tenantID, playerID string) error
	GetOrCreateEventFunc     func(e *Event) (*Event, bool, error)
	GetEventFunc             func(tenantID, eventID string) (*Event, error)
	ListEventsFunc           func(tenantID string) ([]Event, error)
	SetEventVisibilityFunc   func(tenantID, eventID string, v Visibility) error
	DeleteEventFunc          func(tenantID, eventID string) error
	InsertResultFunc         func(r *Result) error
	UpdateResultFunc         func(tenantID, eventID, resultID string, position ranking.Position, points int) error
	ListResultsForPlayerFunc func(tenantID, playerID string) ([]PlayerResult, error)
	ListScoredResultsFunc    func(tenantID string, categories ...ranking.Category) ([]ranking.Result, error)
	ReassignResultsFunc      func(tenantID, fromPlayerID, toPlayerID string) (int64, error)
	CreateImportBatchFunc    func(b *ImportBatch) error
	UpdateImportBatchFunc    func(b *ImportBatch) error
	GetImportBatchFunc       func(tenantID, batchID string) (*ImportBatch, error)
	DeleteImportBatchFunc    func(tenantID, batchID string) error
	ClearFunc                func(tenantID string) error

	// Call records
	CreatePlayerCalls      []Player
	InsertResultCalls      []Result
	ListScoredResultsCalls []struct {
		TenantID   string
		Categories []ranking.Category
	}
	WithTxCalls int
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) CreatePlayer(_ context.Context, p *Player) error {
	m.mu.Lock()
	m.CreatePlayerCalls = append(m.CreatePlayerCalls, *p)
	m.mu.Unlock()
	if m.CreatePlayerFunc != nil {
		return m.CreatePlayerFunc(p)
	}
	return nil
}

func (m *MockStore) GetPlayer(_ context.Context, tenantID, playerID string) (*Player, error) {
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(tenantID, playerID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetPlayerByCode(_ context.Context, tenantID, code string) (*Player, error) {
	if m.GetPlayerByCodeFunc != nil {
		return m.GetPlayerByCodeFunc(tenantID, code)
	}
	return nil, ErrNotFound
}

func (m *MockStore) ListPlayers(_ context.Context, tenantID string) ([]Player, error) {
	if m.ListPlayersFunc != nil {
		return m.ListPlayersFunc(tenantID)
	}
	return []Player{}, nil
}

func (m *MockStore) UpdatePlayer(_ context.Context, p *Player) error {
	if m.UpdatePlayerFunc != nil {
		return m.UpdatePlayerFunc(p)
	}
	return nil
}

func (m *MockStore) DeletePlayer(_ context.Context, tenantID, playerID string) error {
	if m.DeletePlayerFunc != nil {
		return m.DeletePlayerFunc(tenantID, playerID)
	}
	return nil
}

func (m *MockStore) GetOrCreateEvent(_ context.Context, e *Event) (*Event, bool, error) {
	if m.GetOrCreateEventFunc != nil {
		return m.GetOrCreateEventFunc(e)
	}
	return e, true, nil
}

func (m *MockStore) GetEvent(_ context.Context, tenantID, eventID string) (*Event, error) {
	if m.GetEventFunc != nil {
		return m.GetEventFunc(tenantID, eventID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) ListEvents(_ context.Context, tenantID string) ([]Event, error) {
	if m.ListEventsFunc != nil {
		return m.ListEventsFunc(tenantID)
	}
	return []Event{}, nil
}

func (m *MockStore) SetEventVisibility(_ context.Context, tenantID, eventID string, v Visibility) error {
	if m.SetEventVisibilityFunc != nil {
		return m.SetEventVisibilityFunc(tenantID, eventID, v)
	}
	return nil
}

func (m *MockStore) DeleteEvent(_ context.Context, tenantID, eventID string) error {
	if m.DeleteEventFunc != nil {
		return m.DeleteEventFunc(tenantID, eventID)
	}
	return nil
}

func (m *MockStore) InsertResult(_ context.Context, r *Result) error {
	m.mu.Lock()
	m.InsertResultCalls = append(m.InsertResultCalls, *r)
	m.mu.Unlock()
	if m.InsertResultFunc != nil {
		return m.InsertResultFunc(r)
	}
	return nil
}

func (m *MockStore) UpdateResult(_ context.Context, tenantID, eventID, resultID string, position ranking.Position, points int) error {
	if m.UpdateResultFunc != nil {
		return m.UpdateResultFunc(tenantID, eventID, resultID, position, points)
	}
	return nil
}

func (m *MockStore) ListResultsForPlayer(_ context.Context, tenantID, playerID string) ([]PlayerResult, error) {
	if m.ListResultsForPlayerFunc != nil {
		return m.ListResultsForPlayerFunc(tenantID, playerID)
	}
	return []PlayerResult{}, nil
}

func (m *MockStore) ListScoredResults(_ context.Context, tenantID string, categories ...ranking.Category) ([]ranking.Result, error) {
	m.mu.Lock()
	m.ListScoredResultsCalls = append(m.ListScoredResultsCalls, struct {
		TenantID   string
		Categories []ranking.Category
	}{tenantID, categories})
	m.mu.Unlock()
	if m.ListScoredResultsFunc != nil {
		return m.ListScoredResultsFunc(tenantID, categories...)
	}
	return []ranking.Result{}, nil
}

func (m *MockStore) ReassignResults(_ context.Context, tenantID, fromPlayerID, toPlayerID string) (int64, error) {
	if m.ReassignResultsFunc != nil {
		return m.ReassignResultsFunc(tenantID, fromPlayerID, toPlayerID)
	}
	return 0, nil
}

func (m *MockStore) CreateImportBatch(_ context.Context, b *ImportBatch) error {
	if m.CreateImportBatchFunc != nil {
		return m.CreateImportBatchFunc(b)
	}
	return nil
}

func (m *MockStore) UpdateImportBatch(_ context.Context, b *ImportBatch) error {
	if m.UpdateImportBatchFunc != nil {
		return m.UpdateImportBatchFunc(b)
	}
	return nil
}

func (m *MockStore) GetImportBatch(_ context.Context, tenantID, batchID string) (*ImportBatch, error) {
	if m.GetImportBatchFunc != nil {
		return m.GetImportBatchFunc(tenantID, batchID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) DeleteImportBatch(_ context.Context, tenantID, batchID string) error {
	if m.DeleteImportBatchFunc != nil {
		return m.DeleteImportBatchFunc(tenantID, batchID)
	}
	return nil
}

// WithTx runs fn against the mock itself.
func (m *MockStore) WithTx(_ context.Context, fn func(tx ClubStore) error) error {
	m.mu.Lock()
	m.WithTxCalls++
	m.mu.Unlock()
	return fn(m)
}

func (m *MockStore) Clear(_ context.Context, tenantID string) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(tenantID)
	}
	return nil
}
