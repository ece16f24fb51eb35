package club

import (
	"context"

	"github.com/mauv0809/ranking-tribble/internal/ranking"
)

// ClubStore defines the interface for interacting with the club's data.
// Every lookup is scoped to a tenant.
type ClubStore interface {
	CreatePlayer(ctx context.Context, p *Player) error
	GetPlayer(ctx context.Context, tenantID, playerID string) (*Player, error)
	GetPlayerByCode(ctx context.Context, tenantID, code string) (*Player, error)
	ListPlayers(ctx context.Context, tenantID string) ([]Player, error)
	UpdatePlayer(ctx context.Context, p *Player) error
	DeletePlayer(ctx context.Context, tenantID, playerID string) error

	GetOrCreateEvent(ctx context.Context, e *Event) (*Event, bool, error)
	GetEvent(ctx context.Context, tenantID, eventID string) (*Event, error)
	ListEvents(ctx context.Context, tenantID string) ([]Event, error)
	SetEventVisibility(ctx context.Context, tenantID, eventID string, v Visibility) error
	DeleteEvent(ctx context.Context, tenantID, eventID string) error

	InsertResult(ctx context.Context, r *Result) error
	UpdateResult(ctx context.Context, tenantID, eventID, resultID string, position ranking.Position, points int) error
	ListResultsForPlayer(ctx context.Context, tenantID, playerID string) ([]PlayerResult, error)
	ListScoredResults(ctx context.Context, tenantID string, categories ...ranking.Category) ([]ranking.Result, error)
	ReassignResults(ctx context.Context, tenantID, fromPlayerID, toPlayerID string) (int64, error)

	CreateImportBatch(ctx context.Context, b *ImportBatch) error
	UpdateImportBatch(ctx context.Context, b *ImportBatch) error
	GetImportBatch(ctx context.Context, tenantID, batchID string) (*ImportBatch, error)
	DeleteImportBatch(ctx context.Context, tenantID, batchID string) error

	// WithTx runs fn against a store bound to a single transaction. fn must
	// only use the store it is given.
	WithTx(ctx context.Context, fn func(tx ClubStore) error) error
	Clear(ctx context.Context, tenantID string) error
}
