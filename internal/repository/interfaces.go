package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/converso-hq/converso/internal/domain"
)

// TeamRepositoryInterface defines operations for team data access
type TeamRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Team, error)
	GetByAPIKeyHash(ctx context.Context, hash string) (*domain.Team, error)
	Create(ctx context.Context, team *domain.Team) error
	Update(ctx context.Context, team *domain.Team) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ConnectionRepositoryInterface defines operations for connection data access.
// All reads and writes except GetByID are scoped by team.
type ConnectionRepositoryInterface interface {
	Create(ctx context.Context, conn *domain.Connection) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Connection, error)
	GetByTeamAndID(ctx context.Context, teamID, id uuid.UUID) (*domain.Connection, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.Connection, error)
	Update(ctx context.Context, conn *domain.Connection) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, teamID, id uuid.UUID) error
}

// APIKeyRepositoryInterface defines operations for API key data access
type APIKeyRepositoryInterface interface {
	Create(ctx context.Context, key *domain.APIKey) error
	GetByHash(ctx context.Context, hash string) (*domain.APIKey, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.APIKey, error)
	UpdateLastUsedByHash(ctx context.Context, keyHash string) error
	Revoke(ctx context.Context, id uuid.UUID) error
}
