package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/converso-hq/converso/internal/domain"
)

type TeamRepository struct {
	pool PgxPool
}

func NewTeamRepository(pool PgxPool) *TeamRepository {
	return &TeamRepository{pool: pool}
}

func (r *TeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error) {
	query := `
		SELECT id, name, slug, is_active, plan, settings, created_at, updated_at
		FROM teams
		WHERE id = $1
	`

	var team domain.Team
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.Slug,
		&team.IsActive,
		&team.Plan,
		&team.Settings,
		&team.CreatedAt,
		&team.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get team by id: %w", err)
	}

	return &team, nil
}

func (r *TeamRepository) GetBySlug(ctx context.Context, slug string) (*domain.Team, error) {
	query := `
		SELECT id, name, slug, is_active, plan, settings, created_at, updated_at
		FROM teams
		WHERE slug = $1
	`

	var team domain.Team
	err := r.pool.QueryRow(ctx, query, slug).Scan(
		&team.ID,
		&team.Name,
		&team.Slug,
		&team.IsActive,
		&team.Plan,
		&team.Settings,
		&team.CreatedAt,
		&team.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get team by slug: %w", err)
	}

	return &team, nil
}

func (r *TeamRepository) GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*domain.Team, error) {
	query := `
		SELECT t.id, t.name, t.slug, t.is_active, t.plan, t.settings, t.created_at, t.updated_at
		FROM teams t
		INNER JOIN api_keys ak ON ak.team_id = t.id
		WHERE ak.key_hash = $1 AND ak.is_active = true AND t.is_active = true
	`

	var team domain.Team
	err := r.pool.QueryRow(ctx, query, apiKeyHash).Scan(
		&team.ID,
		&team.Name,
		&team.Slug,
		&team.IsActive,
		&team.Plan,
		&team.Settings,
		&team.CreatedAt,
		&team.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get team by api key: %w", err)
	}

	return &team, nil
}

func (r *TeamRepository) Create(ctx context.Context, team *domain.Team) error {
	query := `
		INSERT INTO teams (id, name, slug, is_active, plan, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}

	if team.Settings == nil {
		team.Settings = make(map[string]interface{})
	}

	err := r.pool.QueryRow(ctx, query,
		team.ID,
		team.Name,
		team.Slug,
		team.IsActive,
		team.Plan,
		team.Settings,
	).Scan(&team.CreatedAt, &team.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return &domain.AppError{
				Code:       "TEAM_ALREADY_EXISTS",
				Message:    "Team with this slug already exists",
				StatusCode: 409,
			}
		}
		return fmt.Errorf("create team: %w", err)
	}

	return nil
}

func (r *TeamRepository) Update(ctx context.Context, team *domain.Team) error {
	query := `
		UPDATE teams
		SET name = $2, slug = $3, is_active = $4, plan = $5, settings = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	if team.Settings == nil {
		team.Settings = make(map[string]interface{})
	}

	err := r.pool.QueryRow(ctx, query,
		team.ID,
		team.Name,
		team.Slug,
		team.IsActive,
		team.Plan,
		team.Settings,
	).Scan(&team.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrTeamNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.AppError{
				Code:       "TEAM_SLUG_CONFLICT",
				Message:    "Team with this slug already exists",
				StatusCode: 409,
			}
		}
		return fmt.Errorf("update team: %w", err)
	}

	return nil
}

func (r *TeamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM teams
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrTeamNotFound
	}

	return nil
}
