package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/converso-hq/converso/internal/domain"
)

type ConnectionRepository struct {
	pool PgxPool
}

func NewConnectionRepository(pool PgxPool) *ConnectionRepository {
	return &ConnectionRepository{pool: pool}
}

func (r *ConnectionRepository) Create(ctx context.Context, conn *domain.Connection) error {
	query := `
		INSERT INTO connections (id, team_id, name, type, status, config, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if conn.ID == uuid.Nil {
		conn.ID = uuid.New()
	}

	if conn.Config == nil {
		conn.Config = make(map[string]interface{})
	}

	err := r.pool.QueryRow(ctx, query,
		conn.ID,
		conn.TeamID,
		conn.Name,
		conn.Type,
		conn.Status,
		conn.Config,
	).Scan(&conn.CreatedAt, &conn.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return &domain.AppError{
				Code:       "CONNECTION_ALREADY_EXISTS",
				Message:    "Connection with this name already exists for this team",
				StatusCode: 409,
			}
		}
		return fmt.Errorf("create connection: %w", err)
	}

	return nil
}

func (r *ConnectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Connection, error) {
	query := `
		SELECT id, team_id, name, type, status, config, created_at, updated_at
		FROM connections
		WHERE id = $1
	`

	var conn domain.Connection
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&conn.ID,
		&conn.TeamID,
		&conn.Name,
		&conn.Type,
		&conn.Status,
		&conn.Config,
		&conn.CreatedAt,
		&conn.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrConnectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get connection by id: %w", err)
	}

	return &conn, nil
}

func (r *ConnectionRepository) GetByTeamAndID(ctx context.Context, teamID, id uuid.UUID) (*domain.Connection, error) {
	query := `
		SELECT id, team_id, name, type, status, config, created_at, updated_at
		FROM connections
		WHERE id = $1 AND team_id = $2
	`

	var conn domain.Connection
	err := r.pool.QueryRow(ctx, query, id, teamID).Scan(
		&conn.ID,
		&conn.TeamID,
		&conn.Name,
		&conn.Type,
		&conn.Status,
		&conn.Config,
		&conn.CreatedAt,
		&conn.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrConnectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get connection by team and id: %w", err)
	}

	return &conn, nil
}

func (r *ConnectionRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.Connection, error) {
	query := `
		SELECT id, team_id, name, type, status, config, created_at, updated_at
		FROM connections
		WHERE team_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("list connections by team: %w", err)
	}
	defer rows.Close()

	var connections []domain.Connection
	for rows.Next() {
		var conn domain.Connection
		err := rows.Scan(
			&conn.ID,
			&conn.TeamID,
			&conn.Name,
			&conn.Type,
			&conn.Status,
			&conn.Config,
			&conn.CreatedAt,
			&conn.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		connections = append(connections, conn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list connections by team: %w", err)
	}

	return connections, nil
}

// Update persists name, status and config. Type is immutable and never
// part of the statement.
func (r *ConnectionRepository) Update(ctx context.Context, conn *domain.Connection) error {
	query := `
		UPDATE connections
		SET name = $2, status = $3, config = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	if conn.Config == nil {
		conn.Config = make(map[string]interface{})
	}

	err := r.pool.QueryRow(ctx, query,
		conn.ID,
		conn.Name,
		conn.Status,
		conn.Config,
	).Scan(&conn.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrConnectionNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.AppError{
				Code:       "CONNECTION_NAME_CONFLICT",
				Message:    "Connection with this name already exists for this team",
				StatusCode: 409,
			}
		}
		return fmt.Errorf("update connection: %w", err)
	}

	return nil
}

// UpdateStatus is used by integration health/handshake logic to move a
// connection between connected, disconnected and error
func (r *ConnectionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE connections
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update connection status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrConnectionNotFound
	}

	return nil
}

func (r *ConnectionRepository) Delete(ctx context.Context, teamID, id uuid.UUID) error {
	query := `
		DELETE FROM connections
		WHERE id = $1 AND team_id = $2
	`

	result, err := r.pool.Exec(ctx, query, id, teamID)
	if err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrConnectionNotFound
	}

	return nil
}
