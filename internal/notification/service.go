package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/converso-hq/converso/internal/domain"
)

const defaultMaxAttempts = 5

// Pool is the subset of pgxpool.Pool the notification queue uses
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service is the Notification Dispatcher boundary: callers hand it a state
// change, it renders the message and enqueues it for the delivery worker.
type Service struct {
	db     Pool
	logger *slog.Logger
}

func NewService(db Pool, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Enqueue persists an email in the delivery queue
func (s *Service) Enqueue(ctx context.Context, email *Email) error {
	query := `
		INSERT INTO email_queue (id, team_id, recipient, subject, body_text, body_html, kind, attempts, max_attempts, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9, NOW(), NOW())
		RETURNING created_at
	`

	if email.ID == uuid.Nil {
		email.ID = uuid.New()
	}
	if email.MaxAttempts == 0 {
		email.MaxAttempts = defaultMaxAttempts
	}
	email.Status = StatusPending

	err := s.db.QueryRow(ctx, query,
		email.ID,
		email.TeamID,
		email.Recipient,
		email.Subject,
		email.BodyText,
		email.BodyHTML,
		email.Kind,
		email.MaxAttempts,
		email.Status,
	).Scan(&email.CreatedAt)

	if err != nil {
		return fmt.Errorf("enqueue email: %w", err)
	}

	return nil
}

// ConnectionStatusChanged notifies the team that one of its connections
// moved to a new status
func (s *Service) ConnectionStatusChanged(ctx context.Context, team *domain.Team, conn *domain.Connection, oldStatus string) error {
	recipient := team.GetSettings().NotificationEmail
	if recipient == "" {
		s.logger.Debug("no notification email configured, skipping",
			"team_id", team.ID,
		)
		return nil
	}

	email, err := StatusChangeEmail(team, conn, oldStatus, recipient)
	if err != nil {
		return err
	}

	return s.Enqueue(ctx, email)
}

// TeamInvitation sends an invitation email to join a team
func (s *Service) TeamInvitation(ctx context.Context, team *domain.Team, recipient, inviteURL string) error {
	email, err := InvitationEmail(team, recipient, inviteURL)
	if err != nil {
		return err
	}

	return s.Enqueue(ctx, email)
}
