package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/google/uuid"

	"github.com/converso-hq/converso/internal/domain"
	"github.com/converso-hq/converso/internal/widget"
)

type ConnectionRepositoryInterface interface {
	Create(ctx context.Context, conn *domain.Connection) error
	GetByTeamAndID(ctx context.Context, teamID, id uuid.UUID) (*domain.Connection, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.Connection, error)
	Update(ctx context.Context, conn *domain.Connection) error
	Delete(ctx context.Context, teamID, id uuid.UUID) error
}

type TeamRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error)
}

// NotificationDispatcher delivers transactional email triggered by state
// changes. Implementations enqueue; actual delivery happens out of band.
type NotificationDispatcher interface {
	ConnectionStatusChanged(ctx context.Context, team *domain.Team, conn *domain.Connection, oldStatus string) error
}

// MultiDispatcher fans one status change out to several dispatchers, e.g.
// the email queue and the widget websocket hub
type MultiDispatcher []NotificationDispatcher

func (m MultiDispatcher) ConnectionStatusChanged(ctx context.Context, team *domain.Team, conn *domain.Connection, oldStatus string) error {
	var errs []error
	for _, d := range m {
		if err := d.ConnectionStatusChanged(ctx, team, conn, oldStatus); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WidgetInstall is what the operator embeds on their site after installing
// the widget for a website connection
type WidgetInstall struct {
	Token      string `json:"token"`
	WebsiteURL string `json:"website_url"`
	Snippet    string `json:"snippet"`
}

type ConnectionService struct {
	connRepo ConnectionRepositoryInterface
	teamRepo TeamRepositoryInterface
	tokens   *widget.TokenService
	notifier NotificationDispatcher
	logger   *slog.Logger
}

func NewConnectionService(
	connRepo ConnectionRepositoryInterface,
	teamRepo TeamRepositoryInterface,
	tokens *widget.TokenService,
	notifier NotificationDispatcher,
	logger *slog.Logger,
) *ConnectionService {
	return &ConnectionService{
		connRepo: connRepo,
		teamRepo: teamRepo,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger,
	}
}

// Create validates and persists a new connection for a team
func (s *ConnectionService) Create(ctx context.Context, conn *domain.Connection) (*domain.Connection, error) {
	if err := conn.ValidateForCreate(); err != nil {
		return nil, err
	}

	team, err := s.teamRepo.GetByID(ctx, conn.TeamID)
	if err != nil {
		return nil, err
	}

	if !team.IsActive {
		return nil, domain.ErrTeamInactive
	}

	existing, err := s.connRepo.ListByTeam(ctx, conn.TeamID)
	if err != nil {
		return nil, fmt.Errorf("team %s: list connections: %w", conn.TeamID, err)
	}

	settings := team.GetSettings()
	if len(existing) >= settings.MaxConnections {
		return nil, &domain.AppError{
			Code:       "CONNECTION_LIMIT_REACHED",
			Message:    "Connection limit for this plan has been reached",
			StatusCode: 403,
		}
	}

	if err := s.connRepo.Create(ctx, conn); err != nil {
		return nil, err
	}

	return conn, nil
}

// Get returns a connection scoped by team
func (s *ConnectionService) Get(ctx context.Context, teamID, id uuid.UUID) (*domain.Connection, error) {
	return s.connRepo.GetByTeamAndID(ctx, teamID, id)
}

// List returns every connection owned by a team
func (s *ConnectionService) List(ctx context.Context, teamID uuid.UUID) ([]domain.Connection, error) {
	return s.connRepo.ListByTeam(ctx, teamID)
}

// Update applies a partial update. Type is immutable; status transitions
// trigger a notification when the team opted in.
func (s *ConnectionService) Update(ctx context.Context, teamID, id uuid.UUID, update *domain.ConnectionUpdate) (*domain.Connection, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	conn, err := s.connRepo.GetByTeamAndID(ctx, teamID, id)
	if err != nil {
		return nil, err
	}

	oldStatus := conn.Status

	if update.Name != nil {
		conn.Name = *update.Name
	}
	if update.Status != nil {
		conn.Status = *update.Status
	}
	if update.Config != nil {
		conn.Config = update.Config
	}

	if err := s.connRepo.Update(ctx, conn); err != nil {
		return nil, err
	}

	if conn.Status != oldStatus {
		s.notifyStatusChange(ctx, conn, oldStatus)
	}

	return conn, nil
}

// Delete removes a connection. Outstanding widget tokens referencing it will
// keep verifying but fail the registry check, which is the per-connection
// revocation path.
func (s *ConnectionService) Delete(ctx context.Context, teamID, id uuid.UUID) error {
	return s.connRepo.Delete(ctx, teamID, id)
}

// IssueWidgetToken mints the long-lived widget token for a website
// connection. The token binds the connection ID and the declared website
// origin; it is embedded in the bootstrap snippet on the customer's site.
func (s *ConnectionService) IssueWidgetToken(ctx context.Context, teamID, id uuid.UUID) (*WidgetInstall, error) {
	conn, err := s.connRepo.GetByTeamAndID(ctx, teamID, id)
	if err != nil {
		return nil, err
	}

	if !conn.IsWidgetCapable() {
		return nil, domain.ErrWidgetNotSupported
	}

	cfg := conn.GetWebsiteConfig()
	websiteURL, err := normalizeOrigin(cfg.WebsiteURL)
	if err != nil {
		verr := &domain.ValidationError{}
		verr.Add("config.website_url", err.Error())
		return nil, verr
	}

	token, err := s.tokens.Issue(conn.ID.String(), websiteURL)
	if err != nil {
		return nil, fmt.Errorf("connection %s: issue widget token: %w", conn.ID, err)
	}

	return &WidgetInstall{
		Token:      token,
		WebsiteURL: websiteURL,
		Snippet:    buildSnippet(token),
	}, nil
}

func (s *ConnectionService) notifyStatusChange(ctx context.Context, conn *domain.Connection, oldStatus string) {
	team, err := s.teamRepo.GetByID(ctx, conn.TeamID)
	if err != nil {
		s.logger.Warn("status change notification skipped",
			"error", err,
			"connection_id", conn.ID,
		)
		return
	}

	settings := team.GetSettings()
	switch conn.Status {
	case domain.StatusError:
		if !settings.NotifyOnError {
			return
		}
	case domain.StatusDisconnected:
		if !settings.NotifyOnDisconnect {
			return
		}
	default:
		return
	}

	if err := s.notifier.ConnectionStatusChanged(ctx, team, conn, oldStatus); err != nil {
		s.logger.Warn("failed to dispatch status notification",
			"error", err,
			"connection_id", conn.ID,
			"status", conn.Status,
		)
	}
}

// normalizeOrigin reduces a URL to scheme://host, the form widget tokens are
// scoped to
func normalizeOrigin(origin string) (string, error) {
	if origin == "" {
		return "", fmt.Errorf("website_url is required in the connection config")
	}

	u, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %v", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("scheme must be http or https")
	}

	if u.Host == "" {
		return "", fmt.Errorf("host is required")
	}

	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

func buildSnippet(token string) string {
	return fmt.Sprintf(
		`<script src="https://cdn.converso.app/widget.js" data-converso-token="%s" async></script>`,
		token,
	)
}
