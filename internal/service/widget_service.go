package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/converso-hq/converso/internal/domain"
	"github.com/converso-hq/converso/internal/widget"
)

type ConnectionReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Connection, error)
}

// AuthLimiter throttles widget auth attempts per connection
type AuthLimiter interface {
	CheckWidgetAuthLimit(ctx context.Context, connectionID uuid.UUID, limit int) error
}

// defaultWidgetAuthLimit is the number of auth attempts a single connection
// may make per limiter window
const defaultWidgetAuthLimit = 300

// WidgetService is the runtime entry point for embedded widgets: it turns a
// bearer token presented by client-side code into the connection it belongs to.
type WidgetService struct {
	tokens    *widget.TokenService
	connRepo  ConnectionReader
	limiter   AuthLimiter
	authLimit int
	logger    *slog.Logger
}

// NewWidgetService creates the widget auth service. limiter may be nil, in
// which case auth attempts are not throttled.
func NewWidgetService(tokens *widget.TokenService, connRepo ConnectionReader, limiter AuthLimiter, logger *slog.Logger) *WidgetService {
	return &WidgetService{
		tokens:    tokens,
		connRepo:  connRepo,
		limiter:   limiter,
		authLimit: defaultWidgetAuthLimit,
		logger:    logger,
	}
}

// Authenticate verifies a widget token and resolves the connection it was
// minted for. Token verification proves only that the token is ours and
// unexpired; the registry check confirms the connection still exists.
//
// A token for a deleted connection fails exactly like a forged one so a
// caller cannot probe which connection IDs exist.
func (s *WidgetService) Authenticate(ctx context.Context, token string) (*domain.Connection, *widget.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		// The wrapped cause is diagnostic only; never shown to the caller
		s.logger.Debug("widget token rejected", "error", err)
		return nil, nil, domain.ErrInvalidWidgetToken
	}

	connID, err := uuid.Parse(claims.ConnectionID)
	if err != nil {
		s.logger.Debug("widget token carries malformed connection id", "error", err)
		return nil, nil, domain.ErrInvalidWidgetToken
	}

	if s.limiter != nil {
		if err := s.limiter.CheckWidgetAuthLimit(ctx, connID, s.authLimit); err != nil {
			if errors.Is(err, domain.ErrRateLimitExceeded) {
				return nil, nil, err
			}
			// Counter trouble must not lock widgets out; fail open
			s.logger.Warn("widget auth rate limiter unavailable", "error", err)
		}
	}

	conn, err := s.connRepo.GetByID(ctx, connID)
	if err != nil {
		s.logger.Debug("widget token references unknown connection",
			"connection_id", claims.ConnectionID,
			"error", err,
		)
		return nil, nil, domain.ErrInvalidWidgetToken
	}

	if conn.Status == domain.StatusError {
		return nil, nil, domain.ErrConnectionUnavailable
	}

	return conn, claims, nil
}
