package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/converso-hq/converso/internal/domain"
	"github.com/converso-hq/converso/internal/widget"
)

type MockConnectionRepository struct {
	mock.Mock
}

func (m *MockConnectionRepository) Create(ctx context.Context, conn *domain.Connection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

func (m *MockConnectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Connection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Connection), args.Error(1)
}

func (m *MockConnectionRepository) GetByTeamAndID(ctx context.Context, teamID, id uuid.UUID) (*domain.Connection, error) {
	args := m.Called(ctx, teamID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Connection), args.Error(1)
}

func (m *MockConnectionRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.Connection, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Connection), args.Error(1)
}

func (m *MockConnectionRepository) Update(ctx context.Context, conn *domain.Connection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

func (m *MockConnectionRepository) Delete(ctx context.Context, teamID, id uuid.UUID) error {
	args := m.Called(ctx, teamID, id)
	return args.Error(0)
}

type MockTeamRepository struct {
	mock.Mock
}

func (m *MockTeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Team), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) ConnectionStatusChanged(ctx context.Context, team *domain.Team, conn *domain.Connection, oldStatus string) error {
	args := m.Called(ctx, team, conn, oldStatus)
	return args.Error(0)
}

func newTestConnectionService(t *testing.T, connRepo *MockConnectionRepository, teamRepo *MockTeamRepository, notifier *MockNotifier) *ConnectionService {
	t.Helper()

	tokens, err := widget.NewTokenService("0123456789abcdef0123456789abcdef", "converso-test")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	return NewConnectionService(connRepo, teamRepo, tokens, notifier, logger)
}

func activeTeam(id uuid.UUID) *domain.Team {
	return &domain.Team{
		ID:       id,
		Name:     "Acme",
		Slug:     "acme",
		IsActive: true,
		Plan:     domain.PlanPro,
		Settings: map[string]interface{}{"max_connections": float64(5)},
	}
}

func TestConnectionService_Create(t *testing.T) {
	teamID := uuid.New()

	t.Run("creates a valid connection", func(t *testing.T) {
		connRepo := new(MockConnectionRepository)
		teamRepo := new(MockTeamRepository)
		svc := newTestConnectionService(t, connRepo, teamRepo, new(MockNotifier))

		teamRepo.On("GetByID", mock.Anything, teamID).Return(activeTeam(teamID), nil)
		connRepo.On("ListByTeam", mock.Anything, teamID).Return([]domain.Connection{}, nil)
		connRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Connection")).Return(nil)

		conn := &domain.Connection{
			TeamID: teamID,
			Name:   "Landing page",
			Type:   domain.ConnectionTypeWebsite,
		}
		got, err := svc.Create(context.Background(), conn)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDisconnected, got.Status)
		connRepo.AssertExpectations(t)
	})

	t.Run("accumulated validation failures skip the repositories", func(t *testing.T) {
		connRepo := new(MockConnectionRepository)
		teamRepo := new(MockTeamRepository)
		svc := newTestConnectionService(t, connRepo, teamRepo, new(MockNotifier))

		conn := &domain.Connection{Type: "telegram"}
		_, err := svc.Create(context.Background(), conn)
		require.Error(t, err)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.GreaterOrEqual(t, len(verr.Violations), 2)
		connRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("inactive team is rejected", func(t *testing.T) {
		connRepo := new(MockConnectionRepository)
		teamRepo := new(MockTeamRepository)
		svc := newTestConnectionService(t, connRepo, teamRepo, new(MockNotifier))

		team := activeTeam(teamID)
		team.IsActive = false
		teamRepo.On("GetByID", mock.Anything, teamID).Return(team, nil)

		conn := &domain.Connection{TeamID: teamID, Name: "x", Type: domain.ConnectionTypeWebsite}
		_, err := svc.Create(context.Background(), conn)
		assert.ErrorIs(t, err, domain.ErrTeamInactive)
	})

	t.Run("plan limit blocks creation", func(t *testing.T) {
		connRepo := new(MockConnectionRepository)
		teamRepo := new(MockTeamRepository)
		svc := newTestConnectionService(t, connRepo, teamRepo, new(MockNotifier))

		team := activeTeam(teamID)
		team.Settings["max_connections"] = float64(1)
		teamRepo.On("GetByID", mock.Anything, teamID).Return(team, nil)
		connRepo.On("ListByTeam", mock.Anything, teamID).Return([]domain.Connection{
			{ID: uuid.New(), TeamID: teamID},
		}, nil)

		conn := &domain.Connection{TeamID: teamID, Name: "second", Type: domain.ConnectionTypeWebsite}
		_, err := svc.Create(context.Background(), conn)
		require.Error(t, err)

		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "CONNECTION_LIMIT_REACHED", appErr.Code)
		connRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestConnectionService_Update(t *testing.T) {
	teamID := uuid.New()
	connID := uuid.New()

	storedConn := func() *domain.Connection {
		return &domain.Connection{
			ID:     connID,
			TeamID: teamID,
			Name:   "Landing page",
			Type:   domain.ConnectionTypeWebsite,
			Status: domain.StatusConnected,
			Config: map[string]interface{}{"website_url": "https://example.com"},
		}
	}
	strPtr := func(s string) *string { return &s }

	t.Run("partial update keeps untouched fields", func(t *testing.T) {
		connRepo := new(MockConnectionRepository)
		teamRepo := new(MockTeamRepository)
		svc := newTestConnectionService(t, connRepo, teamRepo, new(MockNotifier))

		connRepo.On("GetByTeamAndID", mock.Anything, teamID, connID).Return(storedConn(), nil)
		connRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Connection")).Return(nil)

		got, err := svc.Update(context.Background(), teamID, connID, &domain.ConnectionUpdate{
			Name: strPtr("Renamed"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
		assert.Equal(t, domain.StatusConnected, got.Status)
		assert.Equal(t, domain.ConnectionTypeWebsite, got.Type)
	})

	t.Run("status change to error notifies when team opted in", func(t *testing.T) {
		connRepo := new(MockConnectionRepository)
		teamRepo := new(MockTeamRepository)
		notifier := new(MockNotifier)
		svc := newTestConnectionService(t, connRepo, teamRepo, notifier)

		connRepo.On("GetByTeamAndID", mock.Anything, teamID, connID).Return(storedConn(), nil)
		connRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Connection")).Return(nil)
		teamRepo.On("GetByID", mock.Anything, teamID).Return(activeTeam(teamID), nil)
		notifier.On("ConnectionStatusChanged", mock.Anything, mock.Anything, mock.Anything, domain.StatusConnected).Return(nil)

		_, err := svc.Update(context.Background(), teamID, connID, &domain.ConnectionUpdate{
			Status: strPtr(domain.StatusError),
		})
		require.NoError(t, err)
		notifier.AssertExpectations(t)
	})

	t.Run("disconnect stays silent unless the team opted in", func(t *testing.T) {
		connRepo := new(MockConnectionRepository)
		teamRepo := new(MockTeamRepository)
		notifier := new(MockNotifier)
		svc := newTestConnectionService(t, connRepo, teamRepo, notifier)

		connRepo.On("GetByTeamAndID", mock.Anything, teamID, connID).Return(storedConn(), nil)
		connRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Connection")).Return(nil)
		teamRepo.On("GetByID", mock.Anything, teamID).Return(activeTeam(teamID), nil)

		_, err := svc.Update(context.Background(), teamID, connID, &domain.ConnectionUpdate{
			Status: strPtr(domain.StatusDisconnected),
		})
		require.NoError(t, err)
		notifier.AssertNotCalled(t, "ConnectionStatusChanged", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unchanged status does not notify", func(t *testing.T) {
		connRepo := new(MockConnectionRepository)
		teamRepo := new(MockTeamRepository)
		notifier := new(MockNotifier)
		svc := newTestConnectionService(t, connRepo, teamRepo, notifier)

		connRepo.On("GetByTeamAndID", mock.Anything, teamID, connID).Return(storedConn(), nil)
		connRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Connection")).Return(nil)

		_, err := svc.Update(context.Background(), teamID, connID, &domain.ConnectionUpdate{
			Name: strPtr("Still connected"),
		})
		require.NoError(t, err)
		notifier.AssertNotCalled(t, "ConnectionStatusChanged", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing connection bubbles up", func(t *testing.T) {
		connRepo := new(MockConnectionRepository)
		teamRepo := new(MockTeamRepository)
		svc := newTestConnectionService(t, connRepo, teamRepo, new(MockNotifier))

		connRepo.On("GetByTeamAndID", mock.Anything, teamID, connID).Return(nil, domain.ErrConnectionNotFound)

		_, err := svc.Update(context.Background(), teamID, connID, &domain.ConnectionUpdate{Name: strPtr("x")})
		assert.ErrorIs(t, err, domain.ErrConnectionNotFound)
	})
}

func TestConnectionService_IssueWidgetToken(t *testing.T) {
	teamID := uuid.New()
	connID := uuid.New()

	websiteConn := func() *domain.Connection {
		return &domain.Connection{
			ID:     connID,
			TeamID: teamID,
			Name:   "Landing page",
			Type:   domain.ConnectionTypeWebsite,
			Status: domain.StatusConnected,
			Config: map[string]interface{}{"website_url": "https://example.com/pricing?x=1"},
		}
	}

	t.Run("mints a verifiable token and snippet", func(t *testing.T) {
		connRepo := new(MockConnectionRepository)
		teamRepo := new(MockTeamRepository)
		svc := newTestConnectionService(t, connRepo, teamRepo, new(MockNotifier))

		connRepo.On("GetByTeamAndID", mock.Anything, teamID, connID).Return(websiteConn(), nil)

		install, err := svc.IssueWidgetToken(context.Background(), teamID, connID)
		require.NoError(t, err)

		// Origin is normalized to scheme://host
		assert.Equal(t, "https://example.com", install.WebsiteURL)
		assert.Contains(t, install.Snippet, install.Token)
		assert.Contains(t, install.Snippet, "cdn.converso.app/widget.js")

		// The minted token round-trips through the same verifier
		claims, err := svc.tokens.Verify(install.Token)
		require.NoError(t, err)
		assert.Equal(t, connID.String(), claims.ConnectionID)
		assert.Equal(t, "https://example.com", claims.WebsiteURL)
	})

	t.Run("whatsapp connections cannot mint widget tokens", func(t *testing.T) {
		connRepo := new(MockConnectionRepository)
		teamRepo := new(MockTeamRepository)
		svc := newTestConnectionService(t, connRepo, teamRepo, new(MockNotifier))

		conn := websiteConn()
		conn.Type = domain.ConnectionTypeWhatsApp
		connRepo.On("GetByTeamAndID", mock.Anything, teamID, connID).Return(conn, nil)

		_, err := svc.IssueWidgetToken(context.Background(), teamID, connID)
		assert.ErrorIs(t, err, domain.ErrWidgetNotSupported)
	})

	t.Run("missing website_url is a validation error", func(t *testing.T) {
		connRepo := new(MockConnectionRepository)
		teamRepo := new(MockTeamRepository)
		svc := newTestConnectionService(t, connRepo, teamRepo, new(MockNotifier))

		conn := websiteConn()
		conn.Config = map[string]interface{}{}
		connRepo.On("GetByTeamAndID", mock.Anything, teamID, connID).Return(conn, nil)

		_, err := svc.IssueWidgetToken(context.Background(), teamID, connID)
		require.Error(t, err)

		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("non-http scheme is rejected", func(t *testing.T) {
		connRepo := new(MockConnectionRepository)
		teamRepo := new(MockTeamRepository)
		svc := newTestConnectionService(t, connRepo, teamRepo, new(MockNotifier))

		conn := websiteConn()
		conn.Config["website_url"] = "ftp://example.com"
		connRepo.On("GetByTeamAndID", mock.Anything, teamID, connID).Return(conn, nil)

		_, err := svc.IssueWidgetToken(context.Background(), teamID, connID)
		require.Error(t, err)

		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestNormalizeOrigin(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		want    string
		wantErr bool
	}{
		{"plain https origin", "https://example.com", "https://example.com", false},
		{"path and query stripped", "https://example.com/pricing?a=1", "https://example.com", false},
		{"port preserved", "http://localhost:8080/x", "http://localhost:8080", false},
		{"empty", "", "", true},
		{"no scheme", "example.com", "", true},
		{"bad scheme", "ftp://example.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeOrigin(tt.origin)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConnectionService_Delete(t *testing.T) {
	teamID := uuid.New()
	connID := uuid.New()

	connRepo := new(MockConnectionRepository)
	teamRepo := new(MockTeamRepository)
	svc := newTestConnectionService(t, connRepo, teamRepo, new(MockNotifier))

	connRepo.On("Delete", mock.Anything, teamID, connID).Return(nil).Once()
	require.NoError(t, svc.Delete(context.Background(), teamID, connID))

	connRepo.On("Delete", mock.Anything, teamID, connID).Return(domain.ErrConnectionNotFound).Once()
	assert.True(t, errors.Is(svc.Delete(context.Background(), teamID, connID), domain.ErrConnectionNotFound))
}

func TestMultiDispatcher_ConnectionStatusChanged(t *testing.T) {
	team := &domain.Team{ID: uuid.New(), Name: "Acme"}
	conn := &domain.Connection{ID: uuid.New(), TeamID: team.ID, Status: domain.StatusError}

	t.Run("fans out to every dispatcher", func(t *testing.T) {
		first := new(MockNotifier)
		second := new(MockNotifier)
		first.On("ConnectionStatusChanged", mock.Anything, team, conn, domain.StatusConnected).Return(nil)
		second.On("ConnectionStatusChanged", mock.Anything, team, conn, domain.StatusConnected).Return(nil)

		md := MultiDispatcher{first, second}
		require.NoError(t, md.ConnectionStatusChanged(context.Background(), team, conn, domain.StatusConnected))

		first.AssertExpectations(t)
		second.AssertExpectations(t)
	})

	t.Run("one failing dispatcher does not stop the rest", func(t *testing.T) {
		first := new(MockNotifier)
		second := new(MockNotifier)
		first.On("ConnectionStatusChanged", mock.Anything, team, conn, domain.StatusConnected).
			Return(errors.New("queue full"))
		second.On("ConnectionStatusChanged", mock.Anything, team, conn, domain.StatusConnected).Return(nil)

		md := MultiDispatcher{first, second}
		err := md.ConnectionStatusChanged(context.Background(), team, conn, domain.StatusConnected)
		require.Error(t, err)

		second.AssertExpectations(t)
	})
}
