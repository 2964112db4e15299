package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/converso-hq/converso/internal/api/middleware"
	"github.com/converso-hq/converso/internal/domain"
	"github.com/converso-hq/converso/internal/service"
)

// ConnectionService interface for the service layer
type ConnectionService interface {
	Create(ctx context.Context, conn *domain.Connection) (*domain.Connection, error)
	Get(ctx context.Context, teamID, id uuid.UUID) (*domain.Connection, error)
	List(ctx context.Context, teamID uuid.UUID) ([]domain.Connection, error)
	Update(ctx context.Context, teamID, id uuid.UUID, update *domain.ConnectionUpdate) (*domain.Connection, error)
	Delete(ctx context.Context, teamID, id uuid.UUID) error
	IssueWidgetToken(ctx context.Context, teamID, id uuid.UUID) (*service.WidgetInstall, error)
}

// ConnectionHandler handles team-scoped connection management requests
type ConnectionHandler struct {
	service ConnectionService
	logger  *slog.Logger
}

func NewConnectionHandler(service ConnectionService, logger *slog.Logger) *ConnectionHandler {
	return &ConnectionHandler{
		service: service,
		logger:  logger,
	}
}

// CreateConnectionRequest request for creating a connection
type CreateConnectionRequest struct {
	Name   string                 `json:"name"`
	Type   string                 `json:"type"`
	Status string                 `json:"status,omitempty"`
	Config map[string]interface{} `json:"config,omitempty"`
}

// ConnectionResponse is the wire shape of a connection
type ConnectionResponse struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Type      string                 `json:"type"`
	Status    string                 `json:"status"`
	Config    map[string]interface{} `json:"config,omitempty"`
	CreatedAt string                 `json:"created_at"`
	UpdatedAt string                 `json:"updated_at"`
}

func toConnectionResponse(conn *domain.Connection) ConnectionResponse {
	return ConnectionResponse{
		ID:        conn.ID.String(),
		Name:      conn.Name,
		Type:      conn.Type,
		Status:    conn.Status,
		Config:    conn.Config,
		CreatedAt: conn.CreatedAt.Format(time.RFC3339),
		UpdatedAt: conn.UpdatedAt.Format(time.RFC3339),
	}
}

// Create POST /v1/connections - create a new connection
// @Summary Create connection
// @Description Creates a new integration channel for the authenticated team
// @Tags connections
// @Accept json
// @Produce json
// @Param request body CreateConnectionRequest true "Connection creation request"
// @Success 201 {object} ConnectionResponse
// @Failure 401 {object} domain.AppError
// @Failure 422 {object} domain.AppError
// @Router /v1/connections [post]
func (h *ConnectionHandler) Create(c *fiber.Ctx) error {
	teamID, err := middleware.GetTeamID(c)
	if err != nil {
		return err
	}

	var req CreateConnectionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	conn := &domain.Connection{
		TeamID: teamID,
		Name:   req.Name,
		Type:   req.Type,
		Status: req.Status,
		Config: req.Config,
	}

	created, err := h.service.Create(c.Context(), conn)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(toConnectionResponse(created))
}

// List GET /v1/connections - list the team's connections
// @Summary List connections
// @Tags connections
// @Produce json
// @Success 200 {array} ConnectionResponse
// @Failure 401 {object} domain.AppError
// @Router /v1/connections [get]
func (h *ConnectionHandler) List(c *fiber.Ctx) error {
	teamID, err := middleware.GetTeamID(c)
	if err != nil {
		return err
	}

	connections, err := h.service.List(c.Context(), teamID)
	if err != nil {
		return err
	}

	resp := make([]ConnectionResponse, 0, len(connections))
	for i := range connections {
		resp = append(resp, toConnectionResponse(&connections[i]))
	}

	return c.JSON(resp)
}

// Get GET /v1/connections/:id - fetch one connection
// @Summary Get connection
// @Tags connections
// @Produce json
// @Param id path string true "Connection ID"
// @Success 200 {object} ConnectionResponse
// @Failure 404 {object} domain.AppError
// @Router /v1/connections/{id} [get]
func (h *ConnectionHandler) Get(c *fiber.Ctx) error {
	teamID, err := middleware.GetTeamID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrConnectionNotFound
	}

	conn, err := h.service.Get(c.Context(), teamID, id)
	if err != nil {
		return err
	}

	return c.JSON(toConnectionResponse(conn))
}

// Update PATCH /v1/connections/:id - partial update
// @Summary Update connection
// @Description Applies a partial update. The connection type is immutable.
// @Tags connections
// @Accept json
// @Produce json
// @Param id path string true "Connection ID"
// @Param request body domain.ConnectionUpdate true "Partial update"
// @Success 200 {object} ConnectionResponse
// @Failure 404 {object} domain.AppError
// @Failure 422 {object} domain.AppError
// @Router /v1/connections/{id} [patch]
func (h *ConnectionHandler) Update(c *fiber.Ctx) error {
	teamID, err := middleware.GetTeamID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrConnectionNotFound
	}

	// Type changes are rejected before the partial update is applied
	var probe map[string]interface{}
	if err := c.BodyParser(&probe); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	if _, ok := probe["type"]; ok {
		return domain.ErrConnectionTypeImmutable
	}

	var update domain.ConnectionUpdate
	if err := c.BodyParser(&update); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	conn, err := h.service.Update(c.Context(), teamID, id, &update)
	if err != nil {
		return err
	}

	return c.JSON(toConnectionResponse(conn))
}

// Delete DELETE /v1/connections/:id
// @Summary Delete connection
// @Description Removes a connection. Widget tokens issued for it stop
// @Description authenticating once the registry lookup fails.
// @Tags connections
// @Param id path string true "Connection ID"
// @Success 204
// @Failure 404 {object} domain.AppError
// @Router /v1/connections/{id} [delete]
func (h *ConnectionHandler) Delete(c *fiber.Ctx) error {
	teamID, err := middleware.GetTeamID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrConnectionNotFound
	}

	if err := h.service.Delete(c.Context(), teamID, id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// IssueWidgetToken POST /v1/connections/:id/widget-token - install boundary
// @Summary Issue widget token
// @Description Mints the signed widget token and bootstrap snippet for a website connection
// @Tags connections
// @Produce json
// @Param id path string true "Connection ID"
// @Success 201 {object} service.WidgetInstall
// @Failure 404 {object} domain.AppError
// @Failure 422 {object} domain.AppError
// @Router /v1/connections/{id}/widget-token [post]
func (h *ConnectionHandler) IssueWidgetToken(c *fiber.Ctx) error {
	teamID, err := middleware.GetTeamID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrConnectionNotFound
	}

	install, err := h.service.IssueWidgetToken(c.Context(), teamID, id)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(install)
}
