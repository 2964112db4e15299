package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/converso-hq/converso/internal/api/middleware"
	"github.com/converso-hq/converso/internal/domain"
)

// APIKeyRepository interface for key management
type APIKeyRepository interface {
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.APIKey, error)
	Revoke(ctx context.Context, id uuid.UUID) error
}

// APIKeyHandler handles API key management for the dashboard
type APIKeyHandler struct {
	repo   APIKeyRepository
	logger *slog.Logger
}

func NewAPIKeyHandler(repo APIKeyRepository, logger *slog.Logger) *APIKeyHandler {
	return &APIKeyHandler{
		repo:   repo,
		logger: logger,
	}
}

// List GET /v1/api-keys - list the team's API keys
// @Summary List API keys
// @Tags api-keys
// @Produce json
// @Success 200 {array} domain.APIKey
// @Failure 401 {object} domain.AppError
// @Router /v1/api-keys [get]
func (h *APIKeyHandler) List(c *fiber.Ctx) error {
	teamID, err := middleware.GetTeamID(c)
	if err != nil {
		return err
	}

	keys, err := h.repo.ListByTeam(c.Context(), teamID)
	if err != nil {
		return err
	}

	return c.JSON(keys)
}

// Revoke DELETE /v1/api-keys/:id - revoke a key
// @Summary Revoke API key
// @Tags api-keys
// @Param id path string true "API key ID"
// @Success 204
// @Failure 404 {object} domain.AppError
// @Router /v1/api-keys/{id} [delete]
func (h *APIKeyHandler) Revoke(c *fiber.Ctx) error {
	teamID, err := middleware.GetTeamID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrAPIKeyNotFound
	}

	keys, err := h.repo.ListByTeam(c.Context(), teamID)
	if err != nil {
		return err
	}

	// Keys can only be revoked by the owning team
	for _, key := range keys {
		if key.ID == id {
			return revokeAndRespond(c, h.repo, id)
		}
	}

	return domain.ErrAPIKeyNotFound
}

func revokeAndRespond(c *fiber.Ctx, repo APIKeyRepository, id uuid.UUID) error {
	if err := repo.Revoke(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
