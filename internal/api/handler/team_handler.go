package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/converso-hq/converso/internal/api/middleware"
	"github.com/converso-hq/converso/internal/domain"
)

// InvitationDispatcher delivers team invitation email
type InvitationDispatcher interface {
	TeamInvitation(ctx context.Context, team *domain.Team, recipient, inviteURL string) error
}

// TeamHandler handles team-level operations
type TeamHandler struct {
	notifier InvitationDispatcher
	baseURL  string
	logger   *slog.Logger
}

func NewTeamHandler(notifier InvitationDispatcher, baseURL string, logger *slog.Logger) *TeamHandler {
	return &TeamHandler{
		notifier: notifier,
		baseURL:  baseURL,
		logger:   logger,
	}
}

// InviteRequest request for inviting a member
type InviteRequest struct {
	Email string `json:"email"`
}

// Invite POST /v1/team/invitations - send a team invitation email
// @Summary Invite team member
// @Tags team
// @Accept json
// @Param request body InviteRequest true "Invitation request"
// @Success 202
// @Failure 401 {object} domain.AppError
// @Failure 422 {object} domain.AppError
// @Router /v1/team/invitations [post]
func (h *TeamHandler) Invite(c *fiber.Ctx) error {
	team, err := middleware.GetTeam(c)
	if err != nil {
		return err
	}

	var req InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.ErrValidationFailed.WithError(errors.New("a valid email is required"))
	}

	inviteURL := h.baseURL + "/join/" + team.Slug
	if err := h.notifier.TeamInvitation(c.Context(), team, email, inviteURL); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusAccepted)
}
