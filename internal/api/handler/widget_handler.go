package handler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/converso-hq/converso/internal/domain"
	"github.com/converso-hq/converso/internal/widget"
)

// WidgetAuthenticator resolves a widget token to the connection it belongs to
type WidgetAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Connection, *widget.Claims, error)
}

// WidgetHandler is the backend entry point for embedded widgets
type WidgetHandler struct {
	service WidgetAuthenticator
	logger  *slog.Logger
}

func NewWidgetHandler(service WidgetAuthenticator, logger *slog.Logger) *WidgetHandler {
	return &WidgetHandler{
		service: service,
		logger:  logger,
	}
}

// WidgetAuthResponse is returned to the widget after a successful handshake
type WidgetAuthResponse struct {
	ConnectionID string                 `json:"connection_id"`
	WebsiteURL   string                 `json:"website_url"`
	Status       string                 `json:"status"`
	WidgetConfig map[string]interface{} `json:"widget_config,omitempty"`
}

// Auth POST /v1/widget/auth - widget runtime handshake
// @Summary Authenticate widget
// @Description Validates the widget token presented by embedded client-side code
// @Tags widget
// @Produce json
// @Success 200 {object} WidgetAuthResponse
// @Failure 401 {object} domain.AppError
// @Failure 403 {object} domain.AppError
// @Router /v1/widget/auth [post]
func (h *WidgetHandler) Auth(c *fiber.Ctx) error {
	// The token arrives in the Authorization header or, for script-tag
	// bootstraps that cannot set headers, as a query parameter
	token := extractWidgetToken(c)
	if token == "" {
		return domain.ErrInvalidWidgetToken
	}

	conn, claims, err := h.service.Authenticate(c.Context(), token)
	if err != nil {
		return err
	}

	return c.JSON(WidgetAuthResponse{
		ConnectionID: conn.ID.String(),
		WebsiteURL:   claims.WebsiteURL,
		Status:       conn.Status,
		WidgetConfig: conn.Config,
	})
}

func extractWidgetToken(c *fiber.Ctx) string {
	auth := c.Get("Authorization")
	if auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	return strings.TrimSpace(c.Query("token"))
}
