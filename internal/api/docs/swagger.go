package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// ConnectionData is the wire shape of a connection
type ConnectionData struct {
	ID        string                 `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name      string                 `json:"name" example:"Landing page widget"`
	Type      string                 `json:"type" example:"website"`
	Status    string                 `json:"status" example:"connected"`
	Config    map[string]interface{} `json:"config,omitempty"`
	CreatedAt string                 `json:"created_at" example:"2024-01-01T00:00:00Z"`
	UpdatedAt string                 `json:"updated_at" example:"2024-01-01T00:00:00Z"`
}

// CreateConnectionData is the request body for connection creation
type CreateConnectionData struct {
	Name   string                 `json:"name" example:"Landing page widget"`
	Type   string                 `json:"type" example:"website"`
	Config map[string]interface{} `json:"config,omitempty"`
}

// WidgetInstallData is returned by the widget token endpoint
type WidgetInstallData struct {
	Token      string `json:"token" example:"eyJhbGciOiJIUzI1NiJ9..."`
	WebsiteURL string `json:"website_url" example:"https://example.com"`
	Snippet    string `json:"snippet"`
}

// WidgetAuthData is returned by the widget handshake
type WidgetAuthData struct {
	ConnectionID string                 `json:"connection_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	WebsiteURL   string                 `json:"website_url" example:"https://example.com"`
	Status       string                 `json:"status" example:"connected"`
	WidgetConfig map[string]interface{} `json:"widget_config,omitempty"`
}

// InviteData is the request body for a team invitation
type InviteData struct {
	Email string `json:"email" example:"teammate@example.com"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Converso API",
		Version:     "v1.0.0",
		Description: "Multi-tenant backend for AI chat agents: connections, widget authentication, team notifications",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /v1/connections
		endpoint.New(
			endpoint.POST,
			"/connections",
			endpoint.WithTags("Connections"),
			endpoint.WithSummary("Create a connection"),
			endpoint.WithDescription("Creates a new integration channel (whatsapp or website) for the authenticated team."),
			endpoint.WithBody(CreateConnectionData{}),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ConnectionData{}, "201", "Connection created"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// GET /v1/connections
		endpoint.New(
			endpoint.GET,
			"/connections",
			endpoint.WithTags("Connections"),
			endpoint.WithSummary("List connections"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]ConnectionData{}, "200", "Connections listed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// GET /v1/connections/{id}
		endpoint.New(
			endpoint.GET,
			"/connections/{id}",
			endpoint.WithTags("Connections"),
			endpoint.WithSummary("Get a connection"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Connection ID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ConnectionData{}, "200", "Connection found"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "CONNECTION_NOT_FOUND", Message: "Connection not found"}, "404", "Not Found"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// PATCH /v1/connections/{id}
		endpoint.New(
			endpoint.PATCH,
			"/connections/{id}",
			endpoint.WithTags("Connections"),
			endpoint.WithSummary("Update a connection"),
			endpoint.WithDescription("Applies a partial update. The connection type is immutable after creation."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Connection ID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ConnectionData{}, "200", "Connection updated"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "CONNECTION_TYPE_IMMUTABLE", Message: "Connection type cannot be changed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "CONNECTION_NOT_FOUND", Message: "Connection not found"}, "404", "Not Found"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// DELETE /v1/connections/{id}
		endpoint.New(
			endpoint.DELETE,
			"/connections/{id}",
			endpoint.WithTags("Connections"),
			endpoint.WithSummary("Delete a connection"),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Connection ID")),
			),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "CONNECTION_NOT_FOUND", Message: "Connection not found"}, "404", "Not Found"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/connections/{id}/widget-token
		endpoint.New(
			endpoint.POST,
			"/connections/{id}/widget-token",
			endpoint.WithTags("Widget"),
			endpoint.WithSummary("Issue a widget token"),
			endpoint.WithDescription("Mints the signed, long-lived widget token and bootstrap snippet for a website connection."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Connection ID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(WidgetInstallData{}, "201", "Token issued"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "WIDGET_NOT_SUPPORTED", Message: "Connection type does not support widget tokens"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "CONNECTION_NOT_FOUND", Message: "Connection not found"}, "404", "Not Found"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/widget/auth
		endpoint.New(
			endpoint.POST,
			"/widget/auth",
			endpoint.WithTags("Widget"),
			endpoint.WithSummary("Authenticate an embedded widget"),
			endpoint.WithDescription("Validates the widget token presented by embedded client-side code and returns the connection it belongs to. Malformed, tampered and expired tokens all fail identically."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("token", parameter.Query, parameter.WithDescription("Widget token (alternative to the Authorization header)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(WidgetAuthData{}, "200", "Widget authenticated"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_WIDGET_TOKEN", Message: "Invalid or expired widget token"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "CONNECTION_UNAVAILABLE", Message: "Connection is not available"}, "403", "Forbidden"),
			}),
		),

		// POST /v1/team/invitations
		endpoint.New(
			endpoint.POST,
			"/team/invitations",
			endpoint.WithTags("Team"),
			endpoint.WithSummary("Invite a team member"),
			endpoint.WithBody(InviteData{}),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "A valid email is required"}, "422", "Unprocessable Entity"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
