package domain

import (
	"time"

	"github.com/google/uuid"
)

// Connection types
const (
	ConnectionTypeWhatsApp = "whatsapp"
	ConnectionTypeWebsite  = "website"
)

// Connection statuses
const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
	StatusError        = "error"
)

var (
	validConnectionTypes = map[string]bool{
		ConnectionTypeWhatsApp: true,
		ConnectionTypeWebsite:  true,
	}
	validConnectionStatuses = map[string]bool{
		StatusConnected:    true,
		StatusDisconnected: true,
		StatusError:        true,
	}
)

// Connection represents one integration channel owned by a team:
// a WhatsApp number or a website chat widget
type Connection struct {
	ID        uuid.UUID              `json:"id"`
	TeamID    uuid.UUID              `json:"team_id"`
	Name      string                 `json:"name"`
	Type      string                 `json:"type"`
	Status    string                 `json:"status"`
	Config    map[string]interface{} `json:"config,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// ConnectionUpdate is a partial update; nil fields are left untouched.
// Type is deliberately absent: it is immutable after creation.
type ConnectionUpdate struct {
	Name   *string                `json:"name,omitempty"`
	Status *string                `json:"status,omitempty"`
	Config map[string]interface{} `json:"config,omitempty"`
}

// WebsiteConfig is the typed view of Config for website connections
type WebsiteConfig struct {
	WebsiteURL  string `json:"website_url"`
	ThemeColor  string `json:"theme_color"`
	Position    string `json:"position"`
	WelcomeText string `json:"welcome_text"`
}

// WhatsAppConfig is the typed view of Config for whatsapp connections
type WhatsAppConfig struct {
	PhoneNumber   string `json:"phone_number"`
	BusinessID    string `json:"business_id"`
	WebhookSecret string `json:"webhook_secret"`
}

// ValidateForCreate checks the connection shape before it is persisted.
// All violations are accumulated into a single ValidationError.
// Status defaults to disconnected when omitted.
func (c *Connection) ValidateForCreate() error {
	verr := &ValidationError{}

	if c.TeamID == uuid.Nil {
		verr.Add("team_id", "team_id is required")
	}

	if c.Name == "" {
		verr.Add("name", "name is required")
	}

	if !validConnectionTypes[c.Type] {
		verr.Add("type", "type must be one of: whatsapp, website")
	}

	if c.Status == "" {
		c.Status = StatusDisconnected
	} else if !validConnectionStatuses[c.Status] {
		verr.Add("status", "status must be one of: connected, disconnected, error")
	}

	return verr.ErrOrNil()
}

// Validate checks only the fields present in the partial update
func (u *ConnectionUpdate) Validate() error {
	verr := &ValidationError{}

	if u.Name != nil && *u.Name == "" {
		verr.Add("name", "name cannot be empty")
	}

	if u.Status != nil && !validConnectionStatuses[*u.Status] {
		verr.Add("status", "status must be one of: connected, disconnected, error")
	}

	return verr.ErrOrNil()
}

// IsWidgetCapable reports whether widget tokens can be issued for this connection
func (c *Connection) IsWidgetCapable() bool {
	return c.Type == ConnectionTypeWebsite
}

// GetWebsiteConfig returns the typed website config, parsing the opaque map.
// Missing keys come back as zero values; the core validation layer does not
// enforce a per-type schema.
func (c *Connection) GetWebsiteConfig() WebsiteConfig {
	var cfg WebsiteConfig

	if c.Config == nil {
		return cfg
	}

	if v, ok := c.Config["website_url"].(string); ok {
		cfg.WebsiteURL = v
	}
	if v, ok := c.Config["theme_color"].(string); ok {
		cfg.ThemeColor = v
	}
	if v, ok := c.Config["position"].(string); ok {
		cfg.Position = v
	}
	if v, ok := c.Config["welcome_text"].(string); ok {
		cfg.WelcomeText = v
	}

	return cfg
}

// GetWhatsAppConfig returns the typed whatsapp config, parsing the opaque map
func (c *Connection) GetWhatsAppConfig() WhatsAppConfig {
	var cfg WhatsAppConfig

	if c.Config == nil {
		return cfg
	}

	if v, ok := c.Config["phone_number"].(string); ok {
		cfg.PhoneNumber = v
	}
	if v, ok := c.Config["business_id"].(string); ok {
		cfg.BusinessID = v
	}
	if v, ok := c.Config["webhook_secret"].(string); ok {
		cfg.WebhookSecret = v
	}

	return cfg
}

// IsValidConnectionType reports whether the type is supported
func IsValidConnectionType(t string) bool {
	return validConnectionTypes[t]
}
