package domain

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Plan types
const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

var (
	validPlans = map[string]bool{
		PlanFree:       true,
		PlanPro:        true,
		PlanEnterprise: true,
	}

	slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Team is the tenant that owns connections and agents
type Team struct {
	ID        uuid.UUID              `json:"id"`
	Name      string                 `json:"name"`
	Slug      string                 `json:"slug"`
	IsActive  bool                   `json:"is_active"`
	Plan      string                 `json:"plan"`
	Settings  map[string]interface{} `json:"settings,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// TeamSettings contains typed per-team configuration
type TeamSettings struct {
	MaxConnections     int    `json:"max_connections"`
	NotifyOnDisconnect bool   `json:"notify_on_disconnect"`
	NotifyOnError      bool   `json:"notify_on_error"`
	NotificationEmail  string `json:"notification_email"`
}

// DefaultTeamSettings returns the settings applied when a team has none
func DefaultTeamSettings() TeamSettings {
	return TeamSettings{
		MaxConnections:     5,
		NotifyOnDisconnect: false,
		NotifyOnError:      true,
	}
}

// GetSettings returns typed team settings with defaults for missing values
func (t *Team) GetSettings() TeamSettings {
	defaults := DefaultTeamSettings()

	if t.Settings == nil {
		return defaults
	}

	if v, ok := t.Settings["max_connections"].(float64); ok {
		defaults.MaxConnections = int(v)
	}
	if v, ok := t.Settings["notify_on_disconnect"].(bool); ok {
		defaults.NotifyOnDisconnect = v
	}
	if v, ok := t.Settings["notify_on_error"].(bool); ok {
		defaults.NotifyOnError = v
	}
	if v, ok := t.Settings["notification_email"].(string); ok {
		defaults.NotificationEmail = v
	}

	return defaults
}

// Validate checks whether the team is well formed
func (t *Team) Validate() error {
	if t.Name == "" {
		return errors.New("team name cannot be empty")
	}

	if t.Slug == "" {
		return errors.New("team slug cannot be empty")
	}

	if !slugRegex.MatchString(t.Slug) {
		return errors.New("team slug must contain only lowercase letters, numbers and hyphens")
	}

	if !validPlans[t.Plan] {
		return errors.New("invalid plan type")
	}

	return nil
}

// IsValidPlan reports whether the plan is supported
func IsValidPlan(plan string) bool {
	return validPlans[plan]
}
