package notification

import (
	"time"

	"github.com/google/uuid"
)

// Email statuses in the delivery queue
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Email is one queued transactional message
type Email struct {
	ID          uuid.UUID  `json:"id"`
	TeamID      uuid.UUID  `json:"team_id"`
	Recipient   string     `json:"recipient"`
	Subject     string     `json:"subject"`
	BodyText    string     `json:"body_text"`
	BodyHTML    string     `json:"body_html"`
	Kind        string     `json:"kind"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`
	NextRetryAt *time.Time `json:"next_retry_at,omitempty"`
	Status      string     `json:"status"`
	LastError   string     `json:"last_error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Email kinds
const (
	KindTeamInvitation   = "team.invitation"
	KindConnectionStatus = "connection.status_changed"
)
