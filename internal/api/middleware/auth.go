package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/converso-hq/converso/internal/domain"
)

const (
	// LocalTeamID is the key to retrieve team_id from context
	LocalTeamID = "team_id"
	// LocalTeam is the key to retrieve the full team from context
	LocalTeam = "team"
)

// TeamRepository interface for team lookup
type TeamRepository interface {
	GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*domain.Team, error)
}

// Auth creates an authentication middleware using API Key.
// usage may be nil; when present, successful auths feed last_used_at updates.
func Auth(teamRepo TeamRepository, usage *LastUsedWorker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Extract Bearer token
		apiKey := extractBearerToken(c)
		if apiKey == "" {
			return domain.ErrUnauthorized
		}

		// 2. Generate API Key hash
		hash := hashAPIKey(apiKey)

		// 3. Lookup team by hash
		team, err := teamRepo.GetByAPIKeyHash(c.Context(), hash)
		if err != nil {
			// Any error (not found or DB error) returns 401
			// Don't reveal whether the API key exists or not
			return domain.ErrUnauthorized
		}

		// 4. Verify team is active
		if !team.IsActive {
			return domain.ErrUnauthorized
		}

		// 5. Set team in context
		c.Locals(LocalTeamID, team.ID)
		c.Locals(LocalTeam, team)

		if usage != nil {
			usage.Enqueue(hash)
		}

		return c.Next()
	}
}

// extractBearerToken extracts token from Authorization header
func extractBearerToken(c *fiber.Ctx) string {
	auth := c.Get("Authorization")
	if auth == "" {
		return ""
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// hashAPIKey generates SHA-256 hash of API Key
func hashAPIKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(hash[:])
}

// GetTeamID retrieves team_id from Fiber context
func GetTeamID(c *fiber.Ctx) (uuid.UUID, error) {
	teamID, ok := c.Locals(LocalTeamID).(uuid.UUID)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return teamID, nil
}

// GetTeam retrieves full team from Fiber context
func GetTeam(c *fiber.Ctx) (*domain.Team, error) {
	team, ok := c.Locals(LocalTeam).(*domain.Team)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return team, nil
}
