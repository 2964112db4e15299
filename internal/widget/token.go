// Package widget implements the widget authentication tokens: signed,
// long-lived credentials that let client-side code embedded on a third-party
// site prove it belongs to a specific connection.
package widget

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/converso-hq/converso/internal/domain"
)

const (
	// DefaultTokenTTL is the lifetime applied when Issue is called without
	// an explicit TTL. Widget tokens are embedded in customer sites and are
	// expected to stay valid for a long time; rotating the signing secret is
	// the only global revocation path.
	DefaultTokenTTL = 2 * 365 * 24 * time.Hour

	// minSecretLength enforces a 256-bit secret for HS256
	minSecretLength = 32
)

// ErrSigningUnavailable is returned by NewTokenService when the signing
// secret is missing or too short. This is a startup-time fault: the process
// must not come up without a usable secret.
var ErrSigningUnavailable = errors.New("widget token signing secret is missing or shorter than 32 bytes")

// ErrMissingTokenScope is returned when issuance is attempted without a
// connection or an origin. Tokens are always scoped to both; an unscoped
// token would be accepted by any widget on any site.
var ErrMissingTokenScope = errors.New("widget token requires a connection id and a website origin")

// Claims is the claim set carried by a widget token. ConnectionID and
// WebsiteURL are fixed at issuance and never change afterwards.
type Claims struct {
	ConnectionID string `json:"connection_id"`
	WebsiteURL   string `json:"website_url"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies widget tokens. It holds no mutable state
// beyond the secret loaded at construction, so it is safe for concurrent use.
type TokenService struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
}

// NewTokenService creates a token service bound to a signing secret.
// Fails with ErrSigningUnavailable if the secret is absent or under 256 bits.
func NewTokenService(secretKey, issuer string) (*TokenService, error) {
	if len(secretKey) < minSecretLength {
		return nil, ErrSigningUnavailable
	}

	return &TokenService{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		ttl:       DefaultTokenTTL,
	}, nil
}

// Issue mints a widget token for a connection scoped to a website origin,
// valid for the default TTL
func (s *TokenService) Issue(connectionID, websiteURL string) (string, error) {
	return s.IssueWithTTL(connectionID, websiteURL, s.ttl)
}

// IssueWithTTL mints a widget token with an explicit lifetime
func (s *TokenService) IssueWithTTL(connectionID, websiteURL string, ttl time.Duration) (string, error) {
	if connectionID == "" || websiteURL == "" {
		return "", ErrMissingTokenScope
	}

	now := time.Now()
	claims := Claims{
		ConnectionID: connectionID,
		WebsiteURL:   websiteURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   connectionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", domain.ErrInternal.WithError(err)
	}

	return signed, nil
}

// Verify validates a widget token and returns its claims. Every failure mode
// (malformed structure, bad signature, expired) collapses to
// domain.ErrInvalidWidgetToken so a forged-token sender learns nothing about
// why it was rejected. The underlying cause is kept on the wrapped error for
// internal diagnostics only; it is never serialized in responses.
//
// A successful Verify only proves the token was minted by this system and is
// unexpired. Callers must still confirm the referenced connection exists.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secretKey, nil
	})

	if err != nil {
		return nil, domain.ErrInvalidWidgetToken.WithError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidWidgetToken
	}

	if claims.ConnectionID == "" {
		return nil, domain.ErrInvalidWidgetToken
	}

	return claims, nil
}
