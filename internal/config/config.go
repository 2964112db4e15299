package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Security
	// WidgetTokenSecret signs widget tokens. Rotating it invalidates every
	// token ever issued; absence is a fatal startup error.
	WidgetTokenSecret string `envconfig:"WIDGET_TOKEN_SECRET" required:"true"`
	TokenIssuer       string `envconfig:"TOKEN_ISSUER" default:"converso-api"`

	// Notifications
	EmailFrom  string `envconfig:"EMAIL_FROM" default:"no-reply@converso.app"`
	AWSRegion  string `envconfig:"AWS_REGION" default:"us-east-1"`
	AppBaseURL string `envconfig:"APP_BASE_URL" default:"https://app.converso.app"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
