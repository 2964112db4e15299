// Offline widget token minting for support and local development.
// Uses the same signing path as the API, so output is interchangeable
// with tokens issued over HTTP.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/converso-hq/converso/internal/config"
	"github.com/converso-hq/converso/internal/widget"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	connectionID := flag.String("connection", "", "Connection ID to embed in the token")
	websiteURL := flag.String("url", "", "Website origin the widget is installed on")
	ttl := flag.Duration("ttl", 0, "Token lifetime (default: the standard widget lifetime)")
	verify := flag.String("verify", "", "Verify an existing token instead of minting one")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	tokens, err := widget.NewTokenService(cfg.WidgetTokenSecret, cfg.TokenIssuer)
	if err != nil {
		return err
	}

	if *verify != "" {
		claims, err := tokens.Verify(*verify)
		if err != nil {
			return err
		}
		fmt.Printf("connection=%s\nwebsite_url=%s\nexpires=%s\n",
			claims.ConnectionID, claims.WebsiteURL, claims.ExpiresAt.Time.Format(time.RFC3339))
		return nil
	}

	if *connectionID == "" {
		return fmt.Errorf("connection flag is required")
	}

	var token string
	if *ttl > 0 {
		token, err = tokens.IssueWithTTL(*connectionID, *websiteURL, *ttl)
	} else {
		token, err = tokens.Issue(*connectionID, *websiteURL)
	}
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
