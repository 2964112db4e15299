package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/converso-hq/converso/internal/config"
	"github.com/converso-hq/converso/internal/database"
	"github.com/converso-hq/converso/internal/domain"
	"github.com/converso-hq/converso/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	env := flag.String("env", domain.EnvLive, "Key environment: live or test")
	teamID := flag.String("team", "", "Team ID to attach the key to (optional, prints only when empty)")
	name := flag.String("name", "default", "Key name shown in the dashboard")
	flag.Parse()

	key, hash, prefix, err := domain.GenerateAPIKey(*env)
	if err != nil {
		return err
	}

	fmt.Printf("KEY=%s\nHASH=%s\nPREFIX=%s\n", key, hash, prefix)

	if *teamID == "" {
		return nil
	}

	id, err := uuid.Parse(*teamID)
	if err != nil {
		return fmt.Errorf("invalid team id: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := context.Background()
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	apiKey := &domain.APIKey{
		TeamID:      id,
		Name:        *name,
		KeyHash:     hash,
		KeyPrefix:   prefix,
		Environment: *env,
		IsActive:    true,
	}
	if err := repository.NewAPIKeyRepository(pool).Create(ctx, apiKey); err != nil {
		return fmt.Errorf("failed to store key: %w", err)
	}

	fmt.Printf("stored key %s for team %s\n", apiKey.ID, id)
	return nil
}
