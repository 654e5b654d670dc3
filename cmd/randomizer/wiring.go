package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"github.com/ArowuTest/ema-randomizer/internal/config"
	"github.com/ArowuTest/ema-randomizer/internal/models"
	"github.com/ArowuTest/ema-randomizer/internal/repositories"
	"github.com/ArowuTest/ema-randomizer/internal/repositories/memory"
	mongorepo "github.com/ArowuTest/ema-randomizer/internal/repositories/mongodb"
	"github.com/ArowuTest/ema-randomizer/internal/services"
	"github.com/ArowuTest/ema-randomizer/pkg/mdh"
	"github.com/ArowuTest/ema-randomizer/pkg/mongodb"
	"github.com/ArowuTest/ema-randomizer/pkg/secrets"
)

// loadConfig loads configuration and installs the default logger
func loadConfig() (*config.Config, error) {
	var paths []string
	if configPath != "" {
		paths = append(paths, configPath)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogger(cfg.LogLevel)
	return cfg, nil
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// buildDirectory returns the participant directory and the project to run against
func buildDirectory(ctx context.Context, cfg *config.Config, rng *rand.Rand) (repositories.ParticipantDirectory, string, error) {
	if cfg.MDH.MockAPI {
		log.Printf("Using mock participant directory with %d participants", cfg.MDH.MockSize)
		return mdh.NewMockDirectory(rng, cfg.MDH.MockSize), "mock-project", nil
	}

	var getter secrets.SecretGetter
	if cfg.IsProduction() {
		manager, err := secrets.NewManager(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, "", err
		}
		getter = manager
	} else {
		log.Println("Using MDH credentials from environment variables")
	}

	creds, err := config.ResolveCredentials(ctx, cfg, getter)
	if err != nil {
		return nil, "", err
	}
	client, err := mdh.NewClient(mdh.Config{
		BaseURL:        cfg.MDH.BaseURL,
		TokenURL:       cfg.MDH.TokenURL,
		ServiceAccount: creds.ServiceAccount,
		PrivateKey:     creds.PrivateKey,
		PageSize:       cfg.MDH.PageSize,
		Timeout:        time.Duration(cfg.MDH.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, "", err
	}
	return client, creds.ProjectID, nil
}

// buildAuditRepository returns the Mongo audit trail when configured, otherwise an in-memory one
func buildAuditRepository(ctx context.Context, cfg *config.Config) (repositories.DrawAuditRepository, func(), error) {
	if cfg.MongoDB.URI == "" {
		return memory.NewDrawAuditRepository(), func() {}, nil
	}
	client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}
	return mongorepo.NewDrawAuditRepository(client.Database(cfg.MongoDB.Database)), cleanup, nil
}

// buildService wires the assignment service from configuration
func buildService(ctx context.Context, cfg *config.Config) (*services.AssignmentServiceImpl, repositories.DrawAuditRepository, func(), error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	directory, projectID, err := buildDirectory(ctx, cfg, rng)
	if err != nil {
		return nil, nil, nil, err
	}
	auditRepo, cleanup, err := buildAuditRepository(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	svc := services.NewAssignmentService(directory, auditRepo, rng, services.AssignmentOptions{
		ProjectID:      projectID,
		Fields:         cfg.FieldNames(),
		BoundScope:     models.BoundScope(cfg.Randomizer.BoundScope),
		MaxAttempts:    cfg.Randomizer.MaxAttempts,
		AbortOnInvalid: cfg.Randomizer.AbortOnInvalid,
		DryRun:         cfg.Randomizer.DryRun,
	})
	return svc, auditRepo, cleanup, nil
}
