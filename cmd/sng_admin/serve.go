package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jonathan/sng-admin/internal/assets"
	"github.com/jonathan/sng-admin/internal/audit"
	"github.com/jonathan/sng-admin/internal/clock"
	"github.com/jonathan/sng-admin/internal/config"
	"github.com/jonathan/sng-admin/internal/content"
	"github.com/jonathan/sng-admin/internal/experience"
	"github.com/jonathan/sng-admin/internal/schemas"
	"github.com/jonathan/sng-admin/internal/server"
	"github.com/jonathan/sng-admin/internal/session"
	"github.com/jonathan/sng-admin/internal/storage"
	"github.com/jonathan/sng-admin/internal/types"
	"github.com/spf13/cobra"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin API server",
	Long:  `Start an HTTP server exposing the public content endpoints and the authenticated admin API.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides ADMIN_API_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger := newLogger(os.Stderr, cfg.Log, cfg.Production)
	slog.SetDefault(logger)

	srv, cleanup, err := buildServer(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	return srv.Start()
}

// buildServer wires the storage, session, content and asset components
// into a server. cleanup releases the Redis connection when one was opened.
func buildServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*server.Server, func(), error) {
	warnAboutConfig(cfg, logger)

	backend, kv, err := storage.NewBackend(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage backend: %w", err)
	}
	cleanup := func() {}
	if kv != nil {
		cleanup = func() {
			if err := kv.Close(); err != nil {
				logger.Warn("failed to close redis client", "error", err)
			}
		}
		if err := kv.Ping(ctx); err != nil {
			logger.Warn("redis is not reachable yet, requests will fail until it is", "error", err)
		}
	}

	var sessionStore session.Store = session.NewMemoryStore()
	if cfg.Storage.SessionStore == "redis" {
		if kv == nil {
			cleanup()
			return nil, nil, errors.New("SESSION_STORE=redis requires KV_URL or REDIS_URL")
		}
		sessionStore = session.NewRedisStore(kv.Client())
	}

	clk := clock.RealClock{}
	ids := clock.UUIDGenerator{}

	manager, err := session.NewManager(cfg.Admin, cfg.JWT, sessionStore, clk, ids)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	assetBackend, err := assets.NewBackend(ctx, cfg.Assets, cfg.Serverless)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create asset backend: %w", err)
	}
	if assetBackend == nil {
		logger.Warn("uploads are disabled: serverless runtime without S3_BUCKET")
	}

	store := storage.NewStore(backend)
	refs := storage.DefaultRefs(cfg.Storage.DataDir)
	validator := schemas.New()
	auditLog := audit.New(logger, clk)
	merger := experience.NewMerger(store, refs.Projects, storage.NewFileBackend(), refs.Experience, clk, logger)

	srv := server.New(server.Deps{
		Config:   cfg,
		Sessions: manager,
		Projects: content.NewCollection(store, validator, auditLog, content.Options[types.Project]{
			Resource: "projects",
			Ref:      refs.Projects,
			Unique:   []content.UniqueField[types.Project]{{Name: "slug", Value: func(p types.Project) string { return p.Slug }}},
			List:     merger.List,
		}),
		Vacancies: content.NewCollection(store, validator, auditLog, content.Options[types.Vacancy]{
			Resource: "vacancies",
			Ref:      refs.Vacancies,
			Unique:   []content.UniqueField[types.Vacancy]{{Name: "slug", Value: func(v types.Vacancy) string { return v.Slug }}},
		}),
		Documents: content.NewCollection(store, validator, auditLog, content.Options[types.DocumentItem]{
			Resource: "documents",
			Ref:      refs.Documents,
		}),
		Settings:  content.NewSettings(store, validator, auditLog, logger, refs.SiteSettings),
		Assets:    assets.NewService(assetBackend, auditLog, clk, ids, logger),
		Audit:     auditLog,
		Validator: validator,
		Logger:    logger,
	})

	logger.Info("admin api configured",
		"storage", store.BackendName(),
		"sessions", cfg.Storage.SessionStore,
		"uploads", assetBackendName(assetBackend),
		"serverless", cfg.Serverless,
	)
	return srv, cleanup, nil
}

func warnAboutConfig(cfg *config.Config, logger *slog.Logger) {
	for _, name := range cfg.JWT.Ephemeral {
		logger.Warn("secret is not set, using a random per-process value; sessions end on restart", "variable", name)
	}
	if cfg.Admin.PasswordFromPlaintext {
		logger.Warn("ADMIN_PASSWORD is set in plaintext; store a bcrypt hash in ADMIN_PASSWORD_HASH instead (see sng_admin hash-password)")
	}
	if cfg.Serverless && !cfg.Storage.UseKV() {
		logger.Warn("serverless runtime without KV_URL: writes will fail on a read-only filesystem")
	}
	if cfg.Storage.SessionStore == "memory" && cfg.Serverless {
		logger.Warn("in-memory sessions do not survive between serverless instances; set SESSION_STORE=redis")
	}
}

func assetBackendName(b assets.Backend) string {
	if b == nil {
		return "none"
	}
	return b.Name()
}
