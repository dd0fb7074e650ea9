package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/veriflow/kyc-system/internal/api"
	"github.com/veriflow/kyc-system/internal/core/domain"
	"github.com/veriflow/kyc-system/internal/core/ports"
	"github.com/veriflow/kyc-system/internal/core/scoring"
	"github.com/veriflow/kyc-system/internal/core/service"
	"github.com/veriflow/kyc-system/internal/infrastructure/db/mongo"
	"github.com/veriflow/kyc-system/internal/infrastructure/db/redis"
	"github.com/veriflow/kyc-system/internal/infrastructure/extract"
	"github.com/veriflow/kyc-system/internal/infrastructure/queue"
	"github.com/veriflow/kyc-system/internal/infrastructure/storage"
	"github.com/veriflow/kyc-system/internal/pkg/config"
	"github.com/veriflow/kyc-system/pkg/logger"
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in internal/core.
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Databases ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(shutdownCtx)
	}()

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Repositories ---
	applicantRepo := mongo.NewApplicantRepository(db)
	auditRepo := mongo.NewAuditRepository(db)
	adminRepo := mongo.NewAdminRepository(db)

	for _, idx := range []interface {
		EnsureIndexes(ctx context.Context) error
	}{applicantRepo, auditRepo, adminRepo} {
		if err := idx.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("index creation failed")
		}
	}

	// --- Evaluation pipeline ---
	scorer, err := scoring.NewScorer(scoring.Config{
		FaceWeight:       cfg.Scoring.FaceWeight,
		LivenessWeight:   cfg.Scoring.LivenessWeight,
		BlurWeight:       cfg.Scoring.BlurWeight,
		FieldWeight:      cfg.Scoring.FieldWeight,
		BlurReference:    cfg.Scoring.BlurReference,
		ApproveThreshold: cfg.Scoring.ApproveThreshold,
		FlagThreshold:    cfg.Scoring.FlagThreshold,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid scoring policy")
	}

	var extractor ports.SignalExtractor
	if cfg.Extractor.BaseURL != "" {
		extractor = extract.NewHTTPExtractor(cfg.Extractor.BaseURL, time.Duration(cfg.Extractor.TimeoutSeconds)*time.Second)
	} else {
		log.Warn().Msg("no extractor configured, using static signals (development only)")
		extractor = extract.NewStatic()
	}

	images, err := storage.NewFileStore(cfg.Storage.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("image store initialisation failed")
	}

	// --- Services ---
	verificationService := service.NewVerificationService(
		applicantRepo,
		extractor,
		images,
		scorer,
		scoring.NewEngine(),
		redis.NewSubmissionDedup(rdb),
		time.Duration(cfg.Extractor.TimeoutSeconds)*time.Second,
		cfg.Extractor.Degrade,
		log,
	)
	reviewService := service.NewReviewService(applicantRepo, auditRepo, log)
	authService := service.NewAuthService(adminRepo, cfg.JWTSecret, 24*time.Hour)

	seedAdmin(ctx, authService, cfg, log)

	dispatcher := queue.NewDispatcher(0, verificationService, log)
	dispatcher.Start(ctx)

	// --- HTTP server ---
	e := api.NewRouter(api.Dependencies{
		Verification: verificationService,
		Reviews:      reviewService,
		Auth:         authService,
		Dispatcher:   dispatcher,
		Mongo:        db,
		Redis:        rdb,
		JWTSecret:    cfg.JWTSecret,
		Log:          log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("kyc service started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// seedAdmin creates the bootstrap reviewer account on first start. Seeding
// only happens when a password is configured; a second run finds the account
// already present and moves on.
func seedAdmin(ctx context.Context, auth ports.AuthService, cfg *config.Config, log zerolog.Logger) {
	if cfg.SeedAdmin.Password == "" {
		return
	}

	_, err := auth.Register(ctx, cfg.SeedAdmin.Username, cfg.SeedAdmin.Password)
	switch {
	case err == nil:
		log.Info().Str("username", cfg.SeedAdmin.Username).Msg("seed admin created")
	case errors.Is(err, domain.ErrAdminExists):
		log.Debug().Str("username", cfg.SeedAdmin.Username).Msg("seed admin already exists")
	default:
		log.Fatal().Err(err).Msg("seed admin creation failed")
	}
}
