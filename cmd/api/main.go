package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-recruitment-workflow/config"
	_ "go-recruitment-workflow/docs" // Important for Swagger
	v1 "go-recruitment-workflow/internal/delivery/http/v1"
	"go-recruitment-workflow/internal/repository/postgres"
	"go-recruitment-workflow/internal/usecase"
	"go-recruitment-workflow/pkg/auth"
	"go-recruitment-workflow/pkg/database"
	"go-recruitment-workflow/pkg/email"
	"go-recruitment-workflow/pkg/events"
	"go-recruitment-workflow/pkg/identity"
	"go-recruitment-workflow/pkg/logger"
	"go-recruitment-workflow/pkg/redis"
	"go-recruitment-workflow/pkg/security"
	"go-recruitment-workflow/pkg/security/antivirus"
	"go-recruitment-workflow/pkg/storage"
)

// @title           Recruitment Workflow API
// @version         1.0
// @description     Role-based recruitment workflow backend.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting recruitment workflow backend", "port", cfg.Port)

	environment := "development"
	if cfg.IsProduction() {
		environment = "production"
	}
	audit := security.InitAuditLogger("recruitment-workflow", environment)
	defer audit.Sync()

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	audit.SetPersistFunc(security.NewAuditEventRepository(dbPool).PersistEvent)

	// 4. Setup Redis (optional; limiters fall back to memory)
	redisCheck := usecase.HealthCheck(nil)
	if cfg.UpstashRedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory rate limiting", "error", err)
		}
		redisCheck = redis.HealthCheck
	}
	defer redis.Close()

	// 5. Setup Document Storage
	store, err := storage.NewS3Store(ctx, storage.Config{
		Provider:        storage.Provider(cfg.S3Provider),
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
	})
	if err != nil {
		logger.Log.Error("Failed to initialize document storage", "error", err)
		os.Exit(1)
	}

	// 6. Setup Collaborators
	idp := identity.New(cfg.SupabaseUrl, cfg.SupabaseKey, cfg.SupabaseServiceKey)

	producer := events.NewProducer(events.Config{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaTopic,
		Username: cfg.KafkaUsername,
		Password: cfg.KafkaPassword,
	})
	defer producer.Close()

	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - status notifications will be skipped")
	}

	var scanner antivirus.Scanner = &antivirus.NoOpScanner{}
	if cfg.ClamAVAddress != "" {
		scanner = antivirus.NewClamAVScanner(cfg.ClamAVAddress, 30*time.Second)
	} else if cfg.IsProduction() {
		logger.Log.Warn("CLAMAV_ADDRESS not configured - uploads are not scanned for malware")
	}
	guard := antivirus.NewGuard(scanner)

	uploadLimiter := security.NewUploadLimiter(cfg.UploadMaxPerMinute, cfg.UploadMaxPerDay)
	loginTracker := security.NewLoginTracker(security.DefaultLoginTrackerConfig())

	// 7. Setup Repositories
	profileRepo := postgres.NewProfileRepository(dbPool)
	infoRepo := postgres.NewCandidateInfoRepository(dbPool)
	documentRepo := postgres.NewDocumentRepository(dbPool)
	applicationRepo := postgres.NewApplicationRepository(dbPool)
	deletionRepo := postgres.NewDeletionRepository(dbPool)
	settingsRepo := postgres.NewSettingsRepository(dbPool)

	// 8. Setup UseCases
	identityUC := usecase.NewIdentityUsecase(profileRepo, infoRepo, idp, audit)
	candidateUC := usecase.NewCandidateUsecase(profileRepo, infoRepo, documentRepo, idp, audit)
	documentUC := usecase.NewDocumentUsecase(profileRepo, documentRepo, store, guard, uploadLimiter, producer, audit, cfg.DocumentURLTTL)
	applicationUC := usecase.NewApplicationUsecase(profileRepo, infoRepo, documentRepo, applicationRepo, idp, producer, emailService, audit)
	deletionUC := usecase.NewDeletionUsecase(deletionRepo, producer, audit)
	adminUC := usecase.NewAdminUsecase(profileRepo, infoRepo, documentRepo, applicationRepo, deletionRepo, idp, audit)
	settingsUC := usecase.NewSettingsUsecase(settingsRepo, store, guard, audit, cfg.AssetURLTTL)
	healthUC := usecase.NewHealthUsecase(map[string]usecase.HealthCheck{
		"database": dbPool.Ping,
		"redis":    redisCheck,
		"storage":  store.HealthCheck,
	})

	// 9. Setup Token Verification (HS256 secret and/or JWKS)
	var jwksProvider *auth.Provider
	if cfg.SupabaseUrl != "" {
		jwksProvider = auth.NewProvider(cfg.SupabaseUrl + "/auth/v1/.well-known/jwks.json")
	}
	verifier := auth.NewVerifier(cfg.SupabaseJWTSecret, jwksProvider)

	// 10. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		IdentityUC:    identityUC,
		CandidateUC:   candidateUC,
		DocumentUC:    documentUC,
		ApplicationUC: applicationUC,
		DeletionUC:    deletionUC,
		AdminUC:       adminUC,
		SettingsUC:    settingsUC,
		HealthUC:      healthUC,
		Verifier:      verifier,
		LoginGuard:    loginTracker,
		Audit:         audit,
		Config:        cfg,
	})

	// 11. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
