package application

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Capstone-project-team7/Back/internal/config"
	"github.com/Capstone-project-team7/Back/internal/database"
	"github.com/Capstone-project-team7/Back/internal/handler"
	"github.com/Capstone-project-team7/Back/internal/mail"
	"github.com/Capstone-project-team7/Back/internal/pipeline"
	"github.com/Capstone-project-team7/Back/internal/router"
	"github.com/Capstone-project-team7/Back/internal/service"
	"github.com/Capstone-project-team7/Back/internal/storage"
)

// API is the anomaly-service HTTP application.
type API struct {
	cfg *config.Config
	srv *http.Server
	db  *gorm.DB
	log *zap.Logger
}

// NewAPI creates the API application: validates config, runs migrations,
// opens DB and the object store, wires the ingestion pipeline, builds router.
func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	logger, _ := zap.NewProduction()
	if cfg.AppEnv == "development" {
		logger, _ = zap.NewDevelopment()
	}

	s3Client, err := newS3Client(cfg)
	if err != nil {
		return nil, fmt.Errorf("object store: %w", err)
	}
	presigner := s3.NewPresignClient(s3Client)

	addr := storage.NewAddressing(cfg, presigner, logger)
	probe := storage.NewProbe(cfg, s3Client, addr, logger)
	remover := storage.NewRemover(cfg.S3.Bucket, s3Client, logger)

	vocab := service.DefaultVocabulary()
	users := service.NewUserService(db)
	sessions := service.NewSessionService(db, logger)
	anomalies := service.NewAnomalyService(db, addr, logger)
	videos := service.NewVideoService(db, addr, probe, remover, vocab, logger)
	aggregates := service.NewAggregateService(db, vocab, logger)
	quotas := service.NewQuotaService(db, addr, probe, cfg.QuotaDefaultTotal, logger)
	dispatcher := mail.NewDispatcher(cfg, addr, logger)

	pipe := pipeline.New(users, sessions, anomalies, videos, aggregates, quotas, dispatcher, logger)

	r := router.New(
		handler.NewWebhookHandler(pipe),
		handler.NewUserHandler(users),
		handler.NewDashboardHandler(aggregates),
		handler.NewStorageHandler(quotas),
		handler.NewVideoHandler(videos, quotas, logger),
		handler.NewAnomalyHandler(anomalies),
		handler.NewHealthHandler(),
	)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{cfg: cfg, srv: srv, db: db, log: logger}, nil
}

// newS3Client builds the S3 client from config, with static credentials and
// a custom endpoint when given (S3-compatible stores use path-style).
func newS3Client(cfg *config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3.Region),
	}
	if cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3.AccessKey, cfg.S3.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = &cfg.S3.Endpoint
			o.UsePathStyle = true
		}
	}), nil
}

// Run starts the HTTP server and blocks until ctx is cancelled; then shuts
// down gracefully.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	log.Printf("HTTP server listening on %s", a.srv.Addr)
	log.Printf("  Health:   %s/health", base)
	log.Printf("  Webhook:  %s/api/anomaly/notify", base)
	log.Printf("  API:      %s/api/v1", base)

	go func() {
		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	_ = a.log.Sync()
	return nil
}
