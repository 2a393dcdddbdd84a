package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoSim-25-26J-441/image-studio-backend/config"
	cronjob "github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/cron"
	arthttp "github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/http"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/repository"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/service"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/bootstrap"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/imagegen"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/logger"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/prompts"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/storage/blob"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/storage/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := logger.Init(cfg.App.Environment, cfg.App.LogLevel); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	l := logger.L()

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	var jobs service.JobRecorder
	var collection repository.Collection = repository.NewMemoryCollection()
	var transcript repository.Transcript = repository.NewMemoryTranscript()

	if cfg.Database.Enabled() {
		sqlDB, err := bootstrap.OpenSQL(ctx, &cfg.Database)
		if err != nil {
			l.Fatal("open database", zap.Error(err))
		}
		defer sqlDB.Close()

		pool, err = bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: postgres.DSN(&cfg.Database)})
		if err != nil {
			l.Fatal("open pgx pool", zap.Error(err))
		}
		defer pool.Close()
		jobs = repository.NewJobRepo(pool)

		if cfg.Storage.CollectionBackend == "postgres" {
			collection = repository.NewPostgresCollection(sqlDB)
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb, err = bootstrap.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			l.Fatal("open redis", zap.Error(err))
		}
		defer rdb.Close()

		transcript = repository.NewRedisTranscript(rdb)
		if cfg.Storage.CollectionBackend == "redis" {
			collection = repository.NewRedisCollection(rdb)
		}
	}

	var blobs blob.Store
	switch cfg.Storage.BlobBackend {
	case "s3":
		blobs, err = blob.NewS3Store(ctx, cfg.Storage.S3Bucket, cfg.Storage.S3Prefix, cfg.Storage.S3Region)
	default:
		blobs, err = blob.NewFileStore(cfg.Storage.ArtifactsDir)
	}
	if err != nil {
		l.Fatal("open blob store", zap.String("backend", cfg.Storage.BlobBackend), zap.Error(err))
	}

	images, err := imagegen.New(ctx, cfg.Gemini.APIKey,
		imagegen.WithImageModel(cfg.Gemini.ImageModel),
		imagegen.WithEditModel(cfg.Gemini.EditModel),
	)
	if err != nil {
		l.Fatal("create gemini client", zap.Error(err))
	}

	modes, err := prompts.Load(cfg.Prompts.ModesFile)
	if err != nil {
		l.Fatal("load prompt modes", zap.Error(err))
	}

	svc := service.NewArtifactService(service.Deps{
		Images:     images,
		Blobs:      blobs,
		Collection: collection,
		Transcript: transcript,
		Jobs:       jobs,
		Timeout:    cfg.Gemini.Timeout,
	})

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    cfg.App.ServiceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DB:             pool,
		Redis:          rdb,
		Artifacts:      arthttp.New(svc, blobs, modes),
	})

	scheduler := cronjob.NewScheduler(collection, cfg.Snapshot.Dir, cfg.Snapshot.Cron)
	if err := scheduler.Start(); err != nil {
		l.Fatal("start snapshot scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		l.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("collection", cfg.Storage.CollectionBackend),
			zap.String("blobs", cfg.Storage.BlobBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	l.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("shutdown", zap.Error(err))
	}
}
