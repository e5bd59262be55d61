package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/lifetrack/api/handler"
	"github.com/fastygo/lifetrack/internal/config"
	"github.com/fastygo/lifetrack/internal/infrastructure/buffer"
	"github.com/fastygo/lifetrack/internal/infrastructure/monitor"
	"github.com/fastygo/lifetrack/internal/infrastructure/objectstore"
	pgInfra "github.com/fastygo/lifetrack/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/lifetrack/internal/infrastructure/redis"
	"github.com/fastygo/lifetrack/internal/middleware"
	"github.com/fastygo/lifetrack/internal/router"
	"github.com/fastygo/lifetrack/internal/services"
	"github.com/fastygo/lifetrack/internal/services/lifecycle"
	"github.com/fastygo/lifetrack/pkg/httpcontext"
	"github.com/fastygo/lifetrack/pkg/logger"
	"github.com/fastygo/lifetrack/repository"
	"github.com/fastygo/lifetrack/repository/boltdb"
	"github.com/fastygo/lifetrack/repository/postgres"
	redisRepo "github.com/fastygo/lifetrack/repository/redis"
	s3Repo "github.com/fastygo/lifetrack/repository/s3"
	activityUC "github.com/fastygo/lifetrack/usecase/activity"
	"github.com/fastygo/lifetrack/usecase/goals"
	identityUC "github.com/fastygo/lifetrack/usecase/identity"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	localStore, err := boltdb.Open(cfg.Local.Path, cfg.Local.Bucket)
	if err != nil {
		zapLogger.Fatal("failed to open local document store", zap.Error(err))
	}
	manager.RegisterCloser("local_store", localStore)

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "pending")
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.RegisterCloser("buffer", bufferStore)

	mon := monitor.New(bufferStore, cfg.Context.MonitorInterval, zapLogger)
	tiers := services.BlobTiers{Local: localStore, Pending: bufferStore}

	if connection, err := cfg.Storage.Connection(); err != nil {
		zapLogger.Warn("remote storage unavailable, running local-only", zap.String("source", cfg.Storage.Source), zap.Error(err))
	} else if client, err := objectstore.Connect(appCtx, connection, cfg.Storage.ContainerName, cfg.Storage.CreateContainer, zapLogger); err != nil {
		zapLogger.Warn("remote storage initialization failed, running local-only", zap.Error(err))
	} else {
		tiers.Remote = s3Repo.NewDocumentRepository(client, cfg.Storage.ContainerName)
		mon.Register(monitor.ProbeRemoteStorage, objectstore.Probe(client, cfg.Storage.ContainerName))
		zapLogger.Info("remote storage ready", zap.String("container", cfg.Storage.ContainerName))
	}

	if cfg.Cache.Enabled {
		redisClient, err := redisInfra.NewClient(cfg.Cache)
		if err != nil {
			zapLogger.Warn("document cache disabled", zap.Error(err))
		} else {
			manager.RegisterCloser("redis", redisClient)
			tiers.Cache = redisRepo.NewDocumentCache(redisClient, cfg.Storage.CacheTTL)
			mon.Register(monitor.ProbeCache, redisInfra.Probe(redisClient))
		}
	}

	var ledger repository.ActivityRepository
	if cfg.Ledger.Enabled {
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}
		pool, err := pgInfra.NewPool(appCtx, cfg.Ledger, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pool.Close()
			return nil
		})
		ledger = postgres.NewActivityRepository(pool)
		mon.Register(monitor.ProbeLedger, pgInfra.Probe(pool))
	}

	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	replay := services.NewReplayProcessor(
		bufferStore,
		mon,
		tiers.Remote,
		zapLogger,
		services.ReplayConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  cfg.Buffer.BatchSize,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
		},
	)
	replay.Start()
	manager.Register("replay_processor", replay.Stop)

	blobStore := services.NewBlobStore(tiers, zapLogger)
	activityUseCase := activityUC.New(ledger, zapLogger)

	sessions := services.NewSessionRegistry(func(identity string) *goals.Engine {
		return goals.NewEngine(
			blobStore.Fork(),
			goals.WithSeedPath(cfg.Seed.Path),
			goals.WithRecorder(activityUseCase),
			goals.WithLogger(zapLogger.With(zap.String("identity", identity))),
		)
	}, zapLogger)
	sessions.StartEviction(services.SessionConfig{
		IdleTTL:       cfg.Session.IdleTTL,
		SweepInterval: cfg.Session.SweepInterval,
	})
	manager.Register("session_eviction", sessions.Stop)
	bridge := identityUC.New(sessions, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Goals:    apiHandler.NewGoalsHandler(sessions, ctxAdapter, zapLogger),
		Profile:  apiHandler.NewProfileHandler(bridge, sessions, ctxAdapter, zapLogger),
		Activity: apiHandler.NewActivityHandler(activityUseCase, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, blobStore, ctxAdapter, zapLogger),
	}

	identity := middleware.Identity(cfg.JWT, zapLogger)
	r := router.New(handlers, identity)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage_mode", blobStore.Mode()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
