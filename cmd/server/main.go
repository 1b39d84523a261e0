package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/momentumhq/backend/api/handler"
	"github.com/momentumhq/backend/internal/config"
	"github.com/momentumhq/backend/internal/infrastructure/buffer"
	"github.com/momentumhq/backend/internal/infrastructure/monitor"
	pgInfra "github.com/momentumhq/backend/internal/infrastructure/postgres"
	redisInfra "github.com/momentumhq/backend/internal/infrastructure/redis"
	"github.com/momentumhq/backend/internal/middleware"
	"github.com/momentumhq/backend/internal/router"
	"github.com/momentumhq/backend/internal/services"
	"github.com/momentumhq/backend/internal/services/lifecycle"
	"github.com/momentumhq/backend/pkg/httpcontext"
	"github.com/momentumhq/backend/pkg/logger"
	"github.com/momentumhq/backend/repository/postgres"
	redisRepo "github.com/momentumhq/backend/repository/redis"
	authUC "github.com/momentumhq/backend/usecase/auth"
	focusUC "github.com/momentumhq/backend/usecase/focus"
	goalUC "github.com/momentumhq/backend/usecase/goal"
	habitUC "github.com/momentumhq/backend/usecase/habit"
	momentumUC "github.com/momentumhq/backend/usecase/momentum"
	profileUC "github.com/momentumhq/backend/usecase/profile"
	taskUC "github.com/momentumhq/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "buffer")
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(pool, redisClient, bufferStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	statRepo := postgres.NewDailyStatRepository(pool)
	habitRepo := postgres.NewHabitRepository(pool)
	goalRepo := postgres.NewGoalRepository(pool)
	focusRepo := postgres.NewFocusRepository(pool)
	identityCache := redisRepo.NewIdentityCache(redisClient, cfg.Identity.CacheTTL)

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		taskRepo,
		nil,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  50,
			MaxRetries: cfg.Buffer.MaxRetry,
		},
	)
	bufferBridge := services.NewBufferBridge(bufferProcessor)

	momentumEngine := momentumUC.NewEngine(userRepo, taskRepo, statRepo, bufferBridge, zapLogger)
	bufferProcessor.SetMomentumReplayer(momentumEngine)
	bufferProcessor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		bufferProcessor.Stop(ctx)
		return nil
	})

	authUseCase := authUC.New(userRepo, identityCache, zapLogger)
	profileUseCase := profileUC.New(userRepo, statRepo, zapLogger)
	taskUseCase := taskUC.New(taskRepo, userRepo, bufferBridge, zapLogger)
	habitUseCase := habitUC.New(habitRepo, zapLogger)
	goalUseCase := goalUC.New(goalRepo, userRepo, zapLogger)
	focusUseCase := focusUC.New(focusRepo, userRepo, zapLogger)

	if cfg.Notifier.Enabled {
		notifier := services.NewNotifier(
			taskRepo,
			userRepo,
			services.NewLogSender(zapLogger),
			zapLogger,
			services.NotifierConfig{
				Lookback:  cfg.Notifier.Lookback,
				Lookahead: cfg.Notifier.Lookahead,
			},
		)
		notifier.Start()
		manager.Register("notifier", func(ctx context.Context) error {
			notifier.Stop(ctx)
			return nil
		})
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:     apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile:  apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Task:     apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Momentum: apiHandler.NewMomentumHandler(momentumEngine, taskUseCase, ctxAdapter, zapLogger),
		Habit:    apiHandler.NewHabitHandler(habitUseCase, ctxAdapter, zapLogger),
		Focus:    apiHandler.NewFocusHandler(focusUseCase, ctxAdapter, zapLogger),
		Goal:     apiHandler.NewGoalHandler(goalUseCase, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, authUseCase, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
