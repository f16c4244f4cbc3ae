package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/taskpulse/backend/api/handler"
	"github.com/taskpulse/backend/internal/config"
	"github.com/taskpulse/backend/internal/infrastructure/snapshot"
	"github.com/taskpulse/backend/internal/router"
	"github.com/taskpulse/backend/internal/services"
	"github.com/taskpulse/backend/internal/services/lifecycle"
	"github.com/taskpulse/backend/pkg/httpcontext"
	"github.com/taskpulse/backend/pkg/logger"
	"github.com/taskpulse/backend/usecase/tracker"
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

	snapshots, err := snapshot.Open(cfg.Snapshot.Path)
	if err != nil {
		zapLogger.Fatal("failed to open snapshot store", zap.Error(err))
	}
	manager.Register("snapshot", func(ctx context.Context) error {
		return snapshots.Close()
	})

	engine := tracker.New(snapshots, zapLogger)
	if cfg.Snapshot.LoadOnStart {
		if err := engine.Load(appCtx); err != nil {
			zapLogger.Error("snapshot load failed, starting empty", zap.Error(err))
		}
	}
	if cfg.Snapshot.SaveOnShutdown {
		manager.Register("engine_state", func(ctx context.Context) error {
			return engine.Save(ctx)
		})
	}

	recorder := services.NewRecorder(services.NewLogNotifier(zapLogger), 50)

	ticker := services.NewReminderTicker(engine, recorder, zapLogger, services.TickerConfig{
		Interval: cfg.Scheduler.TickInterval,
	})
	ticker.Start()
	manager.Register("reminder_ticker", func(ctx context.Context) error {
		ticker.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:     apiHandler.NewTaskHandler(engine, ctxAdapter, zapLogger),
		Calendar: apiHandler.NewCalendarHandler(engine, ctxAdapter, zapLogger),
		Ops:      apiHandler.NewOpsHandler(engine, recorder, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(engine, ctxAdapter, zapLogger),
	}

	r := router.New(handlers)

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
