package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"stockwarden/internal/auth"
	"stockwarden/internal/commons"
	"stockwarden/internal/config"
	"stockwarden/internal/diagnostics"
	diagnosticsrepo "stockwarden/internal/diagnostics/repository"
	"stockwarden/internal/events"
	"stockwarden/internal/infrastructure/logger"
	"stockwarden/internal/infrastructure/mysql"
	"stockwarden/internal/reservation"
	"stockwarden/internal/server"
	"stockwarden/internal/stock"
)

func main() {
	cfg, err := commons.LoadConfig("internal/config/config.yaml")
	if err != nil {
		cfg, err = config.Load()
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	authz := auth.NewStaticTokenAuthorizer(cfg.Stock.AdminToken)
	sink := diagnostics.NewTee(
		diagnosticsrepo.NewMySQLDiagnosticsRepository(db),
		diagnostics.NewZapSink(zapLogger),
	)
	dispatcher := events.NewDispatcher(zapLogger)

	stockCtrl := stock.NewModule(db, cfg, authz, dispatcher, sink, zapLogger)
	lifecycleCtrl := reservation.NewModule(db, cfg, dispatcher, sink, zapLogger)

	router := server.NewRouter(stockCtrl, lifecycleCtrl, zapLogger)

	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
