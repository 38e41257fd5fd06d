package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"health-metrics/internal/config"
	apphttp "health-metrics/internal/http"
	"health-metrics/internal/repository/sqlite"
	"health-metrics/internal/service"
	"health-metrics/internal/session"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	itemRepo := sqlite.NewItemRepository(db)
	resultRepo := sqlite.NewResultRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := itemRepo.Init(ctx); err != nil {
		logger.Fatalf("init item repository: %v", err)
	}
	if err := resultRepo.Init(ctx); err != nil {
		logger.Fatalf("init result repository: %v", err)
	}

	if cfg.Seed.DemoData {
		if err := sqlite.SeedDemoData(ctx, db, userRepo, itemRepo, resultRepo); err != nil {
			logger.Fatalf("seed demo data: %v", err)
		}
		logger.Info("demo data seeded")
	}

	sessions := session.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)

	authService := service.NewAuthService(userRepo, sessions)
	userService := service.NewUserService(userRepo)
	itemService := service.NewItemService(itemRepo)
	resultService := service.NewResultService(resultRepo)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(authService, userService, itemService, resultService, sessions, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}
