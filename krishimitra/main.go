package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"krishimitra/krishimitra/config"
	"krishimitra/krishimitra/controllers"
	"krishimitra/krishimitra/routes"
	"krishimitra/krishimitra/services/advisory"
	"krishimitra/krishimitra/services/detection"
	"krishimitra/krishimitra/services/feedback"
	"krishimitra/krishimitra/services/market"
	"krishimitra/krishimitra/services/tts"
	"krishimitra/krishimitra/services/weather"
	"krishimitra/krishimitra/session"
	"krishimitra/krishimitra/sources/cache"
	"krishimitra/krishimitra/sources/storage"
	"krishimitra/krishimitra/utils/logging"
)

func main() {
	logging.InitLogger()
	cfg := config.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	responseCache, err := cache.New(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("redis connection error", zap.Error(err))
		os.Exit(1)
	}
	imageStore, err := storage.NewImageStore(cfg)
	if err != nil {
		logging.ErrorLogger.Error("minio connection error", zap.Error(err))
		os.Exit(1)
	}

	manager := session.NewManager(session.ManagerOptions{
		Advisory: advisory.NewClient(cfg.AdvisoryURL),
		Feedback: feedback.NewClient(cfg.FeedbackURL),
		TTL:      cfg.SessionTTL,
	})
	defer manager.Close()

	sessionCtrl := controllers.NewSessionController(manager)
	widgetsCtrl := controllers.NewWidgetsController(
		weather.NewClient(cfg.WeatherURL, responseCache),
		market.NewClient(cfg.MarketURL, responseCache),
		detection.NewClient(cfg.DetectionURL, imageStore),
		tts.NewClient(cfg.TTSURL),
	)
	healthCtrl := controllers.NewHealthController(manager)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Mount("/health", routes.HealthRoutes(healthCtrl))
	r.Mount("/api/session", routes.SessionRoutes(sessionCtrl))
	r.Mount("/api", routes.WidgetRoutes(widgetsCtrl))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()
	logging.AppLogger.Info("krishimitra gateway listening on :" + cfg.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
