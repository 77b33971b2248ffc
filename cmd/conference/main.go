package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/example/conference-central/internal/application"
	"github.com/example/conference-central/internal/config"
	httptransport "github.com/example/conference-central/internal/http"
	"github.com/example/conference-central/internal/identity"
	"github.com/example/conference-central/internal/logging"
	"github.com/example/conference-central/internal/persistence/sqlite"
)

func main() {
	logger := logging.New(slog.LevelInfo)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	credentials, err := identity.ParseCredentials(cfg.APITokens)
	if err != nil {
		logger.Error("failed to parse API token credentials", "error", err)
		os.Exit(1)
	}
	provider := identity.NewStaticProvider(credentials)

	profileRepo := sqlite.NewProfileRepository(pool)
	conferenceRepo := sqlite.NewConferenceRepository(pool)
	sessionRepo := sqlite.NewSessionRepository(pool)

	now := time.Now

	profileService := application.NewProfileService(profileRepo, now, logger)
	announcementService := application.NewAnnouncementService(conferenceRepo, cfg.AnnouncementThreshold, logger)
	notifier := application.NewLogNotifier(logger)
	conferenceService := application.NewConferenceService(conferenceRepo, profileService, announcementService, notifier, now, logger)
	sessionService := application.NewSessionService(sessionRepo, conferenceRepo, profileService, now, logger)

	// Warm the announcement before the first request arrives.
	if _, err := announcementService.Refresh(context.Background()); err != nil {
		logger.Warn("failed to refresh announcement", "error", err)
	}

	profileHandler := httptransport.NewProfileHandler(profileService, logger)
	conferenceHandler := httptransport.NewConferenceHandler(conferenceService, announcementService, logger)
	sessionHandler := httptransport.NewSessionHandler(sessionService, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Profiles:    profileHandler,
		Conferences: conferenceHandler,
		Sessions:    sessionHandler,
	})

	protected := httptransport.RequireIdentity(provider, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The announcement is public; everything else requires a token.
		if strings.EqualFold(r.URL.Path, "/announcement") {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("conference API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
