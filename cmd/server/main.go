package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"alloneword/internal/audio"
	"alloneword/internal/config"
	"alloneword/internal/database"
	"alloneword/internal/handlers"
	"alloneword/internal/repository"
	"alloneword/internal/security"
	"alloneword/internal/service"
	"alloneword/internal/templates"
	"alloneword/migrations"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established", "type", cfg.DatabaseType)

	var migrationsFS fs.FS = migrations.FS
	if cfg.MigrationsPath != "" {
		migrationsFS = os.DirFS(cfg.MigrationsPath)
	}
	if err := db.RunMigrations(ctx, migrationsFS); err != nil {
		return err
	}
	slog.Info("migrations completed")

	if cfg.BadWordsSeed {
		if err := db.SeedBadWords(ctx); err != nil {
			slog.Warn("failed to seed bad words filter", "error", err)
		}
	}

	tmpl, err := templates.Load(cfg.TemplatesPath)
	if err != nil {
		return err
	}

	// Repositories
	accountRepo := repository.NewAccountRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	phraseRepo := repository.NewPhraseRepository(db)

	// Services
	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.EmailDebug)
	if err != nil {
		return err
	}

	settingsService, err := service.NewSettingsService(repository.NewSettingsRepository(db), cfg.SettingsCacheTTL)
	if err != nil {
		return err
	}
	defer settingsService.Close()

	var speaker service.Speaker
	if cfg.TTSEnabled {
		speaker = audio.NewTTSService(filepath.Join(cfg.StaticFilesPath, "audio"))
		slog.Info("text to speech enabled")
	}

	authService := service.NewAuthService(accountRepo, emailService, cfg.SessionDuration)
	tokenService := service.NewTokenService(authService, accountRepo, security.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL))
	practiceService := service.NewPracticeService(db, emailService)
	progressService := service.NewProgressService(accountRepo, attemptRepo)
	leaderboardService := service.NewLeaderboardService(attemptRepo)
	phraseService := service.NewPhraseService(phraseRepo, speaker)

	limiter, closeLimiter := newRateLimiter(ctx, cfg)
	defer closeLimiter()

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
		"facebook": {
			Name:  "facebook",
			Label: "Facebook",
			Config: &oauth2.Config{
				ClientID:     cfg.FacebookClientID,
				ClientSecret: cfg.FacebookClientSecret,
				Endpoint:     facebook.Endpoint,
				Scopes:       []string{"email", "public_profile"},
			},
			UserInfoURL: "https://graph.facebook.com/me?fields=id,name,email",
		},
	}

	// Handlers
	middleware := handlers.NewMiddleware(authService, tokenService, security.NewCSRFGenerator(cfg.CSRFSecret), limiter)
	renderer := handlers.NewRenderer(tmpl, settingsService, middleware)
	h := &handlers.Handlers{
		Middleware: middleware,
		Auth:       handlers.NewAuthHandler(authService, renderer, oauthProviders, cfg.OAuthRedirectBaseURL),
		Dashboard:  handlers.NewDashboardHandler(authService, progressService, phraseService, renderer),
		Practice:   handlers.NewPracticeHandler(practiceService, phraseService, service.NewEngagementService(db), renderer),
		Progress:   handlers.NewProgressHandler(progressService, leaderboardService, renderer),
		Phrases:    handlers.NewPhraseHandler(phraseService, renderer),
		Links:      handlers.NewLinkHandler(service.NewLinkService(accountRepo, emailService), renderer),
		Content:    handlers.NewContentHandler(service.NewContentService(repository.NewContentRepository(db)), phraseService, renderer),
		Site:       handlers.NewSiteHandler(settingsService, service.NewContactService(settingsService, emailService), service.NewBackupService(db), renderer),
		API:        handlers.NewAPIHandler(tokenService, practiceService, progressService, leaderboardService),
	}

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      h.Routes(cfg.StaticFilesPath),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go authService.RunSessionCleanup(ctx, time.Hour)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newRateLimiter uses redis when configured and reachable, otherwise an in-process limiter
func newRateLimiter(ctx context.Context, cfg *config.Config) (security.RateLimiter, func()) {
	if cfg.RedisAddr != "" {
		rl := security.NewRedisRateLimiter(security.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.RateLimitRequests, cfg.RateLimitWindow)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		err := rl.Ping(pingCtx)
		if err == nil {
			slog.Info("using redis rate limiter", "addr", cfg.RedisAddr)
			return rl, func() { _ = rl.Close() }
		}
		slog.Warn("redis unavailable, falling back to in-memory rate limiter", "error", err)
		_ = rl.Close()
	}
	return security.NewMemoryRateLimiter(ctx, cfg.RateLimitRequests, cfg.RateLimitWindow), func() {}
}
