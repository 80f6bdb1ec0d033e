// Package app assembles the auth service: configuration, storage, services,
// HTTP router and lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/monuwu/ClickTales-sub001/internal/auth/http"
	"github.com/monuwu/ClickTales-sub001/internal/auth/notify"
	"github.com/monuwu/ClickTales-sub001/internal/auth/service"
	"github.com/monuwu/ClickTales-sub001/internal/auth/store"
	"github.com/monuwu/ClickTales-sub001/internal/auth/store/drivers/sqlite"
	"github.com/monuwu/ClickTales-sub001/pkg/cryptox"
	"github.com/monuwu/ClickTales-sub001/pkg/jwtx"
	"github.com/monuwu/ClickTales-sub001/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	tokens *jwtx.HS256
	sender notify.Sender

	tokenService        *service.TokenService
	otpService          *service.OTPService
	credentialService   *service.CredentialService
	signupService       *service.SignupService
	twoFactorService    *service.TwoFactorService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "clicktales-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	tokens, err := jwtx.NewHS256(cfg.JWTSecret, cfg.Issuer)
	if err != nil {
		return nil, err
	}
	app.tokens = tokens

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initSender()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initSender selects the OTP delivery channel.
func (app *Application) initSender() {
	if app.cfg.ResendAPIKey != "" {
		app.sender = notify.NewResendSender(app.cfg.ResendAPIKey, app.cfg.EmailFrom)
		app.logger.Info("otp delivery via resend", "from", app.cfg.EmailFrom)
		return
	}
	app.sender = &notify.LogSender{Logger: app.logger}
	app.logger.Warn("RESEND_API_KEY not set, one-time codes will be logged")
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Signer:     app.tokens,
		Store:      app.db,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}
	app.otpService = &service.OTPService{
		Store:  app.db,
		Sender: app.sender,
		TTL:    app.cfg.OTPTTL,
	}
	app.credentialService = &service.CredentialService{
		Store:  app.db,
		Tokens: app.tokenService,
		Issuer: "ClickTales",
	}
	app.signupService = &service.SignupService{
		Store:  app.db,
		OTPs:   app.otpService,
		Tokens: app.tokenService,
	}
	app.twoFactorService = &service.TwoFactorService{
		Credentials: app.credentialService,
		OTPs:        app.otpService,
	}
	app.userService = &service.UserService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.UnverifiedTTL,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.tokens,
		app.tokens,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.TokenService = app.tokenService
	router.OTPService = app.otpService
	router.CredentialService = app.credentialService
	router.SignupService = app.signupService
	router.TwoFactorService = app.twoFactorService
	router.UserService = app.userService

	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: router,
	}
}
