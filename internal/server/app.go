// Package server initializes and runs the backend application: it wires the
// repositories, services and HTTP transport together and handles graceful
// shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/listenalong/backend/internal/common"
	"github.com/listenalong/backend/internal/logging"
	"github.com/listenalong/backend/internal/server/config"
	"github.com/listenalong/backend/internal/server/httpapi"
	"github.com/listenalong/backend/internal/server/identity"
	"github.com/listenalong/backend/internal/server/mediaauth"
	"github.com/listenalong/backend/internal/server/partycode"
	"github.com/listenalong/backend/internal/server/services"
	"github.com/listenalong/backend/internal/server/shared/db"
)

type App struct {
	config *config.Config
	logger logging.Logger
	router http.Handler
}

func NewApp(c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	rm, err := db.NewPostgresRepositoryManager(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if c.OverlaySecret == "" {
		// unconfigured installs still need a valid secret; partners get a
		// generated one from the startup log
		secret, err := common.MakeRandHexString(httpapi.ServiceSecretLength / 2)
		if err != nil {
			return nil, fmt.Errorf("overlay secret generation error: %w", err)
		}
		c.OverlaySecret = secret
		logger.Warn(context.Background(), "overlay secret not configured, generated one", "secret", secret)
	}

	upstream := &http.Client{Timeout: c.UpstreamTimeout}

	verifier := identity.NewHTTPVerifier(upstream, c.IdentityProfileURL, c.IdentitySessionURL, logger)
	exchanger := mediaauth.NewHTTPExchanger(upstream, c.MediaTokenURL, c.MediaClientID, c.MediaClientSecret, c.MediaRedirectURI, logger)

	partySvc := services.NewPartyService(rm.Parties(), partycode.NewGenerator(rm.Parties()), logger)
	userSvc := services.NewUserService(rm.Users(), verifier, partySvc, logger)
	guard := services.NewSessionGuard(rm.Users())

	router := httpapi.NewRouter(httpapi.RouterConfig{
		UserHandler:    httpapi.NewUserHandler(userSvc, guard, logger),
		PartyHandler:   httpapi.NewPartyHandler(partySvc, guard, logger),
		MediaHandler:   httpapi.NewMediaHandler(exchanger, guard, c.MediaClientID, logger),
		OverlayHandler: httpapi.NewOverlayHandler(userSvc, guard, c.OverlaySecret, logger),
	})

	return &App{config: c, logger: logger, router: router}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: app.router,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, release := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer release()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "listening", "addr", app.config.EndpointAddrHTTP)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
