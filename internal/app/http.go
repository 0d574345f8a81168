package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/adanyl0v/tasklist/internal/config"
	"github.com/adanyl0v/tasklist/internal/delivery/http/v1"
	"github.com/adanyl0v/tasklist/internal/password"
	"github.com/adanyl0v/tasklist/internal/services"
	"github.com/adanyl0v/tasklist/internal/token"
)

func (a *App) MustListenAndServeHTTP(ctx context.Context) {
	router, err := a.newRouter()
	if err != nil {
		a.logger.Error().
			Err(err).
			Msg("failed to build router")
		panic(err)
	}

	err = a.serveHTTP(ctx, router)
	if err != nil {
		a.logger.Error().
			Err(err).
			Msg("failed to serve http")
		panic(err)
	}
}

// serveHTTP runs the server until SIGINT, SIGTERM or ctx cancellation, then
// shuts it down within the configured timeout.
func (a *App) serveHTTP(ctx context.Context, handler http.Handler) error {
	httpCfg := a.cfg.HTTP

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: handler,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info().Msg("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if err != nil {
		return err
	}
	a.logger.Info().Msg("shut down http server")
	return nil
}

func (a *App) newRouter() (*gin.Engine, error) {
	if a.cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens, err := token.New(a.cfg.JWT.SigningKey, a.cfg.JWT.Issuer, a.cfg.JWT.TTL)
	if err != nil {
		return nil, err
	}

	hasher, err := password.New(a.cfg.Password.Hasher, a.cfg.Password.BcryptCost)
	if err != nil {
		return nil, err
	}

	v1Handler := v1.New(
		a.logger,
		services.NewAccountService(a.logger, a.store, hasher, tokens),
		services.NewTaskService(a.logger, a.store),
		tokens,
		a.store,
	)

	router := gin.New()
	router.Use(v1.RequestLogger(a.logger))
	router.Use(gin.Recovery())
	v1.Register(router, v1Handler)
	v1.Register(router.Group("/api/v1"), v1Handler)
	return router, nil
}
