package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nkiryanov/gopherauth/internal/db"
	"github.com/nkiryanov/gopherauth/internal/handlers"
	"github.com/nkiryanov/gopherauth/internal/logger"
	"github.com/nkiryanov/gopherauth/internal/service/auth"
	"github.com/nkiryanov/gopherauth/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/gopherauth/internal/service/hasher"
	"github.com/nkiryanov/gopherauth/internal/service/user"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
	Logger     logger.Logger

	// Release storage connections
	Close func()
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	l, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	storage, closeStorage, err := db.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize services
	tokenManager, err := tokenmanager.New(
		tokenmanager.Config{
			AccessSecret:  c.AccessSecret,
			RefreshSecret: c.RefreshSecret,
			AccessTTL:     c.AccessTTL,
			RefreshTTL:    c.RefreshTTL,
		},
		storage.Refresh(),
	)
	if err != nil {
		closeStorage()
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}
	userService := user.NewService(hasher.Default, storage.User())
	authService, err := auth.NewService(
		auth.Config{Secure: c.Environment == logger.EnvironmentProduction},
		tokenManager,
		userService,
	)
	if err != nil {
		closeStorage()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    handlers.NewRouter(authService, storage, registry, l),
		Logger:     l,
		Close:      closeStorage,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.Logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.Logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.Logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
