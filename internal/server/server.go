package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/greenleaf/internal/app/repositories"
	"github.com/yigit/greenleaf/internal/bootstrap"
	"github.com/yigit/greenleaf/internal/config"
	"github.com/yigit/greenleaf/internal/pkg/vision"
)

// Server holds the state for the HTTP server.
type Server struct {
	config *config.Config
	router *gin.Engine
	repos  *repositories.Repositories
	vision vision.Client
	logger zerolog.Logger
	http   *http.Server
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer() (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	ctx := context.Background()

	repos, err := bootstrap.SetupDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	storage, err := bootstrap.SetupFileStorage(cfg, lgr)
	if err != nil {
		_ = repos.Close(ctx)
		return nil, fmt.Errorf("failed to setup file storage: %w", err)
	}

	visionClient, err := bootstrap.SetupVision(ctx, cfg, lgr)
	if err != nil {
		_ = repos.Close(ctx)
		return nil, fmt.Errorf("failed to setup vision client: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, repos, storage, visionClient, lgr)
	if err != nil {
		_ = repos.Close(ctx)
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	return &Server{
		config: cfg,
		router: bootstrap.SetupRouter(cfg, deps, lgr),
		repos:  repos,
		vision: visionClient,
		logger: lgr,
	}, nil
}

// Run serves until SIGINT/SIGTERM or a listener failure, then shuts down.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s.http = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout(),
		WriteTimeout: s.config.WriteTimeout(),
		IdleTimeout:  2 * time.Minute,
	}

	listenErr := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		listenErr <- s.http.ListenAndServe()
	}()

	select {
	case err := <-listenErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info().Msg("Shutdown signal received")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the server and closes resources.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var errs []error

	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			errs = append(errs, err)
		}
	}

	if closer, ok := s.vision.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Vision client close error")
			errs = append(errs, err)
		}
	}

	if s.repos != nil && s.repos.Close != nil {
		s.logger.Info().Msg("Closing database connection...")
		if err := s.repos.Close(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Database close error")
			errs = append(errs, err)
		}
	}

	s.logger.Info().Msg("Server shutdown process complete.")
	return errors.Join(errs...)
}
