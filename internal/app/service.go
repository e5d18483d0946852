package app

import (
	"context"
	"errors"
	stdhttp "net/http"

	"ats-portal/internal/config"
	"ats-portal/internal/http"
	"ats-portal/internal/http/middleware"

	"go.uber.org/zap"
)

// Service is the running portal: HTTP server plus its background tasks.
type Service struct {
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
	csrf    *middleware.CSRFMiddleware
	cancel  context.CancelFunc
	closers []func() error
}

// Start serves HTTP until the server is shut down.
func (s *Service) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.config.Server.Addr()))
	if err := s.server.Start(s.config.Server.Addr()); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then stops background tasks and
// closes the session store connection.
func (s *Service) Shutdown(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	s.close()
	return err
}

func (s *Service) close() {
	if s.csrf != nil {
		s.csrf.Stop()
	}
	s.cancel()
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			s.logger.Warn("close failed", zap.Error(err))
		}
	}
}
