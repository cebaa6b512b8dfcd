// Package httpserver exposes the Insight API over HTTP. It owns the gin
// router, the correlation/logging middleware, and the single boundary where
// domain errors become response envelopes.
package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/insight/internal/logging"
	"github.com/dmitrijs2005/insight/internal/server/users"
)

type HTTPServer struct {
	address string
	logger  logging.Logger
	users   *users.Service
	engine  *gin.Engine
}

func NewHTTPServer(address string, l logging.Logger, us *users.Service) *HTTPServer {
	s := &HTTPServer{
		address: address,
		logger:  l.With("module", "http_server"),
		users:   us,
	}
	s.engine = s.buildRouter()
	return s
}

// Handler returns the fully wired router. Exposed for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.engine,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
