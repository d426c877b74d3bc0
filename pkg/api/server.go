package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/meridianworks/meridian/pkg/access"
	"github.com/meridianworks/meridian/pkg/httputil"
	"github.com/meridianworks/meridian/pkg/middleware"
	"github.com/meridianworks/meridian/pkg/observability"
)

// maxRequestBytes caps request bodies; the largest legitimate payload is
// an access update carrying a full permission bundle.
const maxRequestBytes = 1 << 20

// Server assembles the API router
type Server struct {
	engine  *access.Engine
	store   UserStore
	logger  *logrus.Logger
	slog    *observability.Logger
	metrics *observability.Metrics
}

// NewServer creates a server. metrics may be nil.
func NewServer(engine *access.Engine, store UserStore, logger *logrus.Logger, slog *observability.Logger, metrics *observability.Metrics) *Server {
	return &Server{engine: engine, store: store, logger: logger, slog: slog, metrics: metrics}
}

// Router builds the full handler chain: request ID, logging, recovery,
// identity resolution, then the versioned routes.
func (s *Server) Router(profiles middleware.ProfileSource) http.Handler {
	router := mux.NewRouter()

	NewAccessHandlers(s.engine, s.logger, s.metrics).RegisterRoutes(router)
	NewUserHandlers(s.store, s.engine, s.logger, s.metrics).RegisterRoutes(router)

	chain := []func(http.Handler) http.Handler{
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(s.slog),
		httputil.RecoveryMiddleware(s.slog),
		httputil.MaxBytesMiddleware(maxRequestBytes),
		httputil.ContentTypeMiddleware,
		middleware.Identity(s.engine, profiles),
	}
	if s.metrics != nil {
		chain = append(chain, s.metrics.HTTPMiddleware)
	}

	return httputil.Chain(chain...)(router)
}
