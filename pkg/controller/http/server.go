package http

import (
	"net/http"
	"time"

	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/service/metrics"
	"github.com/caseguard/riskmatrix/pkg/usecase"
	"github.com/caseguard/riskmatrix/pkg/utils/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodySize bounds request bodies; matrix documents are small
const maxBodySize = 1 << 20

type Server struct {
	router  *chi.Mux
	uc      *usecase.UseCases
	metrics *metrics.Manager
}

type Options func(*Server)

// WithMetrics exposes /metrics and records per-route request metrics
func WithMetrics(m *metrics.Manager) Options {
	return func(s *Server) {
		s.metrics = m
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(actorMiddleware)

		r.Route("/cases/{caseID}/risk", func(r chi.Router) {
			r.Post("/", s.computeRisk)
			r.Get("/latest", s.latestRisk)
			r.Get("/history", s.riskHistory)
		})

		r.Route("/risk-matrix", func(r chi.Router) {
			r.Get("/default", s.defaultMatrix)
			r.Post("/configs", s.createConfig)
			r.Get("/configs", s.listConfigs)
			r.Get("/configs/active", s.activeConfig)
			r.Get("/configs/{configID}", s.getConfig)
			r.Post("/configs/{configID}/activate", s.activateConfig)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger binds a logger carrying the request id to the request context
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.From(r.Context()).With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(logging.With(r.Context(), logger)))
	})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// defaultMatrix serves the built-in matrix used by tenants without an active config
func (s *Server) defaultMatrix(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, defaultMatrixResponse{
		Version: model.DefaultMatrixVersion,
		Config:  s.uc.Matrix.Default(),
	})
}
