package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/charleschow/courtside/internal/core/clock"
	"github.com/charleschow/courtside/internal/core/roster"
	"github.com/charleschow/courtside/internal/core/session"
	"github.com/charleschow/courtside/internal/core/store"
	"github.com/charleschow/courtside/internal/events"
	"github.com/charleschow/courtside/internal/fanout"
	"github.com/charleschow/courtside/internal/telemetry"
)

// Deps is everything the API needs to serve requests.
type Deps struct {
	Repo      *roster.Repository
	Sessions  *store.SessionStore
	Bus       *events.Bus
	Fanout    *fanout.Server
	Scheduler clock.Scheduler
	Observers []session.Observer

	CommandRatePerSec float64
	CommandBurst      int
}

// Server is the scoreboard REST API plus the display WebSocket endpoint.
//
// Routes:
//
//	GET    /health
//	GET    /metrics
//	GET    /ws?session={id}
//	GET    /api/v1/sports
//	GET    /api/v1/sports/{sportID}
//	PUT    /api/v1/sports/{sportID}/settings
//	PUT    /api/v1/sports/{sportID}/teams/{teamID}
//	POST   /api/v1/sessions
//	GET    /api/v1/sessions
//	GET    /api/v1/sessions/{sessionID}
//	POST   /api/v1/sessions/{sessionID}/commands
//	DELETE /api/v1/sessions/{sessionID}[?force=true]
type Server struct {
	deps     Deps
	limiters *limiterSet
	router   chi.Router
}

func New(d Deps) *Server {
	s := &Server{
		deps:     d,
		limiters: newLimiterSet(d.CommandRatePerSec, d.CommandBurst),
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Encoding"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.Handler())
	if s.deps.Fanout != nil {
		r.Get("/ws", s.deps.Fanout.HandleWS)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(10 * time.Second))

		r.Get("/sports", s.listSports)
		r.Get("/sports/{sportID}", s.getSport)
		r.Put("/sports/{sportID}/settings", s.putSettings)
		r.Put("/sports/{sportID}/teams/{teamID}", s.putTeam)

		r.Post("/sessions", s.createSession)
		r.Get("/sessions", s.listSessions)
		r.Get("/sessions/{sessionID}", s.getSession)
		r.Post("/sessions/{sessionID}/commands", s.command)
		r.Delete("/sessions/{sessionID}", s.deleteSession)
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		telemetry.Plainf("httpapi: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger logs each request at debug level through telemetry.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		telemetry.Debugf("http: %s %s  status=%d  bytes=%d  %s",
			r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start).Round(time.Microsecond))
	})
}
