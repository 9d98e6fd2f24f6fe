package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"interview-analyzer/internal/auth"
	"interview-analyzer/internal/interviewer"
	"interview-analyzer/internal/ledger"
	"interview-analyzer/internal/metrics"
)

// Options содержит зависимости HTTP сервера
type Options struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64

	Interviewer *interviewer.Service
	Ledger      *ledger.Ledger
	Metrics     *metrics.Metrics
	Resolver    auth.Resolver
	Logger      logrus.FieldLogger
}

type Server struct {
	Router *chi.Mux
	opts   Options
	logger logrus.FieldLogger
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewMetrics()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 50 << 20
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 30 * time.Second
	}

	s := &Server{
		Router: chi.NewRouter(),
		opts:   opts,
		logger: opts.Logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.Router

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "interview-analyzer")
	})

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(s.opts.Resolver))
		r.Use(bodyLimit(s.opts.MaxBodyBytes))

		r.Post("/interview/start", s.handleStart)
		r.Post("/interview/frame", s.handleFrame)
		r.Post("/interview/answer", s.handleAnswer)
		r.Get("/interview/history", s.handleHistory)
		r.Get("/stats", s.handleStats)

		r.Get("/recruiter/candidate/{applicationID}", s.handleCandidate)
		r.Post("/recruiter/shortlist", s.handleShortlist)

		r.Get("/ledger", s.handleLedger)
		r.Get("/ledger/all", s.handleLedgerAll)
		r.Get("/ledger/verify", s.handleLedgerVerify)
	})
}

// Start слушает порт до отмены контекста, затем мягко останавливает сервер
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.opts.Port),
		Handler:      s.Router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("port", s.opts.Port).Info("HTTP сервер запущен")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	s.logger.Info("остановка HTTP сервера")
	return srv.Shutdown(shutdownCtx)
}

func bodyLimit(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
