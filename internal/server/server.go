// Package server assembles the HTTP server: Connect services, health and
// metrics endpoints, and the static frontend.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/debtplan/internal/auth"
	"github.com/mmynk/debtplan/internal/config"
	"github.com/mmynk/debtplan/internal/metrics"
	"github.com/mmynk/debtplan/internal/middleware"
	"github.com/mmynk/debtplan/internal/money"
	"github.com/mmynk/debtplan/internal/service"
	"github.com/mmynk/debtplan/internal/storage"
	"github.com/mmynk/debtplan/pkg/api/apiconnect"
)

// apiPrefix is the path prefix shared by every Connect procedure.
const apiPrefix = "/debtplan.v1."

const shutdownTimeout = 10 * time.Second

// Server serves the debtplan API.
type Server struct {
	cfg     *config.Config
	store   storage.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
	handler http.Handler
}

// New wires services, interceptors and HTTP middleware.
func New(cfg *config.Config, store storage.Store, m *metrics.Metrics, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	formatter, err := money.NewFormatter(cfg.Locale, cfg.Currency)
	if err != nil {
		return nil, err
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, store, logger)
	obligationSvc := service.NewObligationService(store, service.ObligationOptions{
		Formatter: formatter,
		Location:  cfg.Location,
		Policy:    cfg.OverpaymentPolicy,
		Horizon:   cfg.ScheduleHorizon,
		Metrics:   m,
		Logger:    logger,
	})

	// metrics first so rejected tokens are counted too
	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(m),
		middleware.LoggingInterceptor(logger),
		middleware.RequireAuth(jwtManager,
			apiconnect.AuthServiceRegisterProcedure,
			apiconnect.AuthServiceLoginProcedure,
		),
	)

	mux := http.NewServeMux()
	authPath, authHandler := apiconnect.NewAuthServiceHandler(authSvc, interceptors)
	mux.Handle(authPath, authHandler)
	obligationPath, obligationHandler := apiconnect.NewObligationServiceHandler(obligationSvc, interceptors)
	mux.Handle(obligationPath, obligationHandler)

	s := &Server{cfg: cfg, store: store, metrics: m, logger: logger}
	mux.HandleFunc("GET /healthz", s.health)
	mux.Handle("GET /metrics", m.Handler())

	staticDir, err := filepath.Abs(cfg.StaticPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve static path: %w", err)
	}
	logger.Info("Serving static files", "path", staticDir)
	mux.Handle("/", staticHandler(staticDir))

	s.handler = middleware.RequestLogging(logger, middleware.CORS(mux))
	return s, nil
}

// Handler returns the HTTP/1.1 handler, without h2c. Useful for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr: s.cfg.Addr(),
		// HTTP/2 without TLS for Connect clients
		Handler:           h2c.NewHandler(s.handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Connect server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Error("Health check failed", "error", err)
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

// staticHandler serves the frontend, falling back to index.html for unknown
// paths.
func staticHandler(staticDir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, apiPrefix) {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean("/"+urlPath))
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}
		http.ServeFile(w, r, filePath)
	})
}
