// Package server provides the HTTP API of the site admin panel.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jonathan/sng-admin/internal/apperr"
	"github.com/jonathan/sng-admin/internal/assets"
	"github.com/jonathan/sng-admin/internal/audit"
	"github.com/jonathan/sng-admin/internal/config"
	"github.com/jonathan/sng-admin/internal/content"
	"github.com/jonathan/sng-admin/internal/schemas"
	"github.com/jonathan/sng-admin/internal/server/middleware"
	"github.com/jonathan/sng-admin/internal/server/ratelimit"
	"github.com/jonathan/sng-admin/internal/session"
	"github.com/jonathan/sng-admin/internal/types"
)

// MaxBodyBytes caps every request body.
const MaxBodyBytes = 10 << 20

const forbiddenOriginMessage = "Origin запрещен политикой безопасности"

// Deps are the components the server routes to.
type Deps struct {
	Config    *config.Config
	Sessions  *session.Manager
	Projects  *content.Collection[types.Project]
	Vacancies *content.Collection[types.Vacancy]
	Documents *content.Collection[types.DocumentItem]
	Settings  *content.Settings
	Assets    *assets.Service
	Audit     *audit.Logger
	Validator *schemas.Validator
	// RateLimiter defaults to one built from RATE_LIMIT_* variables.
	RateLimiter *ratelimit.Limiter
	Logger      *slog.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	router      chi.Router
	cfg         *config.Config
	logger      *slog.Logger
	rateLimiter *ratelimit.Limiter
	sessions    *session.Manager
	audit       *audit.Logger
	validator   *schemas.Validator
	projects    *content.Collection[types.Project]
	vacancies   *content.Collection[types.Vacancy]
	documents   *content.Collection[types.DocumentItem]
	settings    *content.Settings
	assets      *assets.Service
}

// New creates a new server instance
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = ratelimit.NewLimiter(ratelimit.LoadConfig(deps.Config.BasePath))
	}
	validator := deps.Validator
	if validator == nil {
		validator = schemas.New()
	}

	s := &Server{
		cfg:         deps.Config,
		logger:      logger,
		rateLimiter: limiter,
		sessions:    deps.Sessions,
		audit:       deps.Audit,
		validator:   validator,
		projects:    deps.Projects,
		vacancies:   deps.Vacancies,
		documents:   deps.Documents,
		settings:    deps.Settings,
		assets:      deps.Assets,
	}
	s.setupRouter()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the configured router
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.withLogging)
	r.Use(chimw.Recoverer)
	r.Use(securityHeaders)
	r.Use(s.withOriginGuard)
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:    func(*http.Request, string) bool { return true },
		AllowedMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials:   true,
		OptionsPassthrough: true,
	}))
	r.Use(preflightNoContent)
	r.Use(s.withRateLimit)
	r.Use(limitBody)

	if s.cfg.BasePath == "" {
		s.routes(r)
	} else {
		r.Route(s.cfg.BasePath, s.routes)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		s.messageResponse(w, http.StatusNotFound, "Маршрут не найден")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		s.messageResponse(w, http.StatusMethodNotAllowed, "Метод не поддерживается")
	})

	s.router = r
}

func (s *Server) routes(r chi.Router) {
	r.Get("/health", s.handleHealth)

	r.Route("/public", func(r chi.Router) {
		r.Use(noCache)
		r.Get("/projects", publicList(s, s.projects))
		r.Get("/vacancies", publicList(s, s.vacancies))
		r.Get("/documents", publicList(s, s.documents))
		r.Get("/site-settings", s.handleGetSettings)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/refresh", s.handleRefresh)
		r.Post("/auth/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(accessValidator{s.sessions}))

			registerCollection(r, s, s.projects)
			registerCollection(r, s, s.vacancies)
			registerCollection(r, s, s.documents)

			r.Get("/settings", s.handleGetSettings)
			r.Put("/settings", s.handlePutSettings)
			r.Post("/assets/upload", s.handleUpload)
		})
	})
}

// Start listens until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run listens until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr, "base_path", s.cfg.BasePath)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Stop rate limiter cleanup goroutine
	s.rateLimiter.Stop()

	s.logger.Info("server stopped")
	return nil
}

// withLogging logs every request with slog.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", chimw.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// withOriginGuard rejects cross-origin requests from origins that are
// neither listed nor the API's own.
func (s *Server) withOriginGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" || s.originAllowed(r, origin) {
			next.ServeHTTP(w, r)
			return
		}
		s.messageResponse(w, http.StatusForbidden, forbiddenOriginMessage)
	})
}

func (s *Server) originAllowed(r *http.Request, origin string) bool {
	if slices.Contains(s.cfg.AllowedOrigins, origin) {
		return true
	}
	proto := r.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		proto = "https"
	}
	return r.Host != "" && origin == proto+"://"+r.Host
}

// preflightNoContent answers OPTIONS once CORS headers are set.
func preflightNoContent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

// readBody reads the request body, reporting an oversized one as
// PayloadTooLarge.
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, apperr.Wrap(apperr.PayloadTooLarge, "Слишком большой запрос", err)
		}
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return data, nil
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID returns the client IP. RealIP has already replaced
// RemoteAddr with the forwarded address when present.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	if info.RetryAfter > 0 {
		seconds := max(int(info.RetryAfter.Seconds()), 1)
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded",
		"path", r.URL.Path,
		"client", s.extractClientID(r),
		"limit", info.Limit,
		"reset", info.ResetTime.Format(time.RFC3339),
	)

	s.messageResponse(w, http.StatusTooManyRequests, info.Message)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

// actor returns the authenticated username, or "admin".
func actor(r *http.Request) string {
	if username, err := middleware.GetUsername(r); err == nil {
		return username
	}
	return "admin"
}

// accessValidator adapts session.Manager to middleware.TokenValidator.
type accessValidator struct {
	sessions *session.Manager
}

func (v accessValidator) ValidateToken(token string) (middleware.Principal, error) {
	claims, err := v.sessions.VerifyAccess(token)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
