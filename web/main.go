package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/margies-travel/docsearch/internal/azsearch"
	"github.com/margies-travel/docsearch/internal/config"
	"github.com/margies-travel/docsearch/internal/logger"
	"github.com/margies-travel/docsearch/internal/metrics"
	"github.com/margies-travel/docsearch/internal/query"
	"github.com/margies-travel/docsearch/internal/version"
)

// emptySearchMessage is shown when the search box is submitted blank.
const emptySearchMessage = "Search term cannot be empty."

// searcher is the part of the search client the handlers use.
type searcher interface {
	Search(ctx context.Context, q azsearch.Query) (*azsearch.Results, error)
	Health(ctx context.Context) error
}

func main() {
	cfg, err := config.LoadWeb()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	log, err := logger.New("web")
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	client, err := azsearch.New(cfg.SearchEndpoint, cfg.SearchQueryKey, cfg.SearchIndex, cfg.PageSize, log)
	if err != nil {
		log.Fatal("init search client", zap.Error(err))
	}

	srv, err := newServer(log, client)
	if err != nil {
		log.Fatal("init server", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           newRouter(srv, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      35 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("web server starting",
			zap.String("addr", cfg.BindAddr),
			zap.String("index", cfg.SearchIndex),
			zap.String("version", version.Version),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
}

func newRouter(srv *server, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())
	r.Use(requestLogger(log))

	r.Get("/", srv.handleHome)
	r.Get("/search", srv.handleSearch)
	r.Get("/health", srv.handleHealth)
	r.Get("/static/*", srv.handleStatic)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, "home.html", pageData{Title: "Margie's Travel document search"})
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	q, err := query.FromValues(r.URL.Query())
	if err != nil {
		msg := err.Error()
		if errors.Is(err, query.ErrEmptySearch) {
			msg = emptySearchMessage
		}
		s.renderError(w, msg)
		return
	}

	results, err := s.search.Search(r.Context(), q)
	if err != nil {
		log.Error("search request failed", zap.Error(err))
		s.renderError(w, err.Error())
		return
	}

	s.renderPage(w, "search.html", pageData{
		Title:       fmt.Sprintf("Search: %s", q.SearchText),
		SearchTerms: q.SearchText,
		Facet:       r.URL.Query().Get("facet"),
		Sort:        r.URL.Query().Get("sort"),
		Results:     results,
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.search.Health(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger emits one line per request and stores a request-scoped
// logger in the context for the handlers.
func requestLogger(log *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLog := log.With(zap.String("request_id", middleware.GetReqID(r.Context())))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), reqLog)))

			reqLog.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote", r.RemoteAddr),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// nothing better to do
	}
}
