// Package httpapi exposes menus and their item trees over HTTP.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/mesh-intelligence/menus/internal/logging"
	"github.com/mesh-intelligence/menus/internal/menusync"
	"github.com/mesh-intelligence/menus/pkg/types"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 8 << 20

// Server routes menu requests to the store and the synchronizer.
type Server struct {
	menus   types.MenuStore
	items   types.ItemStore
	sync    *menusync.Synchronizer
	log     *slog.Logger
	metrics http.Handler
	origins []string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetricsHandler serves h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithCORS allows browser requests from the given origins. "*" allows any.
func WithCORS(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// New creates a Server. menus and items are usually the same backend that
// sync was built on.
func New(menus types.MenuStore, items types.ItemStore, sync *menusync.Synchronizer, opts ...Option) *Server {
	s := &Server{
		menus: menus,
		items: items,
		sync:  sync,
		log:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}

	menus := r.PathPrefix("/menus").Subrouter()
	menus.HandleFunc("", s.listMenus).Methods(http.MethodGet)
	menus.HandleFunc("", s.createMenu).Methods(http.MethodPost)
	menus.HandleFunc("/{id}", s.getMenu).Methods(http.MethodGet)
	menus.HandleFunc("/{id}", s.renameMenu).Methods(http.MethodPatch)
	menus.HandleFunc("/{id}", s.deleteMenu).Methods(http.MethodDelete)
	menus.HandleFunc("/{id}/items", s.getItems).Methods(http.MethodGet)
	menus.HandleFunc("/{id}/items", s.replaceItems).Methods(http.MethodPut)
}

// Handler returns a router with every route registered, wrapped with
// request logging, gzip compression and, when origins are configured, CORS.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	s.Register(r)
	r.Use(s.logRequests)

	var h http.Handler = gziphandler.GzipHandler(r)
	if len(s.origins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowedHeaders: []string{"Content-Type"},
		}).Handler(h)
	}
	return h
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			logging.DurationMS(float64(time.Since(start).Microseconds())/1000))
	})
}
