package server

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/miguelmarques1/church-web/pkg/audit"
	"github.com/miguelmarques1/church-web/pkg/authn"
	"github.com/miguelmarques1/church-web/pkg/policy"
	"github.com/miguelmarques1/church-web/pkg/server/store"
	gormstore "github.com/miguelmarques1/church-web/pkg/server/store/gorm"
)

type Server struct {
	Router        *mux.Router
	DB            *gorm.DB
	Policy        *policy.Holder
	Authenticator *authn.Authenticator
	Audit         *audit.Logger
	Logger        *zap.Logger
	Registry      *prometheus.Registry
	Metrics       *Metrics

	UsersStore  store.UsersStore
	PolicyStore store.PolicyStore
	HealthStore store.HealthStore

	allowedOrigins []string
	accessLog      io.Writer
	srv            *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithAllowedOrigins enables CORS for the given web client origins.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.allowedOrigins = origins }
}

// WithAuditLogger records decisions and logins as audit events.
func WithAuditLogger(l *audit.Logger) Option {
	return func(s *Server) { s.Audit = l }
}

// WithLogger sets the operational logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.Logger = l }
}

// WithRegistry sets the prometheus registry served on /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.Registry = reg }
}

// WithAccessLog sets where the combined access log is written.
func WithAccessLog(w io.Writer) Option {
	return func(s *Server) { s.accessLog = w }
}

func NewServer(
	holder *policy.Holder,
	authenticator *authn.Authenticator,
	db *gorm.DB,
	host string,
	port string,
	opts ...Option,
) *Server {
	s := &Server{
		Router:        mux.NewRouter(),
		DB:            db,
		Policy:        holder,
		Authenticator: authenticator,
		Logger:        zap.NewNop(),
		accessLog:     os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Registry == nil {
		s.Registry = prometheus.NewRegistry()
	}
	s.Metrics = NewMetrics(s.Registry)

	if db != nil {
		s.UsersStore = gormstore.NewUsersStore(db)
		s.PolicyStore = gormstore.NewPolicyStore(db)
		s.HealthStore = gormstore.NewHealthStore(db)
	}

	s.srv = &http.Server{
		Handler: s.Handler(),
		Addr:    host + ":" + port,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the router wrapped with CORS and access logging.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router
	if len(s.allowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(s.allowedOrigins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
			handlers.AllowCredentials(),
		)(h)
	}
	return handlers.LoggingHandler(s.accessLog, h)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
