package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/terraconstructs/sandaran/internal/authz"
	"github.com/terraconstructs/sandaran/internal/filter"
	"github.com/terraconstructs/sandaran/internal/middleware"
	"github.com/terraconstructs/sandaran/internal/services/comment"
	"github.com/terraconstructs/sandaran/internal/services/document"
	"github.com/terraconstructs/sandaran/internal/services/emergency"
	"github.com/terraconstructs/sandaran/internal/services/iam"
	"github.com/terraconstructs/sandaran/internal/services/logistic"
	"github.com/terraconstructs/sandaran/internal/services/project"
	"github.com/terraconstructs/sandaran/internal/services/report"
	"github.com/terraconstructs/sandaran/internal/services/upload"
	"github.com/terraconstructs/sandaran/internal/services/user"
	"github.com/terraconstructs/sandaran/internal/services/validation"
	"github.com/terraconstructs/sandaran/internal/telemetry"
)

// Services bundles the domain services mounted by the router.
type Services struct {
	IAM       iam.Service
	Users     *user.Service
	Projects  *project.Service
	Reports   *report.Service
	Comments  *comment.Service
	Documents *document.Service
	Emergency *emergency.Service
	Logistics *logistic.Service
	// Uploads is optional; the upload routes are only mounted when set.
	Uploads *upload.Service
}

// RouterOptions controls the construction of the HTTP router.
type RouterOptions struct {
	Services   Services
	Authorizer *authz.Authorizer
	Validator  validation.Validator
	Filter     *filter.Filter
	Logger     logrus.FieldLogger
	// Metrics, when set, instruments every route and serves /metrics.
	Metrics *telemetry.Metrics
	// LoginLimiter throttles /auth/login per client IP.
	LoginLimiter *middleware.RateLimiter
	CORSOptions  *cors.Options
	// SecureCookie sets the Secure attribute on the session cookie.
	SecureCookie  bool
	Middleware    []func(http.Handler) http.Handler
	HealthHandler http.HandlerFunc
}

// DefaultCORSOptions returns the development CORS policy.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// CORSOptionsFor returns the default policy restricted to origins. An empty
// list keeps the defaults.
func CORSOptionsFor(origins []string) cors.Options {
	opts := DefaultCORSOptions()
	if len(origins) > 0 {
		opts.AllowedOrigins = origins
	}
	return opts
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NewRouter assembles a chi.Router with shared middleware, the CORS policy
// and every API route.
func NewRouter(opts RouterOptions) chi.Router {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	h := &handlers{
		svc:          opts.Services,
		authorizer:   opts.Authorizer,
		validator:    opts.Validator,
		filter:       opts.Filter,
		logger:       logger,
		secureCookie: opts.SecureCookie,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(logger))
	r.Use(chimw.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	r.Get("/health", healthHandler)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.Services.IAM, logger))

		h.mountAuth(r, opts.LoginLimiter)
		r.Route("/api", func(r chi.Router) {
			h.mountUsers(r)
			h.mountProjects(r)
			if opts.Services.Uploads != nil {
				h.mountUploads(r)
			}
		})
	})

	return r
}

// NewH2CHandler wraps the router with an h2c server for HTTP/2 over cleartext.
func NewH2CHandler(opts RouterOptions) http.Handler {
	return h2c.NewHandler(NewRouter(opts), &http2.Server{})
}
