package httpserver

import (
	"context"
	"net/http"

	"github.com/Adv1cer/infirmary/internal/core/domain"
	"github.com/Adv1cer/infirmary/internal/core/service"
	"github.com/Adv1cer/infirmary/internal/server/config"
	"github.com/Adv1cer/infirmary/internal/server/httpserver/handler"
	"github.com/Adv1cer/infirmary/internal/telemetry/logger"
	"github.com/Adv1cer/infirmary/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	Guard *service.GuardService
	Units *service.UnitService

	// Ready backs GET /ready. Nil means always ready.
	Ready func(ctx context.Context) error

	// Backend is the storage backend name reported by the status summary.
	Backend string

	Logger logger.Logger

	// Metrics records request metrics and serves /metrics. Nil disables both.
	Metrics *metric.Registry

	// CSRFHeader is the request header carrying the token.
	CSRFHeader string

	// RateLimitRPS and RateLimitBurst bound GET /csrf per client IP. RPS 0 disables.
	RateLimitRPS   float64
	RateLimitBurst int

	// AdminAllowList is the IP/CIDR allowlist for /admin/v1 (empty = loopback only).
	AdminAllowList []string

	// AllowedOrigins is the list of CORS origins (empty = no CORS headers).
	AllowedOrigins []string

	// TrustProxyHeaders takes the client IP from forwarding headers.
	TrustProxyHeaders bool
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		Backend:        "memory",
		CSRFHeader:     config.DefaultCSRFHeader,
		RateLimitRPS:   config.DefaultRateLimitRPS,
		RateLimitBurst: config.DefaultRateLimitBurst,
	}
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	header := cfg.CSRFHeader
	if header == "" {
		header = config.DefaultCSRFHeader
	}

	h := handler.New(handler.Config{
		Guard:   cfg.Guard,
		Units:   cfg.Units,
		Ready:   cfg.Ready,
		Backend: cfg.Backend,
		Logger:  log,
	})

	// Order: Recover -> RequestID -> Audit -> CORS -> route specific -> Handler
	base := []Middleware{
		Recover(log),
		RequestID(),
		Audit(log, cfg.Metrics),
		CORS(cfg.AllowedOrigins, header),
	}
	with := func(extra ...Middleware) http.Handler {
		mws := append(append([]Middleware{}, base...), extra...)
		return Chain(h, mws...)
	}

	csrf := RequireCSRF(cfg.Guard, header, log)
	acl := NetworkACL(cfg.AdminAllowList, cfg.TrustProxyHeaders, log)
	limiter := NewClientLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	mux := http.NewServeMux()

	// Health endpoints
	probe := Chain(h, Recover(log), RequestID())
	mux.Handle("GET /health", probe)
	mux.Handle("GET /ready", probe)

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(), Recover(log)))
	}

	// Token endpoints
	mux.Handle("GET /csrf", with(RateLimit(limiter, cfg.TrustProxyHeaders, cfg.Metrics)))
	mux.Handle("POST /csrf/verify", with(csrf))

	// Protected resource
	mux.Handle("GET /api/admin/unit", with())
	mux.Handle("POST /api/admin/unit", with(csrf))
	mux.Handle("PUT /api/admin/unit", with(csrf))
	mux.Handle("DELETE /api/admin/unit", with(csrf))

	// Admin endpoints
	mux.Handle("GET /admin/v1/status/summary", with(acl))
	mux.Handle("POST /admin/v1/gc/trigger", with(acl, csrf))

	// CORS preflight
	mux.Handle("OPTIONS /", Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), base...))

	// Everything unmatched, including unrouted methods on known paths.
	mux.Handle("/", Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, domain.ErrRouteNotFound)
	}), base...))

	return mux
}
