package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/bensonnlee/SRCode/internal/pass/service"
	"github.com/bensonnlee/SRCode/internal/pass/store"
	"github.com/bensonnlee/SRCode/pkg/cryptox"
	"github.com/bensonnlee/SRCode/pkg/httpx"
	"github.com/bensonnlee/SRCode/pkg/obs"
	"github.com/bensonnlee/SRCode/pkg/slogx"

	_ "github.com/bensonnlee/SRCode/api/pass" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	apiToken     string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	vault       *cryptox.Vault
	metrics     *obs.Metrics
	PassService *service.PassService
}

// NewRouter builds a router. An empty apiToken leaves /v1 open, which is
// only sensible when listening on loopback.
func NewRouter(
	svc *service.PassService,
	st store.Store,
	vault *cryptox.Vault,
	metrics *obs.Metrics,
	apiToken, buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		apiToken:     apiToken,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		vault:        vault,
		metrics:      metrics,
		PassService:  svc,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerPass()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			SRCode Pass API
//	@version		0.1.0
//	@description	Local API for the SRC student pass. Signs in through the campus CAS gateway, caches the Innosoft Fusion token and mints rotating gym barcodes.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Static API token from SRCODE_API_TOKEN. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) handle(pattern, route string, h http.Handler, m ...httpx.Middleware) {
	r.Mux.Handle(pattern, r.metrics.Instrument(route, httpx.Chain(h, m...)))
}

func (r *Router) registerPass() {
	auth := httpx.RequireAPIToken(r.apiToken)

	// Every login hits CAS; limit by IP + username so one user cannot lock
	// out another from the same address.
	r.handle("POST /v1/login", "/v1/login",
		&LoginHandler{PassService: r.PassService},
		auth,
		httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
	)
	r.handle("POST /v1/refresh", "/v1/refresh",
		&RefreshHandler{PassService: r.PassService},
		auth,
		httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
	)

	r.handle("GET /v1/barcode", "/v1/barcode",
		&BarcodeHandler{PassService: r.PassService},
		auth,
		httpx.RateLimitByIP(httpx.ModerateLimit),
	)

	r.handle("POST /v1/logout", "/v1/logout",
		&LogoutHandler{PassService: r.PassService},
		auth,
		httpx.RateLimitByIP(httpx.ModerateLimit),
	)
	r.handle("GET /v1/status", "/v1/status",
		&StatusHandler{PassService: r.PassService},
		auth,
		httpx.RateLimitByIP(httpx.LenientLimit),
	)
}

func (r *Router) registerSystem() {
	r.handle("GET /livez", "/livez",
		LivezHandler(r.startTime, r.buildVersion),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)
	r.handle("GET /readyz", "/readyz",
		ReadyzHandler(r.startTime, r.buildVersion, r.store, r.vault),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)

	if r.metrics != nil {
		r.Mux.Handle("GET /metrics", r.metrics.Handler())
	}
}
