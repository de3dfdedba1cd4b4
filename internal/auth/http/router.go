package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/tinylink/internal/auth/service"
	"github.com/aussiebroadwan/tinylink/internal/auth/store"
	"github.com/aussiebroadwan/tinylink/pkg/httpx"
	"github.com/aussiebroadwan/tinylink/pkg/jwtx"
	"github.com/aussiebroadwan/tinylink/pkg/policy"
	"github.com/aussiebroadwan/tinylink/pkg/slogx"

	_ "github.com/aussiebroadwan/tinylink/api/tinylink" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	validate     *validator.Validate
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	UserService *service.UserService
	LinkService *service.LinkService

	// TokenTTL is reported as expires_in on login.
	TokenTTL time.Duration
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		validate:     policy.NewValidator(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		TokenTTL:     jwtx.DefaultAccessTokenTTL,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerUsers()
	r.registerLinks()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			tinylink API
//	@version		0.1.0
//	@description	URL shortener with account management. Access tokens are HS256 JWTs
//	@description	issued by POST /v1/users/login and sent as a bearer token.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/tinylink
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{
		UserService: r.UserService,
		Verifier:    r.verifier,
		Validate:    r.validate,
		TokenTTL:    r.TokenTTL,
	}

	// POST /v1/users - strict rate limit by IP (public signup)
	r.Mux.Handle("POST /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /v1/users/login - strict rate limit by IP + username to slow brute force
	r.Mux.Handle("POST /v1/users/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "username"),
		),
	)

	// PUT /v1/users - rotate password, moderate rate limit by user
	r.Mux.Handle("PUT /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleUpdatePassword),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerLinks() {
	h := &LinksHandler{
		LinkService: r.LinkService,
		Validate:    r.validate,
	}

	admin := func(fn http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(policy.RoleAdmin),
			httpx.RateLimitByUser(limit),
		)
	}
	authed := func(fn http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(limit),
		)
	}

	r.Mux.Handle("POST /{$}", admin(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /{$}", admin(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("DELETE /{$}", admin(h.HandleUnsupportedDelete, httpx.LenientLimit))

	r.Mux.Handle("GET /keys", authed(h.HandleKeys, httpx.LenientLimit))
	r.Mux.Handle("GET /search/{uri}", authed(h.HandleSearch, httpx.LenientLimit))

	r.Mux.Handle("GET /{id}", authed(h.HandleRedirect, httpx.PublicLimit))
	r.Mux.Handle("PUT /{id}", admin(h.HandleUpdate, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /{id}", admin(h.HandleDelete, httpx.ModerateLimit))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
