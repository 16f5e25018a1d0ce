package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/showcasehq/showcase/internal/auth"
	"github.com/showcasehq/showcase/internal/cache"
	"github.com/showcasehq/showcase/internal/config"
	"github.com/showcasehq/showcase/internal/http/handlers"
	"github.com/showcasehq/showcase/internal/http/middlewares"
	"github.com/showcasehq/showcase/internal/observability"
)

// Deps is everything the router needs wired in. Stores are interfaces
// so tests and STORE=memory mode can swap implementations freely.
type Deps struct {
	Users    handlers.UserStore
	Projects handlers.ProjectStore
	Cache    cache.Store // nil disables list caching
	Verifier auth.Verifier
	Prom     *observability.Prom // nil disables metrics
	Ping     func() error        // nil degrades readiness to liveness
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(otelgin.Middleware("showcase"))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20))

	if cfg.RateLimit > 0 {
		rl := middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
		r.Use(rl.Middleware())
	}

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
		r.GET("/metrics", gin.WrapH(deps.Prom.Handler()))
	}

	verifier := deps.Verifier
	if verifier == nil {
		verifier = auth.Passthrough{}
	}
	gate := middlewares.NewGate(verifier)

	healthHandler := handlers.NewHealthHandler(deps.Ping)
	authHandler := handlers.NewAuthHandler(deps.Users, log)
	projectsHandler := handlers.NewProjectsHandlerWithCache(deps.Projects, deps.Cache, log)

	r.GET("/readyz", healthHandler.Readyz)

	api := r.Group("/api")
	{
		api.GET("/health", healthHandler.Health)

		api.POST("/auth/register", authHandler.Register)
		api.GET("/auth/profile", authHandler.Profile)

		api.GET("/projects", projectsHandler.List)
		api.GET("/projects/:id", projectsHandler.GetByID)
		api.POST("/projects", gate.RequireToken(), projectsHandler.Create)
		api.PUT("/projects/:id", gate.RequireToken(), projectsHandler.Update)
		api.DELETE("/projects/:id", gate.RequireToken(), projectsHandler.Delete)

		// like toggle is intentionally outside the gate
		api.POST("/projects/:id/like", projectsHandler.ToggleLike)
	}

	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	return r
}
