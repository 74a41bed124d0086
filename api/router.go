package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/webdigest/api/handler"
	"github.com/use-agent/webdigest/api/middleware"
	"github.com/use-agent/webdigest/cache"
	"github.com/use-agent/webdigest/config"
	"github.com/use-agent/webdigest/webhook"
)

// Deps are the collaborators served by the router. Cache and Notifier may
// be nil.
type Deps struct {
	Runner   handler.Runner
	Store    handler.Lister
	Pool     handler.StatsSource
	Cache    *cache.Cache
	Notifier *webhook.Notifier
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:     Recovery → Logger
//	API:        Auth (if enabled) → RateLimit
//	Summarize:  Concurrency
//
// Health endpoint is outside auth so monitoring probes always work.
func NewRouter(deps Deps, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health: no auth required.
	v1.GET("/health", handler.Health(deps.Pool, startTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/summarize",
		middleware.Concurrency(cfg.Server.MaxConcurrentRuns),
		handler.Summarize(deps.Runner, deps.Cache, deps.Notifier),
	)
	protected.GET("/summaries", handler.Summaries(deps.Store))

	return r
}
