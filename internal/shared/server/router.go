package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/analyses"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/shared/config"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/shared/metrics"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/shared/server/middleware"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/shared/server/respond"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/uploads"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/usage"
)

const rateLimitGroupAnalyze = "ANALYZE"

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler *analyses.Handler
	UsageHandler    *usage.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	api.Use(
		middleware.Auth(cfg.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				rateLimitGroupAnalyze: {Rate: 0.5, Burst: 3},
			},
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost && strings.HasPrefix(c.Request.URL.Path, "/api/v1/analyses") {
					return rateLimitGroupAnalyze
				}
				return ""
			},
		}),
	)

	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}
	if deps.UsageHandler != nil {
		deps.UsageHandler.RegisterRoutes(api)
	}
	uploads.RegisterRoutes(api)

	if cfg.Env == "dev" && deps.UsageHandler != nil {
		dev := api.Group("/dev")
		deps.UsageHandler.RegisterDevRoutes(dev)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
