package handlers

import (
	"context"
	"net/http"
	"time"

	"spark-feed/logging"
	"spark-feed/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger checks that a dependency is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Router holds everything the HTTP surface needs
type Router struct {
	Feed         *FeedHandler
	Interactions *InteractionHandler
	RateLimiter  *RateLimiter // nil disables rate limiting
	DB           Pinger
}

// SetupRoutes builds the gin engine with middleware and all routes
func SetupRoutes(rt Router) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.GinLogger(), metrics.GinMiddleware(), Identity())

	r.GET("/health", HealthCheck(rt.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if rt.RateLimiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{rt.RateLimiter.Middleware(), h}
	}

	feed := r.Group("/feed")
	{
		feed.GET("", RequireUser(), rt.Feed.GetFeed)
		feed.GET("/todays-connection", RequireUser(), rt.Feed.GetTodaysConnection)
		feed.GET("/trending", public(rt.Feed.GetTrending)...)
		feed.GET("/location", public(rt.Feed.GetNearby)...)
	}

	authed := r.Group("/", RequireUser())
	{
		authed.POST("/interactions", rt.Interactions.RecordInteraction)
		authed.POST("/locations", rt.Interactions.RecordLocation)
	}

	return r
}

// HealthCheck reports service health, including database reachability
// GET /health
func HealthCheck(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				logging.Ctx(c.Request.Context()).Warn().Err(err).Msg("Health check database ping failed")
				status, code = "unhealthy", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{
			"status":  status,
			"service": "spark-feed",
			"version": "1.0.0",
		})
	}
}
