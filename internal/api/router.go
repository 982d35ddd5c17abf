package api

import (
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"attendance-ingest-backend/internal/mw"
	"attendance-ingest-backend/internal/notification"
	"attendance-ingest-backend/internal/store"
	"attendance-ingest-backend/internal/timefmt"
)

// RouterConfig carries the router's dependencies and tunables.
type RouterConfig struct {
	Store           store.Store
	Formatter       *timefmt.Formatter
	WebPush         *webpush.Options
	Notifier        *notification.WorkerPool
	RecentLimit     int
	RateLimitPerSec float64
	RateBurst       int
	CacheTTL        time.Duration
}

// NewRouter creates and configures a new Gin router. Device pushes are
// accepted on every POST path; the query API lives under /api.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(Metrics())
	r.Use(cors.Default())

	handler := NewHandler(cfg.Store, cfg.Formatter, cfg.WebPush, cfg.Notifier, cfg.RecentLimit)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// The terminal pushes to whatever path its firmware fancies; ACK them all.
	r.POST("/*devicePath", handler.DevicePush)

	api := r.Group("/api")
	api.Use(mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateBurst))
	{
		var caching gin.HandlerFunc
		if cfg.CacheTTL > 0 {
			cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
			caching = mw.Cache(cacheStore, cfg.CacheTTL)
		} else {
			caching = func(c *gin.Context) { c.Next() }
		}

		api.GET("/events", caching, handler.GetEvents)
		api.GET("/attendance/:date", caching, handler.GetAttendance)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
