package api

import (
	"net/http"

	infragin "github.com/Hosseinjeff/Wholesale-project/infrastructure/gin"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const maxBodyFactor = 4

// RouteOptions configures route-level middleware.
type RouteOptions struct {
	// JWTSecret guards the operational routes. Empty leaves them open.
	JWTSecret string
	// WebhookRate and WebhookBurst throttle the webhook. Zero disables.
	WebhookRate  float64
	WebhookBurst int
	// Metrics is served on /metrics when set.
	Metrics http.Handler
	// Events streams operational events on /api/v1/events when set.
	Events gin.HandlerFunc
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, h *Handler, opts RouteOptions) {
	router.GET("/version", h.Version)
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	v1 := router.Group("/api/v1")
	{
		webhook := []gin.HandlerFunc{}
		if opts.WebhookRate > 0 {
			webhook = append(webhook, RateLimit(rate.NewLimiter(rate.Limit(opts.WebhookRate), opts.WebhookBurst)))
		}
		if h.cfg.MaxContentLength > 0 {
			webhook = append(webhook, MaxBody(int64(h.cfg.MaxContentLength)*maxBodyFactor))
		}
		webhook = append(webhook, h.Webhook)
		v1.POST("/webhook", webhook...) // POST /api/v1/webhook

		v1.GET("/status", h.Status)                // GET /api/v1/status
		v1.GET("/logs", h.Logs)                    // GET /api/v1/logs?limit=
		v1.GET("/products", h.Products)            // GET /api/v1/products?limit=
		v1.GET("/messages/:id", h.Message)         // GET /api/v1/messages/:id
		v1.POST("/extract", h.Extract)             // POST /api/v1/extract
		v1.GET("/profiles", h.Profiles)            // GET /api/v1/profiles
		v1.GET("/quality/window", h.QualityWindow) // GET /api/v1/quality/window
		if opts.Events != nil {
			v1.GET("/events", opts.Events) // GET /api/v1/events?level=&channel=&function=
		}

		ops := infragin.ProtectedGroup(v1, "", opts.JWTSecret)
		{
			ops.POST("/ingestion/pause", h.Pause)   // POST /api/v1/ingestion/pause
			ops.POST("/ingestion/resume", h.Resume) // POST /api/v1/ingestion/resume
			ops.POST("/replay", h.Replay)           // POST /api/v1/replay
			ops.GET("/export", h.Export)            // GET /api/v1/export
		}
	}
}

// RateLimit rejects requests beyond the limiter with 429.
func RateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Status: "error", Error: "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// MaxBody caps the request body size.
func MaxBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{Status: "error", Error: "request body too large"})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
