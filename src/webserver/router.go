package webserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func attachRoutes(r *gin.Engine, cfg Config) {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", RequestIDHeader},
		AllowCredentials: true,
	}))

	appsH := NewApps(cfg.Gallery, cfg.Chain, cfg.VotingSiteURL)
	contestH := NewContest(cfg.Gallery, cfg.Metadata, cfg.Now)
	targetH := NewTarget(cfg.Gallery, cfg.BaseContext, cfg.Logger)

	r.GET("/healthz", func(c *gin.Context) {
		snap := cfg.Gallery.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"contract":   snap.Contract,
			"generation": snap.Generation,
			"loaded":     !snap.LoadedAt.IsZero(),
		})
	})

	v1 := r.Group("/v1")
	{
		v1.GET("/apps", appsH.List)
		v1.GET("/apps/:id", appsH.Get)
		v1.GET("/apps/:id/like", appsH.Like)
		v1.GET("/contest", contestH.Get)

		admin := v1.Group("")
		if cfg.JWTSecret != "" {
			admin.Use(JWTMiddleware([]byte(cfg.JWTSecret)))
		}
		limiter := newRateLimiter(cfg.BaseContext, cfg.SwitchRate, time.Minute, cfg.Now)
		admin.Use(RateLimitMiddleware(limiter))
		admin.POST("/contract", targetH.Set)
	}
}
