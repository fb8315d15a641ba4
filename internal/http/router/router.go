// Package router assembles the gin engine from the application's modules.
package router

import (
	"net/http"
	"strings"

	apphttp "farebridge_backend/internal/http"
	"farebridge_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// New builds the HTTP engine: shared middleware, health endpoint, and every
// module's routes under /api/v1.
func New(app *apphttp.App) *gin.Engine {
	if !strings.EqualFold(app.Config.GetEnv(), "development") {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(corsMiddleware(app))
	if limit := app.Config.GetHTTPRateLimit(); limit > 0 {
		ipLimiter := httpkit.NewIPRateLimiter(rate.Limit(limit), app.Config.GetHTTPRateBurst(), app.Logger)
		engine.Use(ipLimiter.RateLimit())
	}

	engine.GET("/api/health", func(c *gin.Context) {
		for _, check := range app.Health {
			if err := check.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routerCtx := &apphttp.RouterContext{
		Engine: engine,
		V1:     engine.Group("/api/v1"),
	}
	for _, module := range app.Modules {
		module.RegisterRoutes(routerCtx)
		app.Logger.Info("registered module routes", "module", module.Name())
	}

	return engine
}

func corsMiddleware(app *apphttp.App) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", httpkit.RequestIDHeader)
	if app.Config.GetCORSAllowAll() {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = app.Config.GetCORSOrigins()
		corsConfig.AllowCredentials = app.Config.GetCORSAllowCreds()
	}
	return cors.New(corsConfig)
}
