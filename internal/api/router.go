package api

import (
	"lingoflow/internal/metrics"
	"lingoflow/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RegisterRoutes builds the engine. rdb may be nil, in which case write
// routes are limited per process only.
func RegisterRoutes(featureHandler *FeatureHandler, rdb *redis.Client, requestsPerSecond int) *gin.Engine {
	r := gin.New()

	// Global Middleware
	r.Use(
		middleware.CorsMiddleware(),
		middleware.RequestID(),
		middleware.GinZapLogger(),
		middleware.GinZapRecovery(),
		middleware.HttpMiddleware(),
		middleware.TraceMiddleware(),
	)
	r.SetTrustedProxies(nil)

	// Public Routes
	r.GET("/health", featureHandler.HealthCheck)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Rate Limiter for Write Operations
	writeLimiter := middleware.RateLimitMiddleware(rdb, middleware.RateLimiterConfig{Limit: requestsPerSecond})

	api := r.Group("/api")
	{
		api.GET("/features", featureHandler.ListFeatures)
		api.POST("/features", writeLimiter, featureHandler.CreateFeature)
		api.GET("/features/:id", featureHandler.GetFeature)
		api.PUT("/features/:id", writeLimiter, featureHandler.UpdateFeature)
		api.DELETE("/features/:id", writeLimiter, featureHandler.DeleteFeature)
		api.GET("/features/:id/progress", featureHandler.FeatureProgress)
		api.GET("/features/:id/export", featureHandler.ExportFeature)
		api.GET("/features/:id/fields/:fieldId/export", featureHandler.ExportField)
		api.GET("/versions", featureHandler.ListVersions)
		api.GET("/languages", ListLanguages)
	}
	return r
}
