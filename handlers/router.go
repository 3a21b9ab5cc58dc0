package handlers

import (
	"restroom-cleanliness-api/config"
	"restroom-cleanliness-api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterOptions struct {
	Predict *PredictHandler
	Health  *HealthHandler
	// Feed is nil when no live event source is configured.
	Feed      ScoreFeed
	CORS      config.CORSConfig
	MaxUpload int64
	Logger    *zap.Logger
}

func NewRouter(opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = opts.MaxUpload
	router.Use(gin.Recovery(), middleware.RequestLogger(opts.Logger), middleware.SetupCORS(opts.CORS))

	router.GET("/", Home)
	router.POST("/predict", opts.Predict.Predict)
	router.GET("/health", opts.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if opts.Feed != nil {
		router.GET("/ws/scores", LiveScores(opts.Feed, opts.Logger))
	}

	return router
}
