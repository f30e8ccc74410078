// Package api provides the REST API server for smfplay
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/james-see/smfplay/pkg/player"
)

// @title smfplay API
// @version 1.0
// @description API for inspecting Standard MIDI Files and their playback timeline
// @host localhost:8080
// @BasePath /api/v1

// MaxUploadSize bounds the request body of an upload.
const MaxUploadSize = 8 << 20

// Server serves the inspection endpoints.
type Server struct {
	cfg       player.Config
	logger    *log.Logger
	router    *gin.Engine
	maxUpload int64
}

// NewServer builds the router. Uploaded files are parsed with cfg's settings.
func NewServer(cfg player.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{cfg: cfg, logger: logger, maxUpload: MaxUploadSize}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/inspect", s.handleInspect)
		v1.POST("/timeline", s.handleTimeline)
		v1.GET("/strategies", listStrategies)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s.router = r
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on port until the server fails.
func (s *Server) Run(port int) error {
	s.logger.Info("API server listening", "port", port)
	return s.router.Run(fmt.Sprintf(":%d", port))
}

func requestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start))
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "smfplay",
	})
}

// listStrategies godoc
// @Summary List playback strategies
// @Description Returns the multi-track scheduling strategies and the default
// @Tags info
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/strategies [get]
func listStrategies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"strategies": player.Strategies(),
		"default":    player.Merged.String(),
	})
}
