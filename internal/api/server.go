package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"migrator/internal/api/handlers"
	"migrator/internal/api/middleware"
	"migrator/internal/config"
	"migrator/internal/database"
	"migrator/internal/logger"
	"migrator/internal/migration"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Initialize handlers
	engine := migration.NewEngine(cfg, logger, db.DB)
	migrationHandler := handlers.NewMigrationHandler(engine, logger)

	// Routes
	v1 := router.Group("/api/v1")
	{
		migrations := v1.Group("/migrations")
		{
			migrations.POST("/export", migrationHandler.Export)
			migrations.POST("/import", migrationHandler.Import)
			migrations.POST("/run", migrationHandler.Run)
			migrations.GET("/records", migrationHandler.Records)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		db:     db,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Minute, // a migration run blocks the request
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}
