package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mixup-graphql-api/internal/config"
	"mixup-graphql-api/internal/middleware"
	"mixup-graphql-api/pkg/server"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize dependencies
	container, err := server.NewContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer container.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := newRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	logrus.WithField("url", "http://localhost:"+cfg.Port+"/graphql").Info("Server ready")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

// newRouter serves the GraphQL handler on the local path and on the path the
// function has when deployed, so frontends work against either.
func newRouter(container *server.Container) *gin.Engine {
	cfg := container.Config

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(time.Second))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.ErrorHandler())

	router.GET("/health", func(c *gin.Context) {
		state := "healthy"
		if !container.Ready() {
			// Not an error: the engine starts with the first GraphQL request
			state = "starting"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    state,
			"mode":      config.GetDeploymentMode(),
			"timestamp": time.Now().UTC(),
		})
	})

	graphql := router.Group("")
	graphql.Use(middleware.RateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))
	graphql.Use(middleware.RequestSizeLimit(cfg.Server.MaxBodyBytes))
	{
		graphql.Any("/graphql", container.GraphQLHandler.ServeGin)
		graphql.Any("/.netlify/functions/graphql", container.GraphQLHandler.ServeGin)
	}

	return router
}
