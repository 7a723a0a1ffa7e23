package server

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"mixup-graphql-api/internal/catalog"
	"mixup-graphql-api/internal/config"
	"mixup-graphql-api/internal/cors"
	"mixup-graphql-api/internal/engine"
	"mixup-graphql-api/internal/handlers"
	"mixup-graphql-api/pkg/lambda"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *logrus.Logger
	Engine         *engine.Server
	CORS           *cors.Policy
	Lifecycle      *lambda.Lifecycle
	GraphQLHandler *handlers.GraphQLHandler
}

// NewContainer creates a new dependency injection container. The engine is
// not started here; the first request starts it through the lifecycle.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("failed to create container: nil config")
	}

	logger := config.NewLogger(cfg.Log)

	eng := engine.New(catalog.Default(),
		engine.WithMaxDepth(cfg.GraphQL.MaxDepth),
		engine.WithMaxParallelism(cfg.GraphQL.MaxParallelism),
		engine.WithLogger(logger),
	)

	policy := cors.NewPolicy(cors.Config{
		AllowedHosts:   cfg.CORS.AllowedHosts,
		PreviewSuffix:  cfg.CORS.PreviewSuffix,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
		AllowedMethods: cfg.CORS.AllowedMethods,
	})

	lifecycle := lambda.GetLifecycle()

	handler := handlers.NewGraphQLHandler(handlers.GraphQLHandlerDeps{
		EnsureServerStarted: func(ctx context.Context) error {
			return lifecycle.Ensure(ctx, eng)
		},
		Server: eng,
		CORS:   policy,
		Logger: logger,
	})

	return &Container{
		Config:         cfg,
		Logger:         logger,
		Engine:         eng,
		CORS:           policy,
		Lifecycle:      lifecycle,
		GraphQLHandler: handler,
	}, nil
}

// Ready reports whether the engine has been started successfully and not
// stopped since
func (c *Container) Ready() bool {
	return c.Lifecycle.IsStarted(c.Engine) && c.Engine.Started()
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.Engine == nil {
		return nil
	}
	c.Lifecycle.Forget(c.Engine)
	if err := c.Engine.Stop(context.Background()); err != nil {
		return fmt.Errorf("failed to stop graphql server: %w", err)
	}
	return nil
}
