package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mixup-graphql-api/internal/adapter"
	"mixup-graphql-api/internal/cors"
	"mixup-graphql-api/internal/engine"
	"mixup-graphql-api/pkg/lambda"
)

// GraphQLHandlerDeps are the collaborators of a GraphQLHandler
type GraphQLHandlerDeps struct {
	// EnsureServerStarted blocks until the engine is ready
	EnsureServerStarted func(ctx context.Context) error
	Server              engine.Executor
	CORS                *cors.Policy
	// Context is handed to the engine as-is; nil means EmptyContext
	Context engine.ContextProvider
	Logger  *logrus.Logger
}

// GraphQLHandler serves one serverless invocation at a time
type GraphQLHandler struct {
	deps GraphQLHandlerDeps
	log  *logrus.Entry
}

// NewGraphQLHandler creates a new GraphQL handler
func NewGraphQLHandler(deps GraphQLHandlerDeps) *GraphQLHandler {
	if deps.CORS == nil {
		deps.CORS = cors.NewPolicy(cors.DefaultConfig())
	}
	if deps.Context == nil {
		deps.Context = EmptyContext
	}
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	return &GraphQLHandler{
		deps: deps,
		log:  deps.Logger.WithField("component", "graphql_handler"),
	}
}

// EmptyContext is the resolver context used until requests carry identity
func EmptyContext(ctx context.Context) (engine.Context, error) {
	return engine.Context{}, nil
}

// Handle runs one invocation: preflight short-circuit, engine readiness,
// request adaptation, execution and response assembly.
func (h *GraphQLHandler) Handle(ctx context.Context, event lambda.InboundEvent) (lambda.OutboundResponse, error) {
	start := time.Now()
	fields := logrus.Fields{
		"request_id": requestID(event.Headers),
		"method":     event.HTTPMethod,
		"path":       event.Path,
	}

	if h.deps.CORS.IsPreflight(event.HTTPMethod) {
		resp := h.deps.CORS.Preflight(event.Headers)
		h.logCompleted(fields, resp, start)
		return resp, nil
	}

	if err := h.deps.EnsureServerStarted(ctx); err != nil {
		h.log.WithFields(fields).WithError(err).Error("GraphQL server not ready")
		return lambda.OutboundResponse{}, fmt.Errorf("failed to start graphql server: %w", err)
	}

	req := adapter.NewCanonicalRequest(event)

	result, err := h.deps.Server.ExecuteHTTPGraphQLRequest(ctx, engine.ExecuteOptions{
		Request: req,
		Context: h.deps.Context,
	})
	if err != nil {
		h.log.WithFields(fields).WithError(err).Error("GraphQL execution failed")
		return lambda.OutboundResponse{}, fmt.Errorf("failed to execute graphql request: %w", err)
	}

	resp, err := adapter.AssembleResponse(result, h.deps.CORS.Headers(event.Headers))
	if err != nil {
		h.log.WithFields(fields).WithError(err).Error("Failed to assemble response")
		return lambda.OutboundResponse{}, fmt.Errorf("failed to assemble response: %w", err)
	}

	h.logCompleted(fields, resp, start)
	return resp, nil
}

// HandleAPIGateway serves an API Gateway proxy event through Handle
func (h *GraphQLHandler) HandleAPIGateway(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	resp, err := h.Handle(ctx, lambda.FromAPIGatewayProxyRequest(req))
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return resp.ToAPIGatewayProxyResponse(), nil
}

func (h *GraphQLHandler) logCompleted(fields logrus.Fields, resp lambda.OutboundResponse, start time.Time) {
	entry := h.log.WithFields(fields).WithFields(logrus.Fields{
		"status_code":   resp.StatusCode,
		"latency_ms":    float64(time.Since(start).Nanoseconds()) / 1000000,
		"response_size": len(resp.Body),
	})
	if resp.StatusCode >= 400 {
		entry.Warn("Client error")
		return
	}
	entry.Info("Request completed")
}

// requestID returns the caller supplied X-Request-ID or a new one
func requestID(headers map[string]lambda.HeaderValue) string {
	for _, key := range []string{"X-Request-ID", "x-request-id", "X-Request-Id"} {
		if v, ok := headers[key]; ok && v.First() != "" {
			return v.First()
		}
	}
	return uuid.New().String()
}
