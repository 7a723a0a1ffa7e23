package engine

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/graph-gophers/graphql-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"mixup-graphql-api/internal/catalog"
)

var (
	// ErrNotStarted is returned when a request arrives before Start succeeded
	ErrNotStarted = errors.New("graphql server has not been started")
	// ErrAlreadyStarted is returned by a second call to Start
	ErrAlreadyStarted = errors.New("graphql server has already been started")
)

const contentTypeJSON = "application/json; charset=utf-8"

// Server is the default Engine: a graph-gophers schema over the catalog.
type Server struct {
	store          *catalog.Store
	maxDepth       int
	maxParallelism int
	log            *logrus.Entry

	mu     sync.RWMutex
	schema *graphql.Schema
}

var _ Engine = (*Server)(nil)

// Option configures a Server
type Option func(*Server)

// WithMaxDepth limits the selection depth of incoming queries
func WithMaxDepth(n int) Option {
	return func(s *Server) { s.maxDepth = n }
}

// WithMaxParallelism limits how many resolvers run concurrently per request
func WithMaxParallelism(n int) Option {
	return func(s *Server) { s.maxParallelism = n }
}

// WithLogger sets the logger used by the server
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Server) { s.log = logrus.NewEntry(logger).WithField("component", "engine") }
}

// New creates a server that is not yet started
func New(store *catalog.Store, opts ...Option) *Server {
	s := &Server{
		store: store,
		log:   logrus.WithField("component", "engine"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	defaultServer     *Server
	defaultServerOnce sync.Once
)

// Default returns the process-wide server over the built-in catalog
func Default() *Server {
	defaultServerOnce.Do(func() {
		defaultServer = New(catalog.Default())
	})
	return defaultServer
}

// Start parses the schema and makes the server ready to execute requests.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schema != nil {
		return ErrAlreadyStarted
	}

	var schemaOpts []graphql.SchemaOpt
	if s.maxDepth > 0 {
		schemaOpts = append(schemaOpts, graphql.MaxDepth(s.maxDepth))
	}
	if s.maxParallelism > 0 {
		schemaOpts = append(schemaOpts, graphql.MaxParallelism(s.maxParallelism))
	}

	start := time.Now()
	schema, err := graphql.ParseSchema(typeDefs, &queryResolver{store: s.store}, schemaOpts...)
	if err != nil {
		return errors.Wrap(err, "parse schema")
	}
	s.schema = schema

	s.log.WithField("startup_ms", float64(time.Since(start).Nanoseconds())/1000000).Info("GraphQL server started")
	return nil
}

// Stop releases the schema; the server must be started again before use.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schema = nil
	return nil
}

// Started reports whether Start has completed successfully
func (s *Server) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schema != nil
}

// ExecuteHTTPGraphQLRequest executes a canonical request. Request-level
// problems (bad method, missing query, validation errors) are reported inside
// the result as GraphQL error payloads; only failures of the server itself are
// returned as errors.
func (s *Server) ExecuteHTTPGraphQLRequest(ctx context.Context, opts ExecuteOptions) (*ExecutionResult, error) {
	s.mu.RLock()
	schema := s.schema
	s.mu.RUnlock()
	if schema == nil {
		return nil, ErrNotStarted
	}

	req := opts.Request
	if req == nil {
		return nil, errors.New("nil request")
	}

	var (
		single params
		batch  []any
	)
	switch req.Method {
	case http.MethodGet:
		p, err := paramsFromSearch(req.Search)
		if err != nil {
			return badRequest(err), nil
		}
		single = p
	case http.MethodPost:
		switch body := req.Body.(type) {
		case map[string]any:
			p, err := paramsFromObject(body)
			if err != nil {
				return badRequest(err), nil
			}
			single = p
		case []any:
			if len(body) == 0 {
				return badRequest(errors.New("batched requests must contain at least one operation")), nil
			}
			batch = body
		case nil:
			return badRequest(errors.New("POST body missing")), nil
		default:
			return badRequest(errors.New("POST body must be a JSON object or array")), nil
		}
	default:
		return &ExecutionResult{
			Status: http.StatusMethodNotAllowed,
			Headers: []HeaderPair{
				{Name: "Content-Type", Value: contentTypeJSON},
				{Name: "Allow", Value: "GET, POST"},
			},
			Body: CompleteBody{Text: errorBody(errors.New("GraphQL only supports GET and POST requests"))},
		}, nil
	}

	gqlCtx, err := resolveContext(ctx, opts.Context)
	if err != nil {
		return nil, errors.Wrap(err, "build request context")
	}

	if batch != nil {
		return &ExecutionResult{
			Status:  http.StatusOK,
			Headers: []HeaderPair{{Name: "Content-Type", Value: contentTypeJSON}},
			Body:    ChunkedBody{Fragments: s.batchFragments(ctx, schema, batch)},
		}, nil
	}

	resp := schema.Exec(ctx, single.Query, single.OperationName, single.Variables)
	out, err := json.Marshal(resp)
	if err != nil {
		return nil, errors.Wrap(err, "encode response")
	}

	status := http.StatusOK
	if len(resp.Errors) > 0 && resp.Data == nil {
		status = http.StatusBadRequest
	}

	s.log.WithFields(logrus.Fields{
		"context_keys":   len(gqlCtx),
		"operation_name": single.OperationName,
		"errors":         len(resp.Errors),
		"status_code":    status,
	}).Debug("GraphQL operation executed")

	return &ExecutionResult{
		Status:  status,
		Headers: []HeaderPair{{Name: "Content-Type", Value: contentTypeJSON}},
		Body:    CompleteBody{Text: string(out)},
	}, nil
}

// batchFragments executes each operation of a batch only when its fragment is
// pulled, yielding a JSON array piece by piece.
func (s *Server) batchFragments(ctx context.Context, schema *graphql.Schema, ops []any) func(yield func(string, error) bool) {
	return func(yield func(string, error) bool) {
		if !yield("[", nil) {
			return
		}
		for i, op := range ops {
			if i > 0 && !yield(",", nil) {
				return
			}
			fragment, err := s.executeBatchItem(ctx, schema, op)
			if err != nil {
				yield("", err)
				return
			}
			if !yield(fragment, nil) {
				return
			}
		}
		yield("]", nil)
	}
}

func (s *Server) executeBatchItem(ctx context.Context, schema *graphql.Schema, op any) (string, error) {
	obj, ok := op.(map[string]any)
	if !ok {
		return errorBody(errors.New("each batched operation must be a JSON object")), nil
	}
	p, err := paramsFromObject(obj)
	if err != nil {
		return errorBody(err), nil
	}
	out, err := json.Marshal(schema.Exec(ctx, p.Query, p.OperationName, p.Variables))
	if err != nil {
		return "", errors.Wrap(err, "encode batched response")
	}
	return string(out), nil
}

func badRequest(err error) *ExecutionResult {
	return &ExecutionResult{
		Status:  http.StatusBadRequest,
		Headers: []HeaderPair{{Name: "Content-Type", Value: contentTypeJSON}},
		Body:    CompleteBody{Text: errorBody(err)},
	}
}

func resolveContext(ctx context.Context, provider ContextProvider) (Context, error) {
	if provider == nil {
		return Context{}, nil
	}
	c, err := provider(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = Context{}
	}
	return c, nil
}
