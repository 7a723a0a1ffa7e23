package engine

import (
	"context"
	"iter"
)

// HeaderMap holds canonical request headers. Keys keep the casing they were
// supplied with, so "Origin" and "origin" are distinct entries.
type HeaderMap map[string]string

// CanonicalRequest is the engine-agnostic request shape derived from an
// inbound serverless event.
type CanonicalRequest struct {
	Method  string
	Headers HeaderMap
	// Search is empty or "?" followed by the raw query string.
	Search string
	// Body is the parsed JSON value, the raw text when it was not valid JSON,
	// or nil when no body was sent.
	Body any
}

// Context is the per-request value handed to resolvers.
type Context map[string]any

// ContextProvider builds the resolver context. The engine calls it exactly
// once per request.
type ContextProvider func(ctx context.Context) (Context, error)

// ExecuteOptions bundles the arguments of ExecuteHTTPGraphQLRequest.
type ExecuteOptions struct {
	Request *CanonicalRequest
	Context ContextProvider
}

// HeaderPair is one response header. Pairs are applied in order.
type HeaderPair struct {
	Name  string
	Value string
}

// Body kinds reported by ResponseBody.Kind.
const (
	KindComplete = "complete"
	KindChunked  = "chunked"
)

// ResponseBody is the tagged body of an ExecutionResult.
type ResponseBody interface {
	Kind() string
}

// CompleteBody is a body that is ready as a single string.
type CompleteBody struct {
	Text string
}

func (CompleteBody) Kind() string { return KindComplete }

// ChunkedBody is a body produced incrementally. Fragments yields the pieces in
// production order; a non-nil error ends the sequence.
type ChunkedBody struct {
	Fragments iter.Seq2[string, error]
}

func (ChunkedBody) Kind() string { return KindChunked }

// ExecutionResult is what the engine returns for one HTTP GraphQL request.
type ExecutionResult struct {
	// Status is the HTTP status; zero means the engine did not set one.
	Status  int
	Headers []HeaderPair
	Body    ResponseBody
}

// Executor runs canonical HTTP GraphQL requests.
type Executor interface {
	ExecuteHTTPGraphQLRequest(ctx context.Context, opts ExecuteOptions) (*ExecutionResult, error)
}

// Engine is the full collaborator contract: readiness plus execution.
type Engine interface {
	Executor
	Start(ctx context.Context) error
}
