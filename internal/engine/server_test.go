package engine

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mixup-graphql-api/internal/catalog"
)

func startedServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	s := New(catalog.Default(), opts...)
	require.NoError(t, s.Start(context.Background()))
	return s
}

func completeText(t *testing.T, result *ExecutionResult) string {
	t.Helper()
	body, ok := result.Body.(CompleteBody)
	require.True(t, ok, "expected a complete body, got %T", result.Body)
	return body.Text
}

func chunkedText(t *testing.T, result *ExecutionResult) string {
	t.Helper()
	body, ok := result.Body.(ChunkedBody)
	require.True(t, ok, "expected a chunked body, got %T", result.Body)
	var sb strings.Builder
	for fragment, err := range body.Fragments {
		require.NoError(t, err)
		sb.WriteString(fragment)
	}
	return sb.String()
}

func post(body any) ExecuteOptions {
	return ExecuteOptions{Request: &CanonicalRequest{
		Method:  http.MethodPost,
		Headers: HeaderMap{"content-type": "application/json"},
		Body:    body,
	}}
}

func TestServerLifecycle(t *testing.T) {
	s := New(catalog.Default())
	assert.False(t, s.Started())

	_, err := s.ExecuteHTTPGraphQLRequest(context.Background(), post(map[string]any{"query": "{ lists { id } }"}))
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.Started())
	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted)

	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.Started())
	require.NoError(t, s.Start(context.Background()))
}

func TestExecutePostQuery(t *testing.T) {
	s := startedServer(t)

	result, err := s.ExecuteHTTPGraphQLRequest(context.Background(), post(map[string]any{
		"query": "{ lists { id name } }",
	}))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, result.Status)
	assert.Equal(t, []HeaderPair{{Name: "Content-Type", Value: contentTypeJSON}}, result.Headers)
	assert.JSONEq(t, `{"data":{"lists":[{"id":"1","name":"TV Shows"},{"id":"2","name":"Movies"}]}}`, completeText(t, result))
}

func TestExecuteGetWithVariables(t *testing.T) {
	s := startedServer(t)

	search := "?" + url.Values{
		"query":         {"query Pick($id: ID!) { list(id: $id) { name items { id } } }"},
		"operationName": {"Pick"},
		"variables":     {`{"id":"2"}`},
	}.Encode()

	result, err := s.ExecuteHTTPGraphQLRequest(context.Background(), ExecuteOptions{
		Request: &CanonicalRequest{Method: http.MethodGet, Search: search},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, result.Status)
	assert.JSONEq(t, `{"data":{"list":{"name":"Movies","items":[{"id":"m1"},{"id":"m2"},{"id":"m3"}]}}}`, completeText(t, result))
}

func TestExecuteUnknownListIsNull(t *testing.T) {
	s := startedServer(t)

	result, err := s.ExecuteHTTPGraphQLRequest(context.Background(), post(map[string]any{
		"query": `{ list(id: "nope") { name } }`,
	}))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, result.Status)
	assert.JSONEq(t, `{"data":{"list":null}}`, completeText(t, result))
}

func TestExecuteBatch(t *testing.T) {
	s := startedServer(t)

	result, err := s.ExecuteHTTPGraphQLRequest(context.Background(), post([]any{
		map[string]any{"query": `{ list(id: "1") { name } }`},
		"not an operation",
		map[string]any{"query": `{ list(id: "2") { name } }`},
	}))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, result.Status)
	assert.JSONEq(t, `[
		{"data":{"list":{"name":"TV Shows"}}},
		{"errors":[{"message":"each batched operation must be a JSON object"}]},
		{"data":{"list":{"name":"Movies"}}}
	]`, chunkedText(t, result))
}

func TestExecuteRequestErrors(t *testing.T) {
	s := startedServer(t)

	tests := []struct {
		name   string
		req    *CanonicalRequest
		status int
		want   string
	}{
		{
			name:   "missing POST body",
			req:    &CanonicalRequest{Method: http.MethodPost},
			status: http.StatusBadRequest,
			want:   "POST body missing",
		},
		{
			name:   "raw text body",
			req:    &CanonicalRequest{Method: http.MethodPost, Body: "not valid json"},
			status: http.StatusBadRequest,
			want:   "POST body must be a JSON object or array",
		},
		{
			name:   "empty batch",
			req:    &CanonicalRequest{Method: http.MethodPost, Body: []any{}},
			status: http.StatusBadRequest,
			want:   "at least one operation",
		},
		{
			name:   "missing query",
			req:    &CanonicalRequest{Method: http.MethodPost, Body: map[string]any{}},
			status: http.StatusBadRequest,
			want:   "non-empty `query`",
		},
		{
			name:   "variables not an object",
			req:    &CanonicalRequest{Method: http.MethodPost, Body: map[string]any{"query": "{ lists { id } }", "variables": "x"}},
			status: http.StatusBadRequest,
			want:   "`variables` must be an object",
		},
		{
			name:   "GET without query",
			req:    &CanonicalRequest{Method: http.MethodGet},
			status: http.StatusBadRequest,
			want:   "non-empty `query`",
		},
		{
			name:   "GET with malformed variables",
			req:    &CanonicalRequest{Method: http.MethodGet, Search: "?query=%7B+lists+%7B+id+%7D+%7D&variables=nope"},
			status: http.StatusBadRequest,
			want:   "variables in the query string must be a JSON object",
		},
		{
			name:   "GET with lenient number in variables",
			req:    &CanonicalRequest{Method: http.MethodGet, Search: "?query=%7B+lists+%7B+id+%7D+%7D&variables=%7B%22id%22%3A01%7D"},
			status: http.StatusBadRequest,
			want:   "variables in the query string must be a JSON object",
		},
		{
			name:   "unknown field",
			req:    &CanonicalRequest{Method: http.MethodPost, Body: map[string]any{"query": "{ nope }"}},
			status: http.StatusBadRequest,
			want:   "nope",
		},
		{
			name:   "unsupported method",
			req:    &CanonicalRequest{Method: http.MethodPut},
			status: http.StatusMethodNotAllowed,
			want:   "GraphQL only supports GET and POST requests",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.ExecuteHTTPGraphQLRequest(context.Background(), ExecuteOptions{Request: tt.req})
			require.NoError(t, err)

			assert.Equal(t, tt.status, result.Status)
			text := completeText(t, result)
			assert.Contains(t, text, `"errors"`)
			assert.Contains(t, text, tt.want)
		})
	}
}

func TestExecuteMethodNotAllowedHeaders(t *testing.T) {
	s := startedServer(t)

	result, err := s.ExecuteHTTPGraphQLRequest(context.Background(), ExecuteOptions{
		Request: &CanonicalRequest{Method: http.MethodDelete},
	})
	require.NoError(t, err)
	assert.Contains(t, result.Headers, HeaderPair{Name: "Allow", Value: "GET, POST"})
}

func TestExecuteMaxDepth(t *testing.T) {
	s := startedServer(t, WithMaxDepth(1))

	result, err := s.ExecuteHTTPGraphQLRequest(context.Background(), post(map[string]any{
		"query": "{ lists { items { id } } }",
	}))
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, result.Status)
	assert.Contains(t, completeText(t, result), `"errors"`)
}

func TestExecuteContextProvider(t *testing.T) {
	s := startedServer(t)

	calls := 0
	opts := post(map[string]any{"query": "{ lists { id } }"})
	opts.Context = func(ctx context.Context) (Context, error) {
		calls++
		return Context{"user": "anonymous"}, nil
	}

	_, err := s.ExecuteHTTPGraphQLRequest(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	boom := errors.New("no context")
	opts.Context = func(ctx context.Context) (Context, error) { return nil, boom }
	_, err = s.ExecuteHTTPGraphQLRequest(context.Background(), opts)
	assert.ErrorIs(t, err, boom)
}
