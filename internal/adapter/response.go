package adapter

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"mixup-graphql-api/internal/engine"
	"mixup-graphql-api/pkg/lambda"
)

// DefaultContentType is sent unless the engine supplies its own
const DefaultContentType = "application/json"

// ErrNoResult is returned when an engine reports neither a result nor an error
var ErrNoResult = errors.New("engine returned no execution result")

// AssembleResponse turns an execution result into one outbound response.
// Engine headers are applied in order on top of the defaults and CORS headers,
// so the engine wins on collisions and later pairs win over earlier ones.
func AssembleResponse(result *engine.ExecutionResult, corsHeaders map[string]string) (lambda.OutboundResponse, error) {
	if result == nil {
		return lambda.OutboundResponse{}, ErrNoResult
	}

	headers := make(map[string]string, len(corsHeaders)+len(result.Headers)+1)
	headers["Content-Type"] = DefaultContentType
	for k, v := range corsHeaders {
		headers[k] = v
	}
	for _, h := range result.Headers {
		headers[h.Name] = h.Value
	}

	body, err := MaterializeBody(result.Body)
	if err != nil {
		return lambda.OutboundResponse{}, err
	}

	status := result.Status
	if status == 0 {
		status = http.StatusOK
	}

	return lambda.OutboundResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       body,
	}, nil
}

// MaterializeBody produces the full body text. Chunked bodies are drained one
// fragment at a time in production order; unknown kinds yield "".
func MaterializeBody(body engine.ResponseBody) (string, error) {
	switch b := body.(type) {
	case engine.CompleteBody:
		return b.Text, nil
	case *engine.CompleteBody:
		if b == nil {
			return "", nil
		}
		return b.Text, nil
	case engine.ChunkedBody:
		return drain(b)
	case *engine.ChunkedBody:
		if b == nil {
			return "", nil
		}
		return drain(*b)
	default:
		return "", nil
	}
}

func drain(b engine.ChunkedBody) (string, error) {
	if b.Fragments == nil {
		return "", nil
	}
	var sb strings.Builder
	for fragment, err := range b.Fragments {
		if err != nil {
			return "", fmt.Errorf("failed to read response fragment: %w", err)
		}
		sb.WriteString(fragment)
	}
	return sb.String(), nil
}
