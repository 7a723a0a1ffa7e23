package engine

import (
	stdjson "encoding/json"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// params is a single GraphQL operation request.
type params struct {
	Query         string
	OperationName string
	Variables     map[string]any
}

// paramsFromSearch reads query, operationName and variables from a GET
// request's search string.
func paramsFromSearch(search string) (params, error) {
	var p params
	values, err := url.ParseQuery(strings.TrimPrefix(search, "?"))
	if err != nil {
		return p, errors.Wrap(err, "invalid query string")
	}
	p.Query = values.Get("query")
	p.OperationName = values.Get("operationName")
	if raw, ok := values["variables"]; ok && raw[0] != "" {
		if !stdjson.Valid([]byte(raw[0])) {
			return p, errors.New("variables in the query string must be a JSON object")
		}
		if err := json.Unmarshal([]byte(raw[0]), &p.Variables); err != nil {
			return p, errors.Wrap(err, "variables in the query string must be a JSON object")
		}
	}
	if p.Query == "" {
		return p, errors.New("GraphQL operations must contain a non-empty `query`")
	}
	return p, nil
}

// paramsFromObject reads an operation out of a decoded JSON object.
func paramsFromObject(body map[string]any) (params, error) {
	var p params
	switch q := body["query"].(type) {
	case string:
		p.Query = q
	case nil:
	default:
		return p, errors.New("`query` must be a string")
	}
	if p.Query == "" {
		return p, errors.New("GraphQL operations must contain a non-empty `query`")
	}
	switch op := body["operationName"].(type) {
	case string:
		p.OperationName = op
	case nil:
	default:
		return p, errors.New("`operationName` must be a string")
	}
	switch v := body["variables"].(type) {
	case map[string]any:
		p.Variables = v
	case nil:
	default:
		return p, errors.New("`variables` must be an object")
	}
	return p, nil
}

type gqlError struct {
	Message string `json:"message"`
}

type errorPayload struct {
	Errors []gqlError `json:"errors"`
}

// errorBody renders a request-level error the way a GraphQL server reports it
// to HTTP clients.
func errorBody(err error) string {
	b, merr := json.Marshal(errorPayload{Errors: []gqlError{{Message: err.Error()}}})
	if merr != nil {
		return `{"errors":[{"message":"internal error"}]}`
	}
	return string(b)
}
