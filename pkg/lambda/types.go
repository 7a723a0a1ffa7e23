package lambda

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// HeaderValue holds the value(s) of one inbound header. A nil HeaderValue
// means the header was sent with a null value.
type HeaderValue []string

// Single returns a single-valued header
func Single(v string) HeaderValue {
	return HeaderValue{v}
}

// Multi returns a list-valued header. An empty list is still a present header.
func Multi(v ...string) HeaderValue {
	if v == nil {
		return HeaderValue{}
	}
	return HeaderValue(v)
}

// IsNull reports whether the header was sent as null
func (h HeaderValue) IsNull() bool {
	return h == nil
}

// String joins the values with ", "
func (h HeaderValue) String() string {
	return strings.Join(h, ", ")
}

// First returns the first value, or "" when there is none
func (h HeaderValue) First() string {
	if len(h) == 0 {
		return ""
	}
	return h[0]
}

// UnmarshalJSON accepts a string, a scalar, a list or null
func (h *HeaderValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*h = nil
	case []any:
		out := make(HeaderValue, 0, len(v))
		for _, item := range v {
			out = append(out, scalarString(item))
		}
		*h = out
	default:
		*h = HeaderValue{scalarString(v)}
	}
	return nil
}

// MarshalJSON writes a single value as a string and several as a list
func (h HeaderValue) MarshalJSON() ([]byte, error) {
	switch {
	case h == nil:
		return []byte("null"), nil
	case len(h) == 1:
		return json.Marshal(h[0])
	default:
		return json.Marshal([]string(h))
	}
}

func scalarString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// InboundEvent is the HTTP event a serverless runtime hands to a function
type InboundEvent struct {
	HTTPMethod      string                 `json:"httpMethod,omitempty"`
	Path            string                 `json:"path,omitempty"`
	Body            *string                `json:"body,omitempty"`
	Headers         map[string]HeaderValue `json:"headers,omitempty"`
	RawQuery        string                 `json:"rawQuery,omitempty"`
	IsBase64Encoded bool                   `json:"isBase64Encoded,omitempty"`
}

// OutboundResponse is the value returned to the serverless runtime
type OutboundResponse struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// FromAPIGatewayProxyRequest converts an API Gateway proxy event. Multi-value
// headers take precedence over single-value ones.
func FromAPIGatewayProxyRequest(req events.APIGatewayProxyRequest) InboundEvent {
	event := InboundEvent{
		HTTPMethod:      req.HTTPMethod,
		Path:            req.Path,
		IsBase64Encoded: req.IsBase64Encoded,
	}

	if len(req.Headers) > 0 || len(req.MultiValueHeaders) > 0 {
		event.Headers = make(map[string]HeaderValue, len(req.Headers))
		for k, v := range req.Headers {
			event.Headers[k] = Single(v)
		}
		for k, v := range req.MultiValueHeaders {
			event.Headers[k] = Multi(v...)
		}
	}

	switch {
	case len(req.MultiValueQueryStringParameters) > 0:
		event.RawQuery = url.Values(req.MultiValueQueryStringParameters).Encode()
	case len(req.QueryStringParameters) > 0:
		values := url.Values{}
		for k, v := range req.QueryStringParameters {
			values.Set(k, v)
		}
		event.RawQuery = values.Encode()
	}

	if req.Body != "" {
		body := req.Body
		event.Body = &body
	}

	return event
}

// ToAPIGatewayProxyResponse converts an outbound response for API Gateway
func (r OutboundResponse) ToAPIGatewayProxyResponse() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: r.StatusCode,
		Headers:    r.Headers,
		Body:       r.Body,
	}
}
