package adapter

import (
	"encoding/base64"
	stdjson "encoding/json"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"mixup-graphql-api/internal/engine"
	"mixup-graphql-api/pkg/lambda"
)

// NewCanonicalRequest converts an inbound event into the request shape the
// engine expects. It never fails: malformed input degrades to a raw body.
func NewCanonicalRequest(event lambda.InboundEvent) *engine.CanonicalRequest {
	method := strings.ToUpper(event.HTTPMethod)
	if method == "" {
		method = http.MethodGet
	}

	headers := make(engine.HeaderMap, len(event.Headers))
	for key, value := range event.Headers {
		if value.IsNull() {
			continue
		}
		headers[key] = value.String()
	}

	search := ""
	if event.RawQuery != "" {
		search = "?" + event.RawQuery
	}

	return &engine.CanonicalRequest{
		Method:  method,
		Headers: headers,
		Search:  search,
		Body:    parseBody(event),
	}
}

func parseBody(event lambda.InboundEvent) any {
	if event.Body == nil || *event.Body == "" {
		return nil
	}

	text := *event.Body
	if event.IsBase64Encoded {
		if decoded, ok := decodeBase64(text); ok {
			text = decoded
		}
	}

	return parseJSON(text)
}

// parseJSON returns the decoded value of text, or text itself when it is not
// strict JSON. goccy accepts leading zeros, a trailing dot and raw control
// characters, so the grammar is checked by encoding/json first.
func parseJSON(text string) any {
	if !stdjson.Valid([]byte(text)) {
		return text
	}
	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return text
	}
	return parsed
}

var base64Encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// decodeBase64 accepts padded or unpadded, standard or URL-safe input and
// ignores embedded whitespace. Invalid UTF-8 in the result is replaced.
func decodeBase64(s string) (string, bool) {
	s = strings.Join(strings.Fields(s), "")
	for _, enc := range base64Encodings {
		if b, err := enc.DecodeString(s); err == nil {
			return strings.ToValidUTF8(string(b), "\uFFFD"), true
		}
	}
	return "", false
}
