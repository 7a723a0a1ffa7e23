package handlers

import (
	"encoding/base64"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"mixup-graphql-api/pkg/lambda"
)

// ServeGin adapts a plain HTTP request to an inbound event so the local
// server runs exactly the code path of a deployed function.
func (h *GraphQLHandler) ServeGin(c *gin.Context) {
	event, err := eventFromRequest(c.Request)
	if err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		c.Abort()
		return
	}

	resp, err := h.Handle(c.Request.Context(), event)
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	for k, v := range resp.Headers {
		c.Header(k, v)
	}
	c.Data(resp.StatusCode, resp.Headers["Content-Type"], []byte(resp.Body))
}

func eventFromRequest(r *http.Request) (lambda.InboundEvent, error) {
	event := lambda.InboundEvent{
		HTTPMethod: r.Method,
		Path:       r.URL.Path,
		RawQuery:   r.URL.RawQuery,
	}

	if len(r.Header) > 0 {
		event.Headers = make(map[string]lambda.HeaderValue, len(r.Header))
		for k, v := range r.Header {
			if len(v) == 1 {
				event.Headers[k] = lambda.Single(v[0])
				continue
			}
			event.Headers[k] = lambda.Multi(v...)
		}
	}

	if r.Body != nil {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return event, err
		}
		if len(raw) > 0 {
			body := string(raw)
			// Binary payloads travel base64 encoded, as they do on Lambda
			if !utf8.Valid(raw) {
				body = base64.StdEncoding.EncodeToString(raw)
				event.IsBase64Encoded = true
			}
			event.Body = &body
		}
	}

	return event, nil
}
