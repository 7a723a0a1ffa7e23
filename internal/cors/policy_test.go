package cors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"mixup-graphql-api/pkg/lambda"
)

func TestHostAllowed(t *testing.T) {
	p := NewPolicy(DefaultConfig())

	tests := []struct {
		host string
		want bool
	}{
		{"localhost", true},
		{"LOCALHOST", true},
		{"mixup.troyblank.com", true},
		{"deploy-preview-12--mix-up.netlify.app", true},
		{"mix-up.netlify.app", true},
		{"evil.com", false},
		{"troyblank.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, p.HostAllowed(tt.host))
		})
	}
}

func TestHeaders(t *testing.T) {
	p := NewPolicy(DefaultConfig())

	tests := []struct {
		name       string
		headers    map[string]lambda.HeaderValue
		wantOrigin string
	}{
		{
			name:       "allowed origin with port",
			headers:    map[string]lambda.HeaderValue{"origin": lambda.Single("http://localhost:5173")},
			wantOrigin: "http://localhost:5173",
		},
		{
			name:       "capitalized key",
			headers:    map[string]lambda.HeaderValue{"Origin": lambda.Single("https://mixup.troyblank.com")},
			wantOrigin: "https://mixup.troyblank.com",
		},
		{
			name:       "mixed case key",
			headers:    map[string]lambda.HeaderValue{"ORIGIN": lambda.Single("http://localhost")},
			wantOrigin: "http://localhost",
		},
		{
			name:       "preview deploy",
			headers:    map[string]lambda.HeaderValue{"origin": lambda.Single("https://deploy-preview-3--mix-up.netlify.app")},
			wantOrigin: "https://deploy-preview-3--mix-up.netlify.app",
		},
		{
			name:       "first of many values",
			headers:    map[string]lambda.HeaderValue{"origin": lambda.Multi("http://localhost", "https://evil.com")},
			wantOrigin: "http://localhost",
		},
		{
			name:    "disallowed origin",
			headers: map[string]lambda.HeaderValue{"origin": lambda.Single("https://evil.com")},
		},
		{
			name:    "malformed origin",
			headers: map[string]lambda.HeaderValue{"origin": lambda.Single("not a url")},
		},
		{
			name:    "null origin",
			headers: map[string]lambda.HeaderValue{"origin": nil},
		},
		{
			name: "no headers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Headers(tt.headers)

			assert.Equal(t, "Content-Type, Authorization", got[HeaderAllowHeaders])
			assert.Equal(t, "GET, POST, OPTIONS", got[HeaderAllowMethods])
			if tt.wantOrigin == "" {
				assert.NotContains(t, got, HeaderAllowOrigin)
				return
			}
			assert.Equal(t, tt.wantOrigin, got[HeaderAllowOrigin])
		})
	}
}

func TestWildcardHost(t *testing.T) {
	p := NewPolicy(Config{AllowedHosts: []string{"*"}})

	got := p.Headers(map[string]lambda.HeaderValue{"origin": lambda.Single("https://anything.example")})
	assert.Equal(t, "https://anything.example", got[HeaderAllowOrigin])

	got = p.Headers(map[string]lambda.HeaderValue{"origin": lambda.Single("garbage")})
	assert.NotContains(t, got, HeaderAllowOrigin)
}

func TestIsPreflight(t *testing.T) {
	p := NewPolicy(DefaultConfig())

	assert.True(t, p.IsPreflight(http.MethodOptions))
	assert.True(t, p.IsPreflight("options"))
	assert.False(t, p.IsPreflight(http.MethodPost))
	assert.False(t, p.IsPreflight(""))
}

func TestPreflight(t *testing.T) {
	p := NewPolicy(DefaultConfig())

	resp := p.Preflight(map[string]lambda.HeaderValue{"origin": lambda.Single("http://localhost")})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "", resp.Body)
	assert.Equal(t, "http://localhost", resp.Headers[HeaderAllowOrigin])
}
