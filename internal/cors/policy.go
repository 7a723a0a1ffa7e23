package cors

import (
	"net/http"
	"net/url"
	"strings"

	"mixup-graphql-api/pkg/lambda"
)

// Header names written by the policy
const (
	HeaderAllowOrigin  = "Access-Control-Allow-Origin"
	HeaderAllowHeaders = "Access-Control-Allow-Headers"
	HeaderAllowMethods = "Access-Control-Allow-Methods"
)

// Config holds the cross-origin settings
type Config struct {
	// AllowedHosts are exact hostnames. "*" allows any parseable origin.
	AllowedHosts []string
	// PreviewSuffix admits deploy previews, e.g. deploy-preview-12--mix-up.netlify.app
	PreviewSuffix  string
	AllowedHeaders []string
	AllowedMethods []string
}

// DefaultConfig returns the production allow-list
func DefaultConfig() Config {
	return Config{
		AllowedHosts:   []string{"localhost", "mixup.troyblank.com"},
		PreviewSuffix:  "mix-up.netlify.app",
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}
}

// Policy decides which cross-origin headers a response carries
type Policy struct {
	hosts         map[string]struct{}
	anyHost       bool
	previewSuffix string
	allowHeaders  string
	allowMethods  string
}

// NewPolicy builds a policy from config
func NewPolicy(cfg Config) *Policy {
	p := &Policy{
		hosts:         make(map[string]struct{}, len(cfg.AllowedHosts)),
		previewSuffix: strings.ToLower(cfg.PreviewSuffix),
		allowHeaders:  strings.Join(cfg.AllowedHeaders, ", "),
		allowMethods:  strings.Join(cfg.AllowedMethods, ", "),
	}
	for _, h := range cfg.AllowedHosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		if h == "*" {
			p.anyHost = true
			continue
		}
		p.hosts[h] = struct{}{}
	}
	return p
}

// IsPreflight reports whether method is the CORS pre-flight verb
func (p *Policy) IsPreflight(method string) bool {
	return strings.EqualFold(method, http.MethodOptions)
}

// HostAllowed reports whether a hostname may make cross-origin requests
func (p *Policy) HostAllowed(hostname string) bool {
	hostname = strings.ToLower(hostname)
	if hostname == "" {
		return false
	}
	if p.anyHost {
		return true
	}
	if _, ok := p.hosts[hostname]; ok {
		return true
	}
	return p.previewSuffix != "" && strings.HasSuffix(hostname, p.previewSuffix)
}

// Headers computes the CORS headers for a request. The Origin is echoed back
// only when its hostname is allowed; a missing or malformed Origin just omits
// that header.
func (p *Policy) Headers(headers map[string]lambda.HeaderValue) map[string]string {
	out := map[string]string{
		HeaderAllowHeaders: p.allowHeaders,
		HeaderAllowMethods: p.allowMethods,
	}

	origin := originOf(headers)
	if origin == "" {
		return out
	}
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return out
	}
	if p.HostAllowed(u.Hostname()) {
		out[HeaderAllowOrigin] = origin
	}
	return out
}

// Preflight answers a pre-flight request without touching the engine
func (p *Policy) Preflight(headers map[string]lambda.HeaderValue) lambda.OutboundResponse {
	return lambda.OutboundResponse{
		StatusCode: http.StatusOK,
		Headers:    p.Headers(headers),
		Body:       "",
	}
}

// originOf looks up the Origin header regardless of case. Only the first value
// of a multi-valued header counts.
func originOf(headers map[string]lambda.HeaderValue) string {
	for _, key := range []string{"origin", "Origin"} {
		if v, ok := headers[key]; ok && !v.IsNull() {
			return v.First()
		}
	}
	for key, v := range headers {
		if strings.EqualFold(key, "origin") && !v.IsNull() {
			return v.First()
		}
	}
	return ""
}
