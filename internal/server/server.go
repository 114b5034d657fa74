// Package server composes the gateway's HTTP surface.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/txn2/query-gateway/pkg/auth"
	"github.com/txn2/query-gateway/pkg/platform"
)

// Build information, set at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const (
	readHeaderTimeout = 10 * time.Second
	corsMaxAge        = 300
)

// NewWithConfig loads, validates and wires the configuration at path.
func NewWithConfig(path string, opts ...platform.Option) (*platform.Platform, error) {
	cfg, err := platform.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts = append([]platform.Option{platform.WithConfig(cfg), platform.WithVersion(Version)}, opts...)
	p, err := platform.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating platform: %w", err)
	}
	return p, nil
}

// NewHandler routes health probes, the REST API and, when enabled, the MCP
// endpoint.
func NewHandler(p *platform.Platform) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /healthz", p.Health().LivenessHandler())
	mux.Handle("GET /readyz", p.Health().ReadinessHandler())
	mux.Handle("/api/", p.APIHandler())

	if srv := p.MCPServer(); srv != nil {
		mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return srv
		}, nil)
		mux.Handle("/mcp", auth.Middleware(p.Authenticator())(mcpHandler))
	}

	corsCfg := p.Config().Server.CORS
	if !corsCfg.Enabled {
		return mux
	}
	origins := corsCfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	headers := []string{"Accept", "Authorization", "Content-Type", "Mcp-Session-Id"}
	if h := p.Config().Server.UserHeader; h != "" {
		headers = append(headers, h)
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: headers,
		ExposedHeaders: []string{"Mcp-Session-Id"},
		MaxAge:         corsMaxAge,
	})(mux)
}

// New creates the HTTP server for the platform.
func New(p *platform.Platform) *http.Server {
	return &http.Server{
		Addr:              p.Config().Server.Address,
		Handler:           NewHandler(p),
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
