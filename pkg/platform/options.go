package platform

import (
	"database/sql"
	"net/http"
)

// Options configures the platform.
type Options struct {
	// Config is the gateway configuration.
	Config *Config

	// DB is the record store connection (optional, opened from config if not provided).
	DB *sql.DB

	// HiveDBs are batch engine pools keyed by datasource (optional, opened
	// from config if not provided).
	HiveDBs map[string]*sql.DB

	// HTTPClient is used for the coordinator, resource manager and metadata
	// service (optional, per-client timeouts from config if not provided).
	HTTPClient *http.Client

	// Version is reported by the MCP server.
	Version string
}

// Option is a functional option for configuring the platform.
type Option func(*Options)

// WithConfig sets the configuration.
func WithConfig(cfg *Config) Option {
	return func(o *Options) {
		o.Config = cfg
	}
}

// WithDB sets the record store connection.
func WithDB(db *sql.DB) Option {
	return func(o *Options) {
		o.DB = db
	}
}

// WithHiveDBs sets the batch engine pools.
func WithHiveDBs(dbs map[string]*sql.DB) Option {
	return func(o *Options) {
		o.HiveDBs = dbs
	}
}

// WithHTTPClient sets the outbound HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = client
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(version string) Option {
	return func(o *Options) {
		o.Version = version
	}
}
