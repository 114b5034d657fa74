// Package platform loads configuration and wires the gateway's components.
package platform

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CurrentConfigVersion is the only supported config apiVersion.
const CurrentConfigVersion = "v1"

// Config holds the complete gateway configuration.
type Config struct {
	APIVersion  string                      `yaml:"apiVersion"`
	Server      ServerConfig                `yaml:"server"`
	Logging     LoggingConfig               `yaml:"logging"`
	Database    DatabaseConfig              `yaml:"database"`
	Engines     EnginesConfig               `yaml:"engines"`
	Metadata    MetadataConfig              `yaml:"metadata"`
	Yarn        YarnConfig                  `yaml:"yarn"`
	MCP         MCPConfig                   `yaml:"mcp"`
	Datasources map[string]DatasourceConfig `yaml:"datasources"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Name            string        `yaml:"name"`
	Address         string        `yaml:"address"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORS            CORSConfig    `yaml:"cors"`

	// UserHeader names a header set by a fronting proxy with the user name.
	UserHeader     string    `yaml:"user_header"`
	AllowAnonymous bool      `yaml:"allow_anonymous"`
	JWT            JWTConfig `yaml:"jwt"`
}

// CORSConfig configures cross-origin requests.
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// JWTConfig configures HMAC bearer token identity.
type JWTConfig struct {
	SigningKey string `yaml:"signing_key"`
	Issuer     string `yaml:"issuer"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig configures the query record store.
type DatabaseConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// EnginesConfig holds engine-wide adapter settings.
type EnginesConfig struct {
	Presto PrestoConfig `yaml:"presto"`
	Hive   HiveConfig   `yaml:"hive"`
}

// PrestoConfig configures the interactive engine adapter.
type PrestoConfig struct {
	PollInterval  time.Duration `yaml:"poll_interval"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxResultRows int           `yaml:"max_result_rows"`
	HeaderPrefix  string        `yaml:"header_prefix"`
	Source        string        `yaml:"source"`
}

// HiveConfig configures the batch engine adapter.
type HiveConfig struct {
	Driver        string `yaml:"driver"`
	JobPrefix     string `yaml:"job_prefix"`
	MaxResultRows int    `yaml:"max_result_rows"`
	Queue         string `yaml:"queue"`
}

// MetadataConfig configures the annotation service client.
type MetadataConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	Cache   CacheConfig   `yaml:"cache"`
}

// CacheConfig configures the annotation document cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// YarnConfig configures the resource manager client.
type YarnConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// MCPConfig configures the MCP endpoint.
type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DatasourceConfig describes one named datasource. At least one of Presto
// and Hive must be set.
type DatasourceConfig struct {
	Presto             *PrestoDatasource `yaml:"presto"`
	Hive               *HiveDatasource   `yaml:"hive"`
	ResourceManagerURL string            `yaml:"resource_manager_url"`
	MetadataServiceURL string            `yaml:"metadata_service_url"`
	DefaultSchema      string            `yaml:"default_schema"`
}

// PrestoDatasource holds coordinator connection settings.
type PrestoDatasource struct {
	Server  string `yaml:"server"`
	Catalog string `yaml:"catalog"`
	Schema  string `yaml:"schema"`
	User    string `yaml:"user"`
}

// HiveDatasource holds HiveServer2 connection settings.
type HiveDatasource struct {
	DSN string `yaml:"dsn"`
}

// LoadConfig loads configuration from a file.
// The path is expected to come from command line arguments, controlled by the administrator.
func LoadConfig(path string) (*Config, error) {
	// #nosec G304 -- path is from CLI args, controlled by admin
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration, expanding ${VAR} references and
// applying defaults.
func ParseConfig(data []byte) (*Config, error) {
	data = []byte(expandEnvVars(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.APIVersion == "" {
		cfg.APIVersion = CurrentConfigVersion
	}
	if cfg.APIVersion != CurrentConfigVersion {
		return nil, fmt.Errorf("unsupported config apiVersion %q; supported versions: %s",
			cfg.APIVersion, CurrentConfigVersion)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in the string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// applyDefaults applies default values to the config.
func applyDefaults(cfg *Config) {
	if cfg.Server.Name == "" {
		cfg.Server.Name = "query-gateway"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 25 * time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Metadata.Timeout == 0 {
		cfg.Metadata.Timeout = 10 * time.Second
	}
	if cfg.Metadata.Cache.TTL == 0 {
		cfg.Metadata.Cache.TTL = 5 * time.Minute
	}
	if cfg.Yarn.Timeout == 0 {
		cfg.Yarn.Timeout = 30 * time.Second
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.DSN == "" {
		errs = append(errs, "database.dsn is required")
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err.Error())
	}
	if len(c.Datasources) == 0 {
		errs = append(errs, "at least one datasource is required")
	}

	names := make([]string, 0, len(c.Datasources))
	for name := range c.Datasources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		errs = append(errs, c.Datasources[name].validate("datasources."+name)...)
	}

	if c.Server.JWT.Issuer != "" && c.Server.JWT.SigningKey == "" {
		errs = append(errs, "server.jwt.signing_key is required when server.jwt.issuer is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (d DatasourceConfig) validate(prefix string) []string {
	var errs []string
	if d.Presto == nil && d.Hive == nil {
		errs = append(errs, prefix+" must configure presto or hive")
	}
	if d.Presto != nil && d.Presto.Server == "" {
		errs = append(errs, prefix+".presto.server is required")
	}
	if d.Hive != nil && d.Hive.DSN == "" {
		errs = append(errs, prefix+".hive.dsn is required")
	}
	return errs
}
