package platform

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/txn2/query-gateway/pkg/api"
	"github.com/txn2/query-gateway/pkg/auth"
	"github.com/txn2/query-gateway/pkg/database/migrate"
	"github.com/txn2/query-gateway/pkg/engine"
	"github.com/txn2/query-gateway/pkg/engine/hive"
	"github.com/txn2/query-gateway/pkg/engine/presto"
	"github.com/txn2/query-gateway/pkg/gateway"
	"github.com/txn2/query-gateway/pkg/health"
	"github.com/txn2/query-gateway/pkg/mcptools"
	"github.com/txn2/query-gateway/pkg/metadata"
	"github.com/txn2/query-gateway/pkg/store"
	"github.com/txn2/query-gateway/pkg/store/postgres"
	"github.com/txn2/query-gateway/pkg/yarn"
)

// Platform is the gateway facade: it owns every component built from the
// configuration and their lifecycle.
type Platform struct {
	config    *Config
	lifecycle *Lifecycle

	db      *sql.DB
	ownsDB  bool
	store   store.Store
	migrate func(*sql.DB) error

	hive     *hive.Adapter
	ownsHive bool
	registry *engine.Registry
	gateway  *gateway.Gateway
	jobs     *yarn.Client

	resourceManagers map[string]string

	authenticator auth.Authenticator
	health        *health.Checker
	api           *api.Handler
	mcpServer     *mcp.Server
}

// New creates a new platform instance.
func New(opts ...Option) (*Platform, error) {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Config == nil {
		return nil, errors.New("config is required")
	}

	p := &Platform{
		config:    options.Config,
		lifecycle: NewLifecycle(),
		migrate:   migrate.Run,
		health:    health.NewChecker(),
	}

	if err := p.initializeComponents(options); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("initializing components: %w", err)
	}
	p.registerLifecycle()

	return p, nil
}

// initializeComponents builds the components in dependency order.
func (p *Platform) initializeComponents(opts *Options) error {
	if err := p.initStore(opts); err != nil {
		return err
	}
	if err := p.initEngines(opts); err != nil {
		return err
	}
	p.initGateway(opts)
	if err := p.initAuth(); err != nil {
		return err
	}
	p.initSurfaces(opts)
	return nil
}

func (p *Platform) initStore(opts *Options) error {
	db := opts.DB
	if db == nil {
		var err error
		db, err = sql.Open("postgres", p.config.Database.DSN)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		p.ownsDB = true
	}
	db.SetMaxOpenConns(p.config.Database.MaxOpenConns)

	p.db = db
	p.store = postgres.New(db)
	p.health.AddCheck("database", p.store.Ping)
	return nil
}

func (p *Platform) initEngines(opts *Options) error {
	var adapters []engine.Adapter

	prestoCfg, hiveCfg := p.engineConfigs()

	if len(prestoCfg.Datasources) > 0 {
		var (
			adapter *presto.Adapter
			err     error
		)
		if opts.HTTPClient != nil {
			adapter, err = presto.NewWithClient(prestoCfg, opts.HTTPClient)
		} else {
			adapter, err = presto.New(prestoCfg)
		}
		if err != nil {
			return fmt.Errorf("creating presto adapter: %w", err)
		}
		adapters = append(adapters, adapter)
	}

	if len(hiveCfg.Datasources) > 0 {
		if opts.HiveDBs != nil {
			p.hive = hive.NewWithDB(hiveCfg, opts.HiveDBs)
		} else {
			adapter, err := hive.New(hiveCfg)
			if err != nil {
				return fmt.Errorf("creating hive adapter: %w", err)
			}
			p.hive = adapter
			p.ownsHive = true
		}
		adapters = append(adapters, p.hive)
	}

	p.registry = engine.NewRegistry(adapters...)
	slog.Info("engines configured", "engines", p.registry.Kinds())
	return nil
}

// engineConfigs splits the datasources into per-engine adapter configs.
func (p *Platform) engineConfigs() (presto.Config, hive.Config) {
	ec := p.config.Engines
	prestoCfg := presto.Config{
		PollInterval:  ec.Presto.PollInterval,
		Timeout:       ec.Presto.Timeout,
		MaxResultRows: ec.Presto.MaxResultRows,
		HeaderPrefix:  ec.Presto.HeaderPrefix,
		Source:        ec.Presto.Source,
		Datasources:   make(map[string]presto.Datasource),
	}
	hiveCfg := hive.Config{
		Driver:        ec.Hive.Driver,
		JobPrefix:     ec.Hive.JobPrefix,
		MaxResultRows: ec.Hive.MaxResultRows,
		Queue:         ec.Hive.Queue,
		Datasources:   make(map[string]hive.Datasource),
	}

	for name, ds := range p.config.Datasources {
		if ds.Presto != nil {
			prestoCfg.Datasources[name] = presto.Datasource{
				Server:  ds.Presto.Server,
				Catalog: ds.Presto.Catalog,
				Schema:  ds.Presto.Schema,
				User:    ds.Presto.User,
			}
		}
		if ds.Hive != nil {
			hiveCfg.Datasources[name] = hive.Datasource{DSN: ds.Hive.DSN}
		}
	}
	return prestoCfg, hiveCfg
}

func (p *Platform) initGateway(opts *Options) {
	gwCfg := gateway.Config{Datasources: make(map[string]gateway.Datasource)}
	p.resourceManagers = make(map[string]string)
	for name, ds := range p.config.Datasources {
		gwCfg.Datasources[name] = gateway.Datasource{
			MetadataServiceURL: ds.MetadataServiceURL,
			DefaultSchema:      ds.DefaultSchema,
		}
		if ds.ResourceManagerURL != "" {
			p.resourceManagers[name] = ds.ResourceManagerURL
		}
	}

	var fetcher metadata.Fetcher
	if opts.HTTPClient != nil {
		fetcher = metadata.NewClientWithHTTP(opts.HTTPClient)
	} else {
		fetcher = metadata.NewClient(p.config.Metadata.Timeout)
	}
	if p.config.Metadata.Cache.Enabled {
		fetcher = metadata.NewCachedFetcher(fetcher, metadata.CacheConfig{TTL: p.config.Metadata.Cache.TTL})
	}

	p.gateway = gateway.New(gwCfg, p.registry, p.store, metadata.NewEnricher(fetcher))

	if len(p.resourceManagers) > 0 {
		yarnCfg := yarn.Config{
			Timeout:   p.config.Yarn.Timeout,
			JobPrefix: p.config.Engines.Hive.JobPrefix,
		}
		if yarnCfg.JobPrefix == "" {
			yarnCfg.JobPrefix = hive.DefaultJobPrefix
		}
		if opts.HTTPClient != nil {
			p.jobs = yarn.NewWithClient(yarnCfg, opts.HTTPClient)
		} else {
			p.jobs = yarn.New(yarnCfg)
		}
	}
}

func (p *Platform) initAuth() error {
	sc := p.config.Server
	var authenticators []auth.Authenticator

	if sc.UserHeader != "" {
		authenticators = append(authenticators, &auth.HeaderAuthenticator{Header: sc.UserHeader})
	}
	if sc.JWT.SigningKey != "" {
		jwtAuth, err := auth.NewJWTAuthenticator(auth.JWTConfig{
			SigningKey: []byte(sc.JWT.SigningKey),
			Issuer:     sc.JWT.Issuer,
		})
		if err != nil {
			return fmt.Errorf("creating jwt authenticator: %w", err)
		}
		authenticators = append(authenticators, jwtAuth)
	}

	allowAnonymous := sc.AllowAnonymous || len(authenticators) == 0
	if len(authenticators) == 0 {
		slog.Warn("no identity source configured, serving requests anonymously")
	}
	p.authenticator = auth.NewChainedAuthenticator(allowAnonymous, authenticators...)
	return nil
}

// initSurfaces builds the REST handler and, when enabled, the MCP server.
func (p *Platform) initSurfaces(opts *Options) {
	deps := api.Deps{
		Gateway:          p.gateway,
		Store:            p.store,
		ResourceManagers: p.resourceManagers,
	}
	// A nil *yarn.Client must not become a non-nil interface.
	if p.jobs != nil {
		deps.Jobs = p.jobs
	}
	p.api = api.NewHandler(deps, auth.Middleware(p.authenticator))

	if !p.config.MCP.Enabled {
		return
	}

	version := opts.Version
	if version == "" {
		version = "dev"
	}
	p.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    p.config.Server.Name,
		Version: version,
	}, nil)

	tkDeps := mcptools.Deps{
		Gateway:          p.gateway,
		ResourceManagers: p.resourceManagers,
	}
	if p.jobs != nil {
		tkDeps.Jobs = p.jobs
	}
	toolkit := mcptools.New(tkDeps)
	toolkit.RegisterTools(p.mcpServer)
	slog.Info("mcp tools registered", "tools", toolkit.Tools())
}

// registerLifecycle wires startup and shutdown. Connections close last.
func (p *Platform) registerLifecycle() {
	if p.ownsDB {
		p.lifecycle.AddCloser("database", p.db)
	}
	if p.hive != nil && p.ownsHive {
		p.lifecycle.AddCloser("hive", p.hive)
	}
	p.lifecycle.Add("migrations", func(context.Context) error {
		if err := p.migrate(p.db); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		return nil
	}, nil)
	p.lifecycle.Add("connectivity", p.checkConnectivity, nil)
	p.lifecycle.Add("readiness",
		func(context.Context) error {
			p.health.SetReady()
			return nil
		},
		func(context.Context) error {
			p.health.SetDraining()
			return nil
		})
}

// checkConnectivity pings the record store and every batch datasource in
// parallel. Only an unreachable record store fails startup; engines may come
// up after the gateway.
func (p *Platform) checkConnectivity(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := p.store.Ping(gctx); err != nil {
			return fmt.Errorf("pinging database: %w", err)
		}
		return nil
	})

	if p.hive != nil {
		for _, name := range p.hiveDatasources() {
			g.Go(func() error {
				if err := p.hive.Ping(gctx, name); err != nil {
					slog.Warn("hive datasource unreachable", "datasource", name, "error", err)
				}
				return nil
			})
		}
	}

	return g.Wait()
}

func (p *Platform) hiveDatasources() []string {
	var names []string
	for name, ds := range p.config.Datasources {
		if ds.Hive != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Start starts the platform.
func (p *Platform) Start(ctx context.Context) error {
	return p.lifecycle.Start(ctx)
}

// Stop stops the platform.
func (p *Platform) Stop(ctx context.Context) error {
	return p.lifecycle.Stop(ctx)
}

// Close releases the connections the platform opened.
func (p *Platform) Close() error {
	if p.lifecycle.IsStarted() {
		return p.lifecycle.Stop(context.Background())
	}

	var errs []error
	if p.hive != nil && p.ownsHive {
		if err := p.hive.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing hive: %w", err))
		}
	}
	if p.db != nil && p.ownsDB {
		if err := p.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing database: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Config returns the platform configuration.
func (p *Platform) Config() *Config {
	return p.config
}

// Gateway returns the query gateway.
func (p *Platform) Gateway() *gateway.Gateway {
	return p.gateway
}

// Store returns the record store.
func (p *Platform) Store() store.Store {
	return p.store
}

// Engines returns the engine registry.
func (p *Platform) Engines() *engine.Registry {
	return p.registry
}

// Jobs returns the resource manager client, or nil when no datasource has
// a resource manager.
func (p *Platform) Jobs() *yarn.Client {
	return p.jobs
}

// Authenticator returns the request authenticator.
func (p *Platform) Authenticator() auth.Authenticator {
	return p.authenticator
}

// Health returns the health checker.
func (p *Platform) Health() *health.Checker {
	return p.health
}

// APIHandler returns the REST API handler.
func (p *Platform) APIHandler() http.Handler {
	return p.api
}

// MCPServer returns the MCP server, or nil when MCP is disabled.
func (p *Platform) MCPServer() *mcp.Server {
	return p.mcpServer
}
