// Package presto provides the interactive engine adapter. It speaks the
// statement REST protocol directly so the query id, update type, warnings and
// error location reported by the coordinator all reach the caller.
package presto

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/txn2/query-gateway/pkg/engine"
)

const (
	defaultPollInterval  = 500 * time.Millisecond
	defaultTimeout       = 60 * time.Second
	defaultMaxResultRows = 500000
	defaultHeaderPrefix  = "X-Presto-"
	defaultSource        = "query-gateway"
	defaultUser          = "query-gateway"
)

// Datasource holds the coordinator settings of one datasource.
type Datasource struct {
	Server  string
	Catalog string
	Schema  string
	User    string
}

// Config holds Presto adapter configuration.
type Config struct {
	// PollInterval is the wait between polls while no data arrives.
	PollInterval time.Duration

	// Timeout bounds each HTTP round trip to the coordinator.
	Timeout time.Duration

	MaxResultRows int

	// HeaderPrefix selects the protocol dialect ("X-Presto-" or "X-Trino-").
	HeaderPrefix string
	Source       string
	Datasources  map[string]Datasource
}

// Adapter implements engine.Adapter for the interactive engine.
type Adapter struct {
	cfg    Config
	client *http.Client
	sleep  func(ctx context.Context, d time.Duration) error
}

// New creates a new Presto adapter.
func New(cfg Config) (*Adapter, error) {
	cfg = applyDefaults(cfg)
	return NewWithClient(cfg, &http.Client{Timeout: cfg.Timeout})
}

// NewWithClient creates a Presto adapter using the given HTTP client.
func NewWithClient(cfg Config, client *http.Client) (*Adapter, error) {
	if client == nil {
		return nil, errors.New("http client is required")
	}
	for name, ds := range cfg.Datasources {
		if ds.Server == "" {
			return nil, fmt.Errorf("presto server is required for datasource %q", name)
		}
	}
	return &Adapter{
		cfg:    applyDefaults(cfg),
		client: client,
		sleep:  sleepContext,
	}, nil
}

func applyDefaults(cfg Config) Config {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxResultRows <= 0 {
		cfg.MaxResultRows = defaultMaxResultRows
	}
	if cfg.HeaderPrefix == "" {
		cfg.HeaderPrefix = defaultHeaderPrefix
	}
	if cfg.Source == "" {
		cfg.Source = defaultSource
	}
	return cfg
}

// Kind returns engine.KindPresto.
func (*Adapter) Kind() engine.Kind {
	return engine.KindPresto
}

// RunQuery submits the statement and polls until the coordinator stops
// returning a next URI. If ctx ends while polling, the running query is
// cancelled on the coordinator.
func (a *Adapter) RunQuery(ctx context.Context, q engine.Query) (string, *engine.Result, error) {
	ds, ok := a.cfg.Datasources[q.Datasource]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", engine.ErrUnknownDatasource, q.Datasource)
	}

	s := session{user: q.User, catalog: ds.Catalog, schema: ds.Schema}
	if s.user == "" {
		s.user = ds.User
	}
	if s.user == "" {
		s.user = defaultUser
	}

	page, err := a.submit(ctx, ds.Server, q.Text, s)
	if err != nil {
		return "", nil, fmt.Errorf("submitting query: %w", err)
	}
	queryID := page.ID

	c := newCollector(a.cfg.MaxResultRows)
	for {
		c.add(page)
		if page.NextURI == "" {
			break
		}
		// At the cap the loop keeps polling until a row past the cap arrives
		// or the query finishes, so a result that ends exactly at the cap is
		// not reported as truncated.
		if c.truncated {
			a.cancel(page.NextURI, s)
			break
		}
		if len(page.Data) == 0 {
			if err := a.sleep(ctx, a.cfg.PollInterval); err != nil {
				a.cancel(page.NextURI, s)
				return queryID, nil, fmt.Errorf("waiting for query %s: %w", queryID, err)
			}
		}

		next, err := a.advance(ctx, page.NextURI, s)
		if err != nil {
			if ctx.Err() != nil {
				a.cancel(page.NextURI, s)
			}
			return queryID, nil, fmt.Errorf("polling query %s: %w", queryID, err)
		}
		page = next
	}

	if c.truncated {
		return queryID, c.result(engine.TruncatedWarning(a.cfg.MaxResultRows)), nil
	}
	if page.Error != nil {
		return queryID, nil, toQueryError(queryID, page.Error)
	}
	if page.Stats.State == stateFailed || page.Stats.State == stateCanceled {
		return queryID, nil, &engine.QueryError{
			QueryID: queryID,
			Message: "query " + strings.ToLower(page.Stats.State),
		}
	}
	return queryID, c.result(""), nil
}

func toQueryError(queryID string, qe *queryError) *engine.QueryError {
	e := &engine.QueryError{
		QueryID:   queryID,
		Message:   qe.Message,
		ErrorName: qe.ErrorName,
	}
	if qe.ErrorLocation != nil {
		e.Line = qe.ErrorLocation.LineNumber
		e.Column = qe.ErrorLocation.ColumnNumber
	}
	return e
}

// collector accumulates pages into a result, stopping at maxRows.
type collector struct {
	maxRows    int
	columns    []string
	rows       [][]*string
	updateType string
	warnings   []string
	truncated  bool
}

func newCollector(maxRows int) *collector {
	return &collector{maxRows: maxRows}
}

func (c *collector) add(page *statementResponse) {
	if c.columns == nil && len(page.Columns) > 0 {
		c.columns = make([]string, len(page.Columns))
		for i, col := range page.Columns {
			c.columns[i] = col.Name
		}
	}
	if page.UpdateType != "" {
		c.updateType = page.UpdateType
	}
	for _, w := range page.Warnings {
		if w.Message != "" && !contains(c.warnings, w.Message) {
			c.warnings = append(c.warnings, w.Message)
		}
	}
	for _, row := range page.Data {
		if len(c.rows) >= c.maxRows {
			c.truncated = true
			return
		}
		cells := make([]*string, len(row))
		for i, v := range row {
			cells[i] = engine.Cell(v)
		}
		c.rows = append(c.rows, cells)
	}
}

func (c *collector) result(extraWarning string) *engine.Result {
	warnings := c.warnings
	if extraWarning != "" {
		warnings = append(warnings, extraWarning)
	}
	r := &engine.Result{
		UpdateType: c.updateType,
		Warning:    strings.Join(warnings, "\n"),
	}
	if r.UpdateType == "" {
		r.Columns = c.columns
		if r.Columns == nil {
			r.Columns = []string{}
		}
		r.Rows = c.rows
		if r.Rows == nil {
			r.Rows = [][]*string{}
		}
	}
	return r
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Verify interface compliance.
var _ engine.Adapter = (*Adapter)(nil)
