// Package hive provides the batch engine adapter. Statements run through a
// database/sql HiveServer2 driver on a single connection, after the cluster job
// name has been set so the job can later be located on the resource manager.
package hive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xwb1989/sqlparser"

	"github.com/txn2/query-gateway/pkg/engine"
)

const (
	// DefaultDriver is the database/sql driver name registered by sqlflow.org/gohive.
	DefaultDriver = "hive"

	// DefaultJobPrefix prefixes every cluster job name.
	DefaultJobPrefix = engine.DefaultJobPrefix

	defaultMaxResultRows = 500000
)

// errorLocation matches the "line L:C" position hive puts in compile errors.
var errorLocation = regexp.MustCompile(`line (\d+):(\d+)`)

// Datasource holds the connection settings of one datasource.
type Datasource struct {
	DSN string
}

// Config holds Hive adapter configuration.
type Config struct {
	Driver        string
	JobPrefix     string
	MaxResultRows int

	// Queue, when set, is applied as mapreduce.job.queuename.
	Queue       string
	Datasources map[string]Datasource
}

// Adapter implements engine.Adapter for the batch engine.
type Adapter struct {
	cfg   Config
	dbs   map[string]*sql.DB
	now   func() time.Time
	newID func() string
}

// New opens a connection pool per datasource.
func New(cfg Config) (*Adapter, error) {
	cfg = applyDefaults(cfg)
	dbs := make(map[string]*sql.DB, len(cfg.Datasources))
	for name, ds := range cfg.Datasources {
		if ds.DSN == "" {
			closeAll(dbs)
			return nil, fmt.Errorf("hive dsn is required for datasource %q", name)
		}
		db, err := sql.Open(cfg.Driver, ds.DSN)
		if err != nil {
			closeAll(dbs)
			return nil, fmt.Errorf("opening hive datasource %q: %w", name, err)
		}
		dbs[name] = db
	}
	return NewWithDB(cfg, dbs), nil
}

// NewWithDB creates an adapter over already opened pools keyed by datasource.
func NewWithDB(cfg Config, dbs map[string]*sql.DB) *Adapter {
	return &Adapter{
		cfg:   applyDefaults(cfg),
		dbs:   dbs,
		now:   time.Now,
		newID: func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

func applyDefaults(cfg Config) Config {
	if cfg.Driver == "" {
		cfg.Driver = DefaultDriver
	}
	if cfg.JobPrefix == "" {
		cfg.JobPrefix = DefaultJobPrefix
	}
	if cfg.MaxResultRows <= 0 {
		cfg.MaxResultRows = defaultMaxResultRows
	}
	return cfg
}

func closeAll(dbs map[string]*sql.DB) {
	for _, db := range dbs {
		_ = db.Close()
	}
}

// Kind returns engine.KindHive.
func (*Adapter) Kind() engine.Kind {
	return engine.KindHive
}

// Ping checks the pool of one datasource.
func (a *Adapter) Ping(ctx context.Context, datasource string) error {
	db, ok := a.dbs[datasource]
	if !ok {
		return fmt.Errorf("%w: %q", engine.ErrUnknownDatasource, datasource)
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging hive datasource %q: %w", datasource, err)
	}
	return nil
}

// Close closes every datasource pool.
func (a *Adapter) Close() error {
	var errs []error
	for name, db := range a.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing hive datasource %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// RunQuery assigns a query id, names the cluster job after it and runs the
// statement. The query id is returned on failure too.
func (a *Adapter) RunQuery(ctx context.Context, q engine.Query) (string, *engine.Result, error) {
	db, ok := a.dbs[q.Datasource]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", engine.ErrUnknownDatasource, q.Datasource)
	}

	queryID := a.now().Format("20060102_150405") + "_" + a.newID()

	conn, err := db.Conn(ctx)
	if err != nil {
		return queryID, nil, &engine.QueryError{QueryID: queryID, Err: fmt.Errorf("acquiring hive connection: %w", err)}
	}
	defer func() { _ = conn.Close() }()

	if err := a.configureSession(ctx, conn, q.User, queryID); err != nil {
		return queryID, nil, toQueryError(queryID, err)
	}

	text := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(q.Text), ";"))
	if returnsRows(text) {
		res, err := a.query(ctx, conn, text)
		if err != nil {
			return queryID, nil, toQueryError(queryID, err)
		}
		return queryID, res, nil
	}

	if _, err := conn.ExecContext(ctx, text); err != nil {
		return queryID, nil, toQueryError(queryID, err)
	}
	return queryID, &engine.Result{UpdateType: updateType(text)}, nil
}

func (a *Adapter) configureSession(ctx context.Context, conn *sql.Conn, user, queryID string) error {
	name := engine.JobName(a.cfg.JobPrefix, user, queryID)
	if _, err := conn.ExecContext(ctx, "set mapreduce.job.name="+name); err != nil {
		return fmt.Errorf("setting job name: %w", err)
	}
	if a.cfg.Queue != "" {
		if _, err := conn.ExecContext(ctx, "set mapreduce.job.queuename="+a.cfg.Queue); err != nil {
			return fmt.Errorf("setting job queue: %w", err)
		}
	}
	return nil
}

func (a *Adapter) query(ctx context.Context, conn *sql.Conn, text string) (*engine.Result, error) {
	rows, err := conn.QueryContext(ctx, text)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	res := &engine.Result{Columns: columns, Rows: [][]*string{}}
	for rows.Next() {
		if len(res.Rows) >= a.cfg.MaxResultRows {
			res.Warning = engine.TruncatedWarning(a.cfg.MaxResultRows)
			break
		}
		vals := make([]sql.NullString, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		cells := make([]*string, len(columns))
		for i, v := range vals {
			if v.Valid {
				cells[i] = engine.String(v.String)
			}
		}
		res.Rows = append(res.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// returnsRows reports whether the statement produces a tabular result.
func returnsRows(text string) bool {
	switch sqlparser.Preview(text) {
	case sqlparser.StmtSelect, sqlparser.StmtShow, sqlparser.StmtOther, sqlparser.StmtStream:
		return true
	case sqlparser.StmtUnknown:
		// with ... select, values, from ... select
		first := firstWord(text)
		return first == "WITH" || first == "VALUES" || first == "FROM"
	default:
		return false
	}
}

// updateType names a statement by its leading keywords, e.g. "CREATE TABLE".
func updateType(text string) string {
	fields := strings.Fields(strings.ToUpper(text))
	switch {
	case len(fields) == 0:
		return "UNKNOWN"
	case len(fields) == 1:
		return fields[0]
	}
	switch fields[0] {
	case "CREATE", "DROP", "ALTER", "TRUNCATE", "MSCK":
		return fields[0] + " " + fields[1]
	default:
		return fields[0]
	}
}

func firstWord(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

func toQueryError(queryID string, err error) *engine.QueryError {
	qe := &engine.QueryError{QueryID: queryID, Message: err.Error(), Err: err}
	if m := errorLocation.FindStringSubmatch(qe.Message); m != nil {
		qe.Line, _ = strconv.Atoi(m[1])
		qe.Column, _ = strconv.Atoi(m[2])
	}
	return qe
}

// Verify interface compliance.
var _ engine.Adapter = (*Adapter)(nil)
