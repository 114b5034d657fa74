package presto

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txn2/query-gateway/pkg/engine"
)

const (
	testDatasource = "prod"
	testCatalog    = "hive"
	testSchema     = "default"
	testUser       = "alice"
	testQueryID    = "20240301_000000_00001_abcde"
)

// coordinator is a scripted statement endpoint. Each page is served in order;
// the page at index i links to /v1/page/i+1 unless it is the last one.
type coordinator struct {
	t       *testing.T
	srv     *httptest.Server
	pages   []statementResponse
	mu      sync.Mutex
	headers http.Header
	body    string
	deletes atomic.Int32
	gets    atomic.Int32
	// block makes page GETs hang until the request context ends.
	block bool
}

func newCoordinator(t *testing.T, pages ...statementResponse) *coordinator {
	t.Helper()
	c := &coordinator{t: t, pages: pages}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/statement", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.headers = r.Header.Clone()
		c.body = string(b)
		c.mu.Unlock()
		c.serve(w, 0)
	})
	mux.HandleFunc("GET /v1/page/{n}", func(w http.ResponseWriter, r *http.Request) {
		c.gets.Add(1)
		if c.block {
			<-r.Context().Done()
			return
		}
		n, err := strconv.Atoi(r.PathValue("n"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		c.serve(w, n)
	})
	mux.HandleFunc("DELETE /v1/page/{n}", func(w http.ResponseWriter, _ *http.Request) {
		c.deletes.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	c.srv = httptest.NewServer(mux)
	t.Cleanup(c.srv.Close)
	return c
}

func (c *coordinator) serve(w http.ResponseWriter, n int) {
	if n >= len(c.pages) {
		http.NotFound(w, nil)
		return
	}
	page := c.pages[n]
	page.ID = testQueryID
	if n < len(c.pages)-1 {
		page.NextURI = c.srv.URL + "/v1/page/" + strconv.Itoa(n+1)
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(c.t, json.NewEncoder(w).Encode(page))
}

func (c *coordinator) received() (http.Header, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.headers, c.body
}

func (c *coordinator) adapter(t *testing.T, mutate ...func(*Config)) *Adapter {
	t.Helper()
	cfg := Config{
		PollInterval: time.Millisecond,
		Datasources: map[string]Datasource{
			testDatasource: {Server: c.srv.URL, Catalog: testCatalog, Schema: testSchema},
		},
	}
	for _, m := range mutate {
		m(&cfg)
	}
	a, err := NewWithClient(cfg, c.srv.Client())
	require.NoError(t, err)
	return a
}

func row(vals ...any) []any { return vals }

func TestRunQuerySelectOne(t *testing.T) {
	c := newCoordinator(t,
		statementResponse{Stats: statementStats{State: "QUEUED"}},
		statementResponse{Stats: statementStats{State: "RUNNING"}, Columns: []column{{Name: "_col0", Type: "integer"}}},
		statementResponse{Stats: statementStats{State: "RUNNING"}, Columns: []column{{Name: "_col0", Type: "integer"}}, Data: [][]any{row(1)}},
		statementResponse{Stats: statementStats{State: stateFinished}},
	)
	a := c.adapter(t)

	id, res, err := a.RunQuery(context.Background(), engine.Query{
		Datasource: testDatasource, Text: "SELECT 1", User: testUser,
	})
	require.NoError(t, err)
	assert.Equal(t, testQueryID, id)
	assert.Equal(t, []string{"_col0"}, res.Columns)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, []*string{engine.String("1")}, res.Rows[0])
	assert.Empty(t, res.Warning)
	assert.False(t, res.IsUpdate())

	headers, body := c.received()
	assert.Equal(t, "SELECT 1", body)
	assert.Equal(t, testUser, headers.Get("X-Presto-User"))
	assert.Equal(t, testCatalog, headers.Get("X-Presto-Catalog"))
	assert.Equal(t, testSchema, headers.Get("X-Presto-Schema"))
	assert.Equal(t, defaultSource, headers.Get("X-Presto-Source"))
	assert.Zero(t, c.deletes.Load())
}

func TestRunQueryNullsAndEmptyResult(t *testing.T) {
	t.Run("null cells", func(t *testing.T) {
		c := newCoordinator(t, statementResponse{
			Stats:   statementStats{State: stateFinished},
			Columns: []column{{Name: "a"}, {Name: "b"}},
			Data:    [][]any{row("x", nil)},
		})
		_, res, err := c.adapter(t).RunQuery(context.Background(), engine.Query{Datasource: testDatasource, Text: "SELECT"})
		require.NoError(t, err)
		assert.Equal(t, [][]*string{{engine.String("x"), nil}}, res.Rows)
	})

	t.Run("no rows", func(t *testing.T) {
		c := newCoordinator(t, statementResponse{
			Stats:   statementStats{State: stateFinished},
			Columns: []column{{Name: "a"}},
		})
		_, res, err := c.adapter(t).RunQuery(context.Background(), engine.Query{Datasource: testDatasource, Text: "SELECT"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, res.Columns)
		assert.NotNil(t, res.Rows)
		assert.Empty(t, res.Rows)
	})
}

func TestRunQueryDefaultUser(t *testing.T) {
	c := newCoordinator(t, statementResponse{Stats: statementStats{State: stateFinished}})
	_, _, err := c.adapter(t).RunQuery(context.Background(), engine.Query{Datasource: testDatasource, Text: "SELECT 1"})
	require.NoError(t, err)
	headers, _ := c.received()
	assert.Equal(t, defaultUser, headers.Get("X-Presto-User"))
}

func TestRunQueryTrinoHeaders(t *testing.T) {
	c := newCoordinator(t, statementResponse{Stats: statementStats{State: stateFinished}})
	a := c.adapter(t, func(cfg *Config) { cfg.HeaderPrefix = "X-Trino-" })
	_, _, err := a.RunQuery(context.Background(), engine.Query{Datasource: testDatasource, Text: "SELECT 1", User: testUser})
	require.NoError(t, err)
	headers, _ := c.received()
	assert.Equal(t, testUser, headers.Get("X-Trino-User"))
	assert.Empty(t, headers.Get("X-Presto-User"))
}

func TestRunQueryUpdate(t *testing.T) {
	c := newCoordinator(t,
		statementResponse{Stats: statementStats{State: "RUNNING"}},
		statementResponse{
			Stats:      statementStats{State: stateFinished},
			UpdateType: "CREATE TABLE",
			Columns:    []column{{Name: "result"}},
			Data:       [][]any{row(true)},
		},
	)
	_, res, err := c.adapter(t).RunQuery(context.Background(), engine.Query{Datasource: testDatasource, Text: "CREATE TABLE t (a int)"})
	require.NoError(t, err)
	assert.True(t, res.IsUpdate())
	assert.Equal(t, "CREATE TABLE", res.UpdateType)
	assert.Nil(t, res.Columns)
	assert.Nil(t, res.Rows)
}

func TestRunQueryWarnings(t *testing.T) {
	w := warning{Message: "partition pruning skipped"}
	c := newCoordinator(t,
		statementResponse{Stats: statementStats{State: "RUNNING"}, Warnings: []warning{w}},
		statementResponse{Stats: statementStats{State: stateFinished}, Columns: []column{{Name: "a"}}, Warnings: []warning{w}},
	)
	_, res, err := c.adapter(t).RunQuery(context.Background(), engine.Query{Datasource: testDatasource, Text: "SELECT a FROM t"})
	require.NoError(t, err)
	assert.Equal(t, "partition pruning skipped", res.Warning)
}

func TestRunQueryFailure(t *testing.T) {
	t.Run("with location", func(t *testing.T) {
		c := newCoordinator(t,
			statementResponse{Stats: statementStats{State: "QUEUED"}},
			statementResponse{
				Stats: statementStats{State: stateFailed},
				Error: &queryError{
					Message:       "line 2:8: mismatched input 'FORM'",
					ErrorName:     "SYNTAX_ERROR",
					ErrorLocation: &errorLocation{LineNumber: 2, ColumnNumber: 8},
				},
			},
		)
		id, res, err := c.adapter(t).RunQuery(context.Background(), engine.Query{Datasource: testDatasource, Text: "SELECT *\nFORM t"})
		require.Error(t, err)
		assert.Nil(t, res)
		assert.Equal(t, testQueryID, id)

		var qe *engine.QueryError
		require.True(t, errors.As(err, &qe))
		assert.Equal(t, testQueryID, qe.QueryID)
		assert.Equal(t, "SYNTAX_ERROR", qe.ErrorName)
		assert.Equal(t, 2, qe.Line)
		assert.Equal(t, 8, qe.Column)

		f := engine.Translate(err)
		require.NotNil(t, f.SourceLine)
		assert.Equal(t, 2, *f.SourceLine)
	})

	t.Run("without location", func(t *testing.T) {
		c := newCoordinator(t, statementResponse{
			Stats: statementStats{State: stateFailed},
			Error: &queryError{Message: "Table hive.default.nope does not exist", ErrorName: "TABLE_NOT_FOUND"},
		})
		_, _, err := c.adapter(t).RunQuery(context.Background(), engine.Query{Datasource: testDatasource, Text: "SELECT * FROM nope"})
		f := engine.Translate(err)
		assert.Equal(t, "Table hive.default.nope does not exist", f.Message)
		assert.Nil(t, f.SourceLine)
	})

	t.Run("canceled without error", func(t *testing.T) {
		c := newCoordinator(t, statementResponse{Stats: statementStats{State: stateCanceled}})
		id, _, err := c.adapter(t).RunQuery(context.Background(), engine.Query{Datasource: testDatasource, Text: "SELECT 1"})
		require.Error(t, err)
		assert.Equal(t, testQueryID, id)
		assert.Equal(t, "query canceled", engine.Translate(err).Message)
	})
}

func TestRunQueryRowCap(t *testing.T) {
	c := newCoordinator(t,
		statementResponse{Stats: statementStats{State: "RUNNING"}, Columns: []column{{Name: "n"}}, Data: [][]any{row(1), row(2)}},
		statementResponse{Stats: statementStats{State: "RUNNING"}, Data: [][]any{row(3), row(4)}},
		statementResponse{Stats: statementStats{State: "RUNNING"}, Data: [][]any{row(5)}},
		statementResponse{Stats: statementStats{State: stateFinished}},
	)
	a := c.adapter(t, func(cfg *Config) { cfg.MaxResultRows = 3 })

	id, res, err := a.RunQuery(context.Background(), engine.Query{Datasource: testDatasource, Text: "SELECT n FROM t"})
	require.NoError(t, err)
	assert.Equal(t, testQueryID, id)
	assert.Len(t, res.Rows, 3)
	assert.Equal(t, engine.TruncatedWarning(3), res.Warning)
	assert.Equal(t, int32(1), c.deletes.Load())
}

func TestRunQueryRowCapOnPageBoundary(t *testing.T) {
	t.Run("more rows follow", func(t *testing.T) {
		c := newCoordinator(t,
			statementResponse{Stats: statementStats{State: "RUNNING"}, Columns: []column{{Name: "n"}}, Data: [][]any{row(1), row(2), row(3)}},
			statementResponse{Stats: statementStats{State: "RUNNING"}, Data: [][]any{row(4), row(5)}},
			statementResponse{Stats: statementStats{State: stateFinished}},
		)
		a := c.adapter(t, func(cfg *Config) { cfg.MaxResultRows = 3 })

		_, res, err := a.RunQuery(context.Background(), engine.Query{Datasource: testDatasource, Text: "SELECT n FROM t"})
		require.NoError(t, err)
		assert.Len(t, res.Rows, 3)
		assert.Equal(t, engine.TruncatedWarning(3), res.Warning)
		assert.Equal(t, int32(1), c.deletes.Load())
	})

	t.Run("result ends at the cap", func(t *testing.T) {
		c := newCoordinator(t,
			statementResponse{Stats: statementStats{State: "RUNNING"}, Columns: []column{{Name: "n"}}, Data: [][]any{row(1), row(2), row(3)}},
			statementResponse{Stats: statementStats{State: "RUNNING"}},
			statementResponse{Stats: statementStats{State: stateFinished}},
		)
		a := c.adapter(t, func(cfg *Config) { cfg.MaxResultRows = 3 })

		_, res, err := a.RunQuery(context.Background(), engine.Query{Datasource: testDatasource, Text: "SELECT n FROM t"})
		require.NoError(t, err)
		assert.Len(t, res.Rows, 3)
		assert.Empty(t, res.Warning)
		assert.Zero(t, c.deletes.Load())
	})
}

func TestRunQueryContextCancelled(t *testing.T) {
	c := newCoordinator(t,
		statementResponse{Stats: statementStats{State: "QUEUED"}},
		statementResponse{Stats: statementStats{State: stateFinished}},
	)
	c.block = true
	a := c.adapter(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	id, res, err := a.RunQuery(ctx, engine.Query{Datasource: testDatasource, Text: "SELECT sleep(60)"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, res)
	assert.Equal(t, testQueryID, id)
	assert.Equal(t, int32(1), c.deletes.Load())
}

func TestRunQueryCancelledWhileWaiting(t *testing.T) {
	c := newCoordinator(t,
		statementResponse{Stats: statementStats{State: "QUEUED"}},
		statementResponse{Stats: statementStats{State: stateFinished}},
	)
	a := c.adapter(t)
	ctx, cancel := context.WithCancel(context.Background())
	a.sleep = func(context.Context, time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, _, err := a.RunQuery(ctx, engine.Query{Datasource: testDatasource, Text: "SELECT 1"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), c.deletes.Load())
	assert.Zero(t, c.gets.Load())
}

func TestRunQueryUnknownDatasource(t *testing.T) {
	c := newCoordinator(t)
	_, _, err := c.adapter(t).RunQuery(context.Background(), engine.Query{Datasource: "nope", Text: "SELECT 1"})
	assert.ErrorIs(t, err, engine.ErrUnknownDatasource)
}

func TestRunQueryTransportErrors(t *testing.T) {
	t.Run("non-200 on submit", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		a, err := NewWithClient(Config{Datasources: map[string]Datasource{testDatasource: {Server: srv.URL}}}, srv.Client())
		require.NoError(t, err)
		id, _, err := a.RunQuery(context.Background(), engine.Query{Datasource: testDatasource, Text: "SELECT 1"})
		require.Error(t, err)
		assert.Empty(t, id)
		assert.Contains(t, err.Error(), "503")
		assert.Contains(t, err.Error(), "overloaded")
	})

	t.Run("malformed page", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("{not json"))
		}))
		defer srv.Close()

		a, err := NewWithClient(Config{Datasources: map[string]Datasource{testDatasource: {Server: srv.URL}}}, srv.Client())
		require.NoError(t, err)
		_, _, err = a.RunQuery(context.Background(), engine.Query{Datasource: testDatasource, Text: "SELECT 1"})
		assert.ErrorContains(t, err, "decoding statement response")
	})
}

func TestNewWithClient(t *testing.T) {
	t.Run("nil client", func(t *testing.T) {
		_, err := NewWithClient(Config{}, nil)
		assert.Error(t, err)
	})

	t.Run("datasource without server", func(t *testing.T) {
		_, err := NewWithClient(Config{Datasources: map[string]Datasource{"x": {}}}, http.DefaultClient)
		assert.ErrorContains(t, err, `"x"`)
	})

	t.Run("defaults", func(t *testing.T) {
		a, err := New(Config{})
		require.NoError(t, err)
		assert.Equal(t, defaultHeaderPrefix, a.cfg.HeaderPrefix)
		assert.Equal(t, defaultPollInterval, a.cfg.PollInterval)
		assert.Equal(t, defaultMaxResultRows, a.cfg.MaxResultRows)
		assert.Equal(t, engine.KindPresto, a.Kind())
	})
}
