package hive

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txn2/query-gateway/pkg/engine"
)

const (
	testDatasource = "batch"
	testUser       = "alice"
	testQueryID    = "20240301_120000_abc123"
	testJobName    = "gateway-hive-alice-20240301_120000_abc123"
)

func newTestAdapter(t *testing.T, cfg Config) (*Adapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	a := NewWithDB(cfg, map[string]*sql.DB{testDatasource: db})
	a.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	a.newID = func() string { return "abc123" }
	return a, mock
}

func expectJobName(mock sqlmock.Sqlmock, name string) {
	mock.ExpectExec(regexp.QuoteMeta("set mapreduce.job.name=" + name)).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestRunQuerySelect(t *testing.T) {
	a, mock := newTestAdapter(t, Config{})

	expectJobName(mock, testJobName)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow("1", "ann").
			AddRow("2", nil))

	id, res, err := a.RunQuery(context.Background(), engine.Query{
		Datasource: testDatasource,
		Text:       "SELECT id, name FROM users;",
		User:       testUser,
	})
	require.NoError(t, err)
	assert.Equal(t, testQueryID, id)
	assert.Equal(t, []string{"id", "name"}, res.Columns)
	assert.Equal(t, [][]*string{
		{engine.String("1"), engine.String("ann")},
		{engine.String("2"), nil},
	}, res.Rows)
	assert.Empty(t, res.Warning)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunQueryJobNameWithoutUser(t *testing.T) {
	a, mock := newTestAdapter(t, Config{JobPrefix: "etl"})

	expectJobName(mock, "etl-"+testQueryID)
	mock.ExpectQuery("SHOW TABLES").
		WillReturnRows(sqlmock.NewRows([]string{"tab_name"}))

	_, res, err := a.RunQuery(context.Background(), engine.Query{Datasource: testDatasource, Text: "SHOW TABLES"})
	require.NoError(t, err)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunQueryQueue(t *testing.T) {
	a, mock := newTestAdapter(t, Config{Queue: "adhoc"})

	expectJobName(mock, testJobName)
	mock.ExpectExec(regexp.QuoteMeta("set mapreduce.job.queuename=adhoc")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("DESCRIBE users").
		WillReturnRows(sqlmock.NewRows([]string{"col_name", "data_type", "comment"}).
			AddRow("id", "int", ""))

	_, res, err := a.RunQuery(context.Background(), engine.Query{Datasource: testDatasource, Text: "DESCRIBE users", User: testUser})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunQueryUpdate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"create table", "CREATE TABLE t (a INT)", "CREATE TABLE"},
		{"drop table", "drop table t", "DROP TABLE"},
		{"insert", "INSERT INTO t SELECT * FROM s", "INSERT"},
		{"insert overwrite", "INSERT OVERWRITE TABLE t SELECT * FROM s", "INSERT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, mock := newTestAdapter(t, Config{})
			expectJobName(mock, testJobName)
			mock.ExpectExec(regexp.QuoteMeta(tt.text)).
				WillReturnResult(sqlmock.NewResult(0, 0))

			_, res, err := a.RunQuery(context.Background(), engine.Query{Datasource: testDatasource, Text: tt.text, User: testUser})
			require.NoError(t, err)
			assert.True(t, res.IsUpdate())
			assert.Equal(t, tt.want, res.UpdateType)
			assert.Nil(t, res.Columns)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRunQueryWithClause(t *testing.T) {
	a, mock := newTestAdapter(t, Config{})
	expectJobName(mock, testJobName)
	mock.ExpectQuery("WITH x AS").
		WillReturnRows(sqlmock.NewRows([]string{"a"}).AddRow("1"))

	_, res, err := a.RunQuery(context.Background(), engine.Query{
		Datasource: testDatasource,
		Text:       "WITH x AS (SELECT 1 AS a) SELECT a FROM x",
		User:       testUser,
	})
	require.NoError(t, err)
	assert.False(t, res.IsUpdate())
	assert.Equal(t, []string{"a"}, res.Columns)
}

func TestRunQueryRowCap(t *testing.T) {
	a, mock := newTestAdapter(t, Config{MaxResultRows: 2})
	expectJobName(mock, testJobName)
	mock.ExpectQuery("SELECT n FROM t").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow("1").AddRow("2").AddRow("3"))

	_, res, err := a.RunQuery(context.Background(), engine.Query{Datasource: testDatasource, Text: "SELECT n FROM t", User: testUser})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
	assert.Equal(t, engine.TruncatedWarning(2), res.Warning)
}

func TestRunQueryFailure(t *testing.T) {
	t.Run("compile error with location", func(t *testing.T) {
		a, mock := newTestAdapter(t, Config{})
		expectJobName(mock, testJobName)
		mock.ExpectQuery("SELECT").
			WillReturnError(errors.New("Error while compiling statement: FAILED: SemanticException [Error 10001]: line 3:14 Table not found 'nope'"))

		id, res, err := a.RunQuery(context.Background(), engine.Query{Datasource: testDatasource, Text: "SELECT *\nFROM\n  x JOIN nope", User: testUser})
		require.Error(t, err)
		assert.Nil(t, res)
		assert.Equal(t, testQueryID, id)

		var qe *engine.QueryError
		require.True(t, errors.As(err, &qe))
		assert.Equal(t, 3, qe.Line)
		assert.Equal(t, 14, qe.Column)

		f := engine.Translate(err)
		require.NotNil(t, f.SourceLine)
		assert.Equal(t, 3, *f.SourceLine)
		assert.Contains(t, f.Message, "Table not found")
	})

	t.Run("runtime error without location", func(t *testing.T) {
		a, mock := newTestAdapter(t, Config{})
		expectJobName(mock, testJobName)
		mock.ExpectExec("INSERT").
			WillReturnError(errors.New("Execution Error, return code 2 from MapRedTask"))

		id, _, err := a.RunQuery(context.Background(), engine.Query{Datasource: testDatasource, Text: "INSERT INTO t VALUES (1)", User: testUser})
		require.Error(t, err)
		assert.Equal(t, testQueryID, id)
		assert.Nil(t, engine.Translate(err).SourceLine)
	})

	t.Run("job name rejected", func(t *testing.T) {
		a, mock := newTestAdapter(t, Config{})
		mock.ExpectExec("set mapreduce.job.name").
			WillReturnError(errors.New("permission denied"))

		id, _, err := a.RunQuery(context.Background(), engine.Query{Datasource: testDatasource, Text: "SELECT 1", User: testUser})
		require.Error(t, err)
		assert.Equal(t, testQueryID, id)
		assert.Contains(t, err.Error(), "setting job name")
	})
}

func TestRunQueryUnknownDatasource(t *testing.T) {
	a, _ := newTestAdapter(t, Config{})
	id, _, err := a.RunQuery(context.Background(), engine.Query{Datasource: "nope", Text: "SELECT 1"})
	assert.ErrorIs(t, err, engine.ErrUnknownDatasource)
	assert.Empty(t, id)
}

func TestPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck // sqlmock db close error is inconsequential in tests.

	a := NewWithDB(Config{}, map[string]*sql.DB{testDatasource: db})
	mock.ExpectPing()
	assert.NoError(t, a.Ping(context.Background(), testDatasource))
	assert.ErrorIs(t, a.Ping(context.Background(), "nope"), engine.ErrUnknownDatasource)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNew(t *testing.T) {
	t.Run("missing dsn", func(t *testing.T) {
		_, err := New(Config{Datasources: map[string]Datasource{"x": {}}})
		assert.ErrorContains(t, err, `"x"`)
	})

	t.Run("defaults", func(t *testing.T) {
		a, err := New(Config{})
		require.NoError(t, err)
		assert.Equal(t, DefaultDriver, a.cfg.Driver)
		assert.Equal(t, DefaultJobPrefix, a.cfg.JobPrefix)
		assert.Equal(t, engine.KindHive, a.Kind())
		assert.NoError(t, a.Close())
	})
}

func TestReturnsRows(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"SELECT 1", true},
		{"select * from t", true},
		{"show databases", true},
		{"describe t", true},
		{"explain select 1", true},
		{"with a as (select 1) select * from a", true},
		{"create table t (a int)", false},
		{"insert into t values (1)", false},
		{"drop table t", false},
		{"use db", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, returnsRows(tt.text))
		})
	}
}
