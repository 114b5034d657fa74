// Package postgres provides PostgreSQL storage for query records, publish
// links, bookmarks, comments and labels.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/txn2/query-gateway/pkg/store"
)

const (
	defaultListLimit = 100
	maxListLimit     = 10000

	uniqueViolation = "23505"
)

// psq is the PostgreSQL statement builder with dollar placeholders.
var psq = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// userColumn is quoted since user is reserved in PostgreSQL.
const userColumn = `"user"`

var queryColumns = []string{
	"datasource", "engine", "query_id", "fetch_result_time_string", "query_string",
	userColumn, "status", "elapsed_time_millis", "result_file_size", "linenumber",
}

// Store implements store.Store using PostgreSQL.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL record store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging record store: %w", err)
	}
	return nil
}

// InsertQuery writes one query record.
func (s *Store) InsertQuery(ctx context.Context, rec store.QueryRecord) error {
	query, args, err := psq.Insert("query").
		Columns(queryColumns...).
		Values(rec.Datasource, rec.Engine, rec.QueryID, rec.FetchResultTime, rec.QueryText,
			nullable(rec.User), rec.Status, rec.ElapsedMillis, rec.ResultFileSize, rec.LineCount).
		ToSql()
	if err != nil {
		return fmt.Errorf("building query insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting query record %s/%s/%s: %w",
			rec.Datasource, rec.Engine, rec.QueryID, mapError(err))
	}
	return nil
}

// GetQuery returns one query record.
func (s *Store) GetQuery(ctx context.Context, key store.QueryKey) (*store.QueryRecord, error) {
	query, args, err := psq.Select(queryColumns...).From("query").
		Where(keyEq(key)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query select: %w", err)
	}

	rec, err := scanQuery(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting query record: %w", err)
	}
	return rec, nil
}

// ListQueries returns the most recent query records matching filter.
func (s *Store) ListQueries(ctx context.Context, filter store.QueryFilter) ([]store.QueryRecord, error) {
	qb := psq.Select(queryColumns...).From("query")
	if filter.Datasource != "" {
		qb = qb.Where(sq.Eq{"datasource": filter.Datasource})
	}
	if filter.Engine != "" {
		qb = qb.Where(sq.Eq{"engine": filter.Engine})
	}
	if filter.User != "" {
		qb = qb.Where(sq.Eq{userColumn: filter.User})
	}
	qb = qb.OrderBy("fetch_result_time_string DESC", "query_id DESC").
		Limit(uint64(listLimit(filter.Limit))) // #nosec G115 -- clamped to [1, maxListLimit] by listLimit

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]store.QueryRecord, 0)
	for rows.Next() {
		rec, err := scanQuery(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning query record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query records: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuery(row scanner) (*store.QueryRecord, error) {
	var (
		rec  store.QueryRecord
		user sql.NullString
	)
	err := row.Scan(
		&rec.Datasource, &rec.Engine, &rec.QueryID, &rec.FetchResultTime, &rec.QueryText,
		&user, &rec.Status, &rec.ElapsedMillis, &rec.ResultFileSize, &rec.LineCount,
	)
	if err != nil {
		return nil, err
	}
	rec.User = user.String
	return &rec, nil
}

// Publish returns the query's existing publish link or creates one. A link
// created concurrently for the same query wins over this one.
func (s *Store) Publish(ctx context.Context, key store.QueryKey, user string) (*store.PublishRecord, error) {
	existing, err := s.publishFor(ctx, key)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	rec := &store.PublishRecord{
		PublishID: strings.ReplaceAll(uuid.NewString(), "-", ""),
		QueryKey:  key,
		User:      user,
	}
	query, args, err := psq.Insert("publish").
		Columns("publish_id", "datasource", "engine", "query_id", userColumn).
		Values(rec.PublishID, key.Datasource, key.Engine, key.QueryID, nullable(user)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building publish insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		err = mapError(err)
		if errors.Is(err, store.ErrDuplicate) {
			return s.publishFor(ctx, key)
		}
		return nil, fmt.Errorf("inserting publish link: %w", err)
	}
	return rec, nil
}

// publishFor looks up the publish link of a query.
func (s *Store) publishFor(ctx context.Context, key store.QueryKey) (*store.PublishRecord, error) {
	query, args, err := psq.Select("publish_id", userColumn).From("publish").
		Where(keyEq(key)).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building publish lookup: %w", err)
	}

	var (
		id    string
		owner sql.NullString
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&id, &owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up publish link: %w", err)
	}
	return &store.PublishRecord{PublishID: id, QueryKey: key, User: owner.String}, nil
}

// GetPublish resolves a publish id.
func (s *Store) GetPublish(ctx context.Context, publishID string) (*store.PublishRecord, error) {
	query, args, err := psq.Select("publish_id", "datasource", "engine", "query_id", userColumn).
		From("publish").
		Where(sq.Eq{"publish_id": publishID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building publish select: %w", err)
	}

	var (
		rec  store.PublishRecord
		user sql.NullString
	)
	err = s.db.QueryRowContext(ctx, query, args...).
		Scan(&rec.PublishID, &rec.Datasource, &rec.Engine, &rec.QueryID, &user)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting publish link: %w", err)
	}
	rec.User = user.String
	return &rec, nil
}

func keyEq(key store.QueryKey) sq.Eq {
	return sq.Eq{
		"datasource": key.Datasource,
		"engine":     key.Engine,
		"query_id":   key.QueryID,
	}
}

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// nullable stores empty strings as NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// mapError translates driver errors into store sentinels.
func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", store.ErrDuplicate, pqErr.Message)
	}
	return err
}

// Verify interface compliance.
var _ store.Store = (*Store)(nil)
