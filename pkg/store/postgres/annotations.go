package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/txn2/query-gateway/pkg/store"
)

// CreateBookmark saves a bookmark and returns it with its assigned id.
func (s *Store) CreateBookmark(ctx context.Context, b store.Bookmark) (*store.Bookmark, error) {
	query, args, err := psq.Insert("bookmark").
		Columns("datasource", "engine", "query", "title", userColumn).
		Values(b.Datasource, b.Engine, b.Query, b.Title, nullable(b.User)).
		Suffix("RETURNING bookmark_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building bookmark insert: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&b.ID); err != nil {
		return nil, fmt.Errorf("inserting bookmark: %w", mapError(err))
	}
	return &b, nil
}

// ListBookmarks returns bookmarks matching filter, newest first.
func (s *Store) ListBookmarks(ctx context.Context, filter store.BookmarkFilter) ([]store.Bookmark, error) {
	qb := psq.Select("bookmark_id", "datasource", "engine", "query", "title", userColumn).
		From("bookmark")
	if filter.Datasource != "" {
		qb = qb.Where(sq.Eq{"datasource": filter.Datasource})
	}
	if filter.Engine != "" {
		qb = qb.Where(sq.Eq{"engine": filter.Engine})
	}
	if filter.User != "" {
		qb = qb.Where(sq.Eq{userColumn: filter.User})
	}
	query, args, err := qb.OrderBy("bookmark_id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building bookmark list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing bookmarks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	bookmarks := make([]store.Bookmark, 0)
	for rows.Next() {
		var (
			b    store.Bookmark
			user sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.Datasource, &b.Engine, &b.Query, &b.Title, &user); err != nil {
			return nil, fmt.Errorf("scanning bookmark: %w", err)
		}
		b.User = user.String
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bookmarks: %w", err)
	}
	return bookmarks, nil
}

// DeleteBookmark removes a bookmark owned by user.
func (s *Store) DeleteBookmark(ctx context.Context, id int64, user string) error {
	query, args, err := psq.Delete("bookmark").
		Where(sq.Eq{"bookmark_id": id, userColumn: nullable(user)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building bookmark delete: %w", err)
	}
	return s.execOne(ctx, "deleting bookmark", query, args)
}

// PutComment creates or replaces the comment of a query, keeping its likes.
func (s *Store) PutComment(ctx context.Context, c store.Comment) error {
	query, args, err := psq.Insert("comment").
		Columns("datasource", "engine", "query_id", "content", "update_time_string", userColumn, "like_count").
		Values(c.Datasource, c.Engine, c.QueryID, c.Content, c.UpdateTime, nullable(c.User), 0).
		Suffix(`ON CONFLICT (datasource, engine, query_id) DO UPDATE SET ` +
			`content = EXCLUDED.content, update_time_string = EXCLUDED.update_time_string, "user" = EXCLUDED."user"`).
		ToSql()
	if err != nil {
		return fmt.Errorf("building comment upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upserting comment: %w", err)
	}
	return nil
}

// ListComments returns comments matching filter, most recently updated first.
func (s *Store) ListComments(ctx context.Context, filter store.CommentFilter) ([]store.Comment, error) {
	qb := psq.Select("datasource", "engine", "query_id", "content", "update_time_string", userColumn, "like_count").
		From("comment")
	if filter.Datasource != "" {
		qb = qb.Where(sq.Eq{"datasource": filter.Datasource})
	}
	if filter.Engine != "" {
		qb = qb.Where(sq.Eq{"engine": filter.Engine})
	}
	if filter.QueryID != "" {
		qb = qb.Where(sq.Eq{"query_id": filter.QueryID})
	}
	query, args, err := qb.OrderBy("update_time_string DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building comment list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	comments := make([]store.Comment, 0)
	for rows.Next() {
		var (
			c    store.Comment
			user sql.NullString
		)
		if err := rows.Scan(&c.Datasource, &c.Engine, &c.QueryID, &c.Content, &c.UpdateTime, &user, &c.LikeCount); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		c.User = user.String
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comments: %w", err)
	}
	return comments, nil
}

// LikeComment increments the like count of a query's comment.
func (s *Store) LikeComment(ctx context.Context, key store.QueryKey) (int, error) {
	query, args, err := psq.Update("comment").
		Set("like_count", sq.Expr("like_count + 1")).
		Where(keyEq(key)).
		Suffix("RETURNING like_count").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building comment like: %w", err)
	}

	var likes int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&likes)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("liking comment: %w", err)
	}
	return likes, nil
}

// DeleteComment removes a query's comment written by user.
func (s *Store) DeleteComment(ctx context.Context, key store.QueryKey, user string) error {
	where := keyEq(key)
	where[userColumn] = nullable(user)
	query, args, err := psq.Delete("comment").Where(where).ToSql()
	if err != nil {
		return fmt.Errorf("building comment delete: %w", err)
	}
	return s.execOne(ctx, "deleting comment", query, args)
}

// PutLabel creates or replaces the label of a query.
func (s *Store) PutLabel(ctx context.Context, l store.Label) error {
	query, args, err := psq.Insert("label").
		Columns("datasource", "engine", "query_id", "label_name").
		Values(l.Datasource, l.Engine, l.QueryID, l.LabelName).
		Suffix("ON CONFLICT (datasource, engine, query_id) DO UPDATE SET label_name = EXCLUDED.label_name").
		ToSql()
	if err != nil {
		return fmt.Errorf("building label upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upserting label: %w", err)
	}
	return nil
}

// GetLabel returns the label of a query.
func (s *Store) GetLabel(ctx context.Context, key store.QueryKey) (*store.Label, error) {
	query, args, err := psq.Select("label_name").From("label").Where(keyEq(key)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building label select: %w", err)
	}

	l := store.Label{QueryKey: key}
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&l.LabelName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting label: %w", err)
	}
	return &l, nil
}

// DeleteLabel removes the label of a query.
func (s *Store) DeleteLabel(ctx context.Context, key store.QueryKey) error {
	query, args, err := psq.Delete("label").Where(keyEq(key)).ToSql()
	if err != nil {
		return fmt.Errorf("building label delete: %w", err)
	}
	return s.execOne(ctx, "deleting label", query, args)
}

// execOne runs a statement that must affect exactly one row.
func (s *Store) execOne(ctx context.Context, op, query string, args []any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
