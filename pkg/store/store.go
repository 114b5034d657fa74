// Package store defines the persisted records of the gateway and the
// interfaces of the stores that keep them.
package store

import (
	"context"
	"errors"
	"time"
)

// TimeLayout formats the time strings kept in records.
const TimeLayout = "2006-01-02 15:04:05"

var (
	// ErrDuplicate is returned when a record's primary key already exists.
	ErrDuplicate = errors.New("duplicate record")

	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("record not found")
)

// QueryKey identifies an executed query. It is globally unique.
type QueryKey struct {
	Datasource string `json:"datasource"`
	Engine     string `json:"engine"`
	QueryID    string `json:"queryId"`
}

// QueryRecord is the audit row of one executed query. It is written once.
type QueryRecord struct {
	QueryKey
	FetchResultTime string `json:"fetchResultTime"`
	QueryText       string `json:"query"`
	User            string `json:"user,omitempty"`
	Status          string `json:"status"`
	ElapsedMillis   int64  `json:"elapsedTimeMillis"`
	ResultFileSize  int64  `json:"resultFileSize"`
	LineCount       int64  `json:"linenumber"`
}

// QueryFilter selects query records. Zero fields match everything.
type QueryFilter struct {
	Datasource string
	Engine     string
	User       string
	Limit      int
}

// PublishRecord is a shareable link to an executed query.
type PublishRecord struct {
	PublishID string `json:"publishId"`
	QueryKey
	User string `json:"user,omitempty"`
}

// Bookmark is a saved query text.
type Bookmark struct {
	ID         int64  `json:"bookmarkId"`
	Datasource string `json:"datasource"`
	Engine     string `json:"engine"`
	Query      string `json:"query"`
	Title      string `json:"title"`
	User       string `json:"user,omitempty"`
}

// BookmarkFilter selects bookmarks. Zero fields match everything.
type BookmarkFilter struct {
	Datasource string
	Engine     string
	User       string
}

// Comment is the single comment thread of a query.
type Comment struct {
	QueryKey
	Content    string `json:"content"`
	UpdateTime string `json:"updateTime"`
	User       string `json:"user,omitempty"`
	LikeCount  int    `json:"likeCount"`
}

// CommentFilter selects comments. Zero fields match everything.
type CommentFilter struct {
	Datasource string
	Engine     string
	QueryID    string
}

// Label is the single label of a query.
type Label struct {
	QueryKey
	LabelName string `json:"labelName"`
}

// QueryStore keeps query records.
type QueryStore interface {
	// InsertQuery writes a record; an existing key yields ErrDuplicate.
	InsertQuery(ctx context.Context, rec QueryRecord) error
	GetQuery(ctx context.Context, key QueryKey) (*QueryRecord, error)
	ListQueries(ctx context.Context, filter QueryFilter) ([]QueryRecord, error)
}

// PublishStore keeps publish links.
type PublishStore interface {
	// Publish returns the existing link of the query, or creates one.
	Publish(ctx context.Context, key QueryKey, user string) (*PublishRecord, error)
	GetPublish(ctx context.Context, publishID string) (*PublishRecord, error)
}

// BookmarkStore keeps bookmarks.
type BookmarkStore interface {
	CreateBookmark(ctx context.Context, b Bookmark) (*Bookmark, error)
	ListBookmarks(ctx context.Context, filter BookmarkFilter) ([]Bookmark, error)
	// DeleteBookmark removes the bookmark if user owns it.
	DeleteBookmark(ctx context.Context, id int64, user string) error
}

// CommentStore keeps comments, at most one per query.
type CommentStore interface {
	PutComment(ctx context.Context, c Comment) error
	ListComments(ctx context.Context, filter CommentFilter) ([]Comment, error)
	// LikeComment increments the like count and returns the new value.
	LikeComment(ctx context.Context, key QueryKey) (int, error)
	DeleteComment(ctx context.Context, key QueryKey, user string) error
}

// LabelStore keeps labels, at most one per query.
type LabelStore interface {
	PutLabel(ctx context.Context, l Label) error
	GetLabel(ctx context.Context, key QueryKey) (*Label, error)
	DeleteLabel(ctx context.Context, key QueryKey) error
}

// Store is every record store backed by one database.
type Store interface {
	QueryStore
	PublishStore
	BookmarkStore
	CommentStore
	LabelStore
	Ping(ctx context.Context) error
}

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}
