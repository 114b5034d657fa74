package api

import (
	"context"
	"time"

	"github.com/txn2/query-gateway/pkg/gateway"
	"github.com/txn2/query-gateway/pkg/store"
	"github.com/txn2/query-gateway/pkg/yarn"
)

// --- Mock QueryExecutor ---

type mockExecutor struct {
	lastReq     gateway.Request
	executeFunc func(req gateway.Request) *gateway.Response
}

func (m *mockExecutor) Execute(_ context.Context, req gateway.Request) *gateway.Response {
	m.lastReq = req
	return m.executeFunc(req)
}

// --- Mock JobClient ---

type mockJobs struct {
	listFunc func(rmURL string, since time.Duration) ([]yarn.Job, error)
	findFunc func(rmURL, queryID, user string) (*yarn.Job, error)
	killFunc func(rmURL, jobID string) (string, error)

	killed []string
}

func (m *mockJobs) ListJobs(_ context.Context, rmURL string, since time.Duration) ([]yarn.Job, error) {
	return m.listFunc(rmURL, since)
}

func (m *mockJobs) FindJob(_ context.Context, rmURL, queryID, user string, _ time.Duration) (*yarn.Job, error) {
	return m.findFunc(rmURL, queryID, user)
}

func (m *mockJobs) KillJob(_ context.Context, rmURL, jobID string) (string, error) {
	m.killed = append(m.killed, jobID)
	return m.killFunc(rmURL, jobID)
}

// --- Mock Store ---

type mockStore struct {
	queries   map[store.QueryKey]store.QueryRecord
	listErr   error
	lastQF    store.QueryFilter
	publishes map[string]store.PublishRecord

	bookmarks    []store.Bookmark
	lastBF       store.BookmarkFilter
	deleteBMUser string
	deleteBMErr  error

	comments   map[store.QueryKey]store.Comment
	commentErr error

	labels map[store.QueryKey]store.Label
}

func newMockStore() *mockStore {
	return &mockStore{
		queries:   make(map[store.QueryKey]store.QueryRecord),
		publishes: make(map[string]store.PublishRecord),
		comments:  make(map[store.QueryKey]store.Comment),
		labels:    make(map[store.QueryKey]store.Label),
	}
}

func (m *mockStore) InsertQuery(_ context.Context, rec store.QueryRecord) error {
	if _, ok := m.queries[rec.QueryKey]; ok {
		return store.ErrDuplicate
	}
	m.queries[rec.QueryKey] = rec
	return nil
}

func (m *mockStore) GetQuery(_ context.Context, key store.QueryKey) (*store.QueryRecord, error) {
	rec, ok := m.queries[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &rec, nil
}

func (m *mockStore) ListQueries(_ context.Context, filter store.QueryFilter) ([]store.QueryRecord, error) {
	m.lastQF = filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []store.QueryRecord
	for _, rec := range m.queries {
		out = append(out, rec)
	}
	return out, nil
}

func (m *mockStore) Publish(_ context.Context, key store.QueryKey, user string) (*store.PublishRecord, error) {
	for _, p := range m.publishes {
		if p.QueryKey == key {
			return &p, nil
		}
	}
	p := store.PublishRecord{PublishID: "pub-1", QueryKey: key, User: user}
	m.publishes[p.PublishID] = p
	return &p, nil
}

func (m *mockStore) GetPublish(_ context.Context, id string) (*store.PublishRecord, error) {
	p, ok := m.publishes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (m *mockStore) CreateBookmark(_ context.Context, b store.Bookmark) (*store.Bookmark, error) {
	b.ID = int64(len(m.bookmarks) + 1)
	m.bookmarks = append(m.bookmarks, b)
	return &b, nil
}

func (m *mockStore) ListBookmarks(_ context.Context, filter store.BookmarkFilter) ([]store.Bookmark, error) {
	m.lastBF = filter
	return m.bookmarks, nil
}

func (m *mockStore) DeleteBookmark(_ context.Context, _ int64, user string) error {
	m.deleteBMUser = user
	return m.deleteBMErr
}

func (m *mockStore) PutComment(_ context.Context, c store.Comment) error {
	if m.commentErr != nil {
		return m.commentErr
	}
	c.LikeCount = m.comments[c.QueryKey].LikeCount
	m.comments[c.QueryKey] = c
	return nil
}

func (m *mockStore) ListComments(context.Context, store.CommentFilter) ([]store.Comment, error) {
	var out []store.Comment
	for _, c := range m.comments {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockStore) LikeComment(_ context.Context, key store.QueryKey) (int, error) {
	c, ok := m.comments[key]
	if !ok {
		return 0, store.ErrNotFound
	}
	c.LikeCount++
	m.comments[key] = c
	return c.LikeCount, nil
}

func (m *mockStore) DeleteComment(_ context.Context, key store.QueryKey, user string) error {
	c, ok := m.comments[key]
	if !ok || c.User != user {
		return store.ErrNotFound
	}
	delete(m.comments, key)
	return nil
}

func (m *mockStore) PutLabel(_ context.Context, l store.Label) error {
	m.labels[l.QueryKey] = l
	return nil
}

func (m *mockStore) GetLabel(_ context.Context, key store.QueryKey) (*store.Label, error) {
	l, ok := m.labels[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &l, nil
}

func (m *mockStore) DeleteLabel(_ context.Context, key store.QueryKey) error {
	if _, ok := m.labels[key]; !ok {
		return store.ErrNotFound
	}
	delete(m.labels, key)
	return nil
}

func (*mockStore) Ping(context.Context) error { return nil }

// Verify interface compliance.
var (
	_ QueryExecutor = (*mockExecutor)(nil)
	_ JobClient     = (*mockJobs)(nil)
	_ store.Store   = (*mockStore)(nil)
)
