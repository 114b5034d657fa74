// Package api provides the REST endpoints of the query gateway.
//
// @title        Query Gateway API
// @version      1.0
// @description  Query dispatch, job correlation and query annotations.
// @BasePath     /api/v1
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/txn2/query-gateway/internal/apidocs" // registers the swagger document
	"github.com/txn2/query-gateway/pkg/gateway"
	"github.com/txn2/query-gateway/pkg/store"
	"github.com/txn2/query-gateway/pkg/yarn"
)

const maxBodyBytes = 1 << 20

// QueryExecutor runs a query and always answers with a response.
type QueryExecutor interface {
	Execute(ctx context.Context, req gateway.Request) *gateway.Response
}

// JobClient lists, correlates and kills cluster jobs.
type JobClient interface {
	ListJobs(ctx context.Context, rmURL string, since time.Duration) ([]yarn.Job, error)
	FindJob(ctx context.Context, rmURL, queryID, user string, since time.Duration) (*yarn.Job, error)
	KillJob(ctx context.Context, rmURL, jobID string) (string, error)
}

// Deps holds the handler's dependencies.
type Deps struct {
	Gateway QueryExecutor
	Jobs    JobClient
	Store   store.Store

	// ResourceManagers maps datasource names to resource manager base URLs.
	ResourceManagers map[string]string

	// Now defaults to time.Now.
	Now func() time.Time
}

// Handler provides the REST API endpoints.
type Handler struct {
	mux        *http.ServeMux
	deps       Deps
	authMiddle func(http.Handler) http.Handler
}

// NewHandler creates a new API handler. authMiddle may be nil.
func NewHandler(deps Deps, authMiddle func(http.Handler) http.Handler) *Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	h := &Handler{
		mux:        http.NewServeMux(),
		deps:       deps,
		authMiddle: authMiddle,
	}
	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.authMiddle != nil {
		h.authMiddle(h.mux).ServeHTTP(w, r)
		return
	}
	h.mux.ServeHTTP(w, r)
}

// registerRoutes registers all API routes.
func (h *Handler) registerRoutes() {
	h.mux.Handle("GET /api/v1/docs/", httpSwagger.Handler(httpSwagger.URL("/api/v1/docs/doc.json")))

	if h.deps.Gateway != nil {
		h.mux.HandleFunc("POST /api/v1/query/{engine}", h.runQuery)
	}

	if h.deps.Jobs != nil {
		h.mux.HandleFunc("GET /api/v1/jobs", h.listJobs)
		h.mux.HandleFunc("GET /api/v1/jobs/find", h.findJob)
		h.mux.HandleFunc("POST /api/v1/jobs/kill", h.killJob)
	}

	if h.deps.Store != nil {
		h.mux.HandleFunc("GET /api/v1/history", h.listHistory)
		h.mux.HandleFunc("GET /api/v1/history/{engine}/{queryId}", h.getHistory)
		h.mux.HandleFunc("POST /api/v1/publish", h.createPublish)
		h.mux.HandleFunc("GET /api/v1/publish/{publishId}", h.getPublish)
		h.mux.HandleFunc("GET /api/v1/bookmarks", h.listBookmarks)
		h.mux.HandleFunc("POST /api/v1/bookmarks", h.createBookmark)
		h.mux.HandleFunc("DELETE /api/v1/bookmarks/{id}", h.deleteBookmark)
		h.mux.HandleFunc("GET /api/v1/comments", h.listComments)
		h.mux.HandleFunc("PUT /api/v1/comments", h.putComment)
		h.mux.HandleFunc("DELETE /api/v1/comments", h.deleteComment)
		h.mux.HandleFunc("POST /api/v1/comments/like", h.likeComment)
		h.mux.HandleFunc("GET /api/v1/labels", h.getLabel)
		h.mux.HandleFunc("PUT /api/v1/labels", h.putLabel)
		h.mux.HandleFunc("DELETE /api/v1/labels", h.deleteLabel)
	}
}

// errorResponse is the body of every non-query failure.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeStoreError maps store sentinels to status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrDuplicate):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// queryKeyParams reads a query key from URL parameters. All three are required.
func queryKeyParams(w http.ResponseWriter, r *http.Request) (store.QueryKey, bool) {
	q := r.URL.Query()
	key := store.QueryKey{
		Datasource: q.Get("datasource"),
		Engine:     q.Get("engine"),
		QueryID:    q.Get("queryId"),
	}
	return key, requireKey(w, key)
}

func requireKey(w http.ResponseWriter, key store.QueryKey) bool {
	if key.Datasource == "" || key.Engine == "" || key.QueryID == "" {
		writeError(w, http.StatusBadRequest, "datasource, engine and queryId are required")
		return false
	}
	return true
}

// parseLimit parses the limit query parameter, 0 when absent or invalid.
func parseLimit(r *http.Request) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
