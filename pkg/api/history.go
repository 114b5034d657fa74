package api

import (
	"net/http"

	"github.com/txn2/query-gateway/pkg/auth"
	"github.com/txn2/query-gateway/pkg/store"
)

// historyResponse wraps a list of query records.
type historyResponse struct {
	Queries []store.QueryRecord `json:"queries"`
	Total   int                 `json:"total"`
}

// listHistory handles GET /api/v1/history.
//
// @Summary      List executed queries
// @Description  Returns the most recent query records, newest first.
// @Tags         History
// @Produce      json
// @Param        datasource  query  string   false  "Filter by datasource"
// @Param        engine      query  string   false  "Filter by engine"
// @Param        user        query  string   false  "Filter by user"
// @Param        limit       query  integer  false  "Maximum records (default: 100)"
// @Success      200  {object}  historyResponse
// @Failure      500  {object}  errorResponse
// @Router       /history [get]
func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := h.deps.Store.ListQueries(r.Context(), store.QueryFilter{
		Datasource: q.Get("datasource"),
		Engine:     q.Get("engine"),
		User:       q.Get("user"),
		Limit:      parseLimit(r),
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if records == nil {
		records = []store.QueryRecord{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Queries: records, Total: len(records)})
}

// getHistory handles GET /api/v1/history/{engine}/{queryId}.
//
// @Summary      Get one executed query
// @Tags         History
// @Produce      json
// @Param        engine      path   string  true  "Engine"
// @Param        queryId     path   string  true  "Query id"
// @Param        datasource  query  string  true  "Datasource"
// @Success      200  {object}  store.QueryRecord
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /history/{engine}/{queryId} [get]
func (h *Handler) getHistory(w http.ResponseWriter, r *http.Request) {
	key := store.QueryKey{
		Datasource: r.URL.Query().Get("datasource"),
		Engine:     r.PathValue("engine"),
		QueryID:    r.PathValue("queryId"),
	}
	if !requireKey(w, key) {
		return
	}
	rec, err := h.deps.Store.GetQuery(r.Context(), key)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// createPublish handles POST /api/v1/publish.
//
// @Summary      Publish a query
// @Description  Returns a shareable id for an executed query. Publishing the same query twice returns the same id.
// @Tags         Publish
// @Accept       json
// @Produce      json
// @Param        body  body  store.QueryKey  true  "Query to publish"
// @Success      200  {object}  store.PublishRecord
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /publish [post]
func (h *Handler) createPublish(w http.ResponseWriter, r *http.Request) {
	var key store.QueryKey
	if !decodeBody(w, r, &key) || !requireKey(w, key) {
		return
	}
	if _, err := h.deps.Store.GetQuery(r.Context(), key); err != nil {
		writeStoreError(w, err)
		return
	}
	rec, err := h.deps.Store.Publish(r.Context(), key, auth.UserID(r.Context()))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// getPublish handles GET /api/v1/publish/{publishId}.
//
// @Summary      Resolve a publish id
// @Tags         Publish
// @Produce      json
// @Param        publishId  path  string  true  "Publish id"
// @Success      200  {object}  store.PublishRecord
// @Failure      404  {object}  errorResponse
// @Router       /publish/{publishId} [get]
func (h *Handler) getPublish(w http.ResponseWriter, r *http.Request) {
	rec, err := h.deps.Store.GetPublish(r.Context(), r.PathValue("publishId"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
