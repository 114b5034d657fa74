package api

import (
	"net/http"
	"strconv"

	"github.com/txn2/query-gateway/pkg/auth"
	"github.com/txn2/query-gateway/pkg/store"
)

// bookmarkRequest is the body of POST /bookmarks.
type bookmarkRequest struct {
	Datasource string `json:"datasource"`
	Engine     string `json:"engine"`
	Query      string `json:"query"`
	Title      string `json:"title"`
}

// commentRequest is the body of PUT /comments.
type commentRequest struct {
	store.QueryKey
	Content string `json:"content"`
}

// likeResponse reports the like count after a like.
type likeResponse struct {
	LikeCount int `json:"likeCount"`
}

// statusResponse acknowledges a write.
type statusResponse struct {
	Status string `json:"status"`
}

// listBookmarks handles GET /api/v1/bookmarks.
//
// @Summary      List bookmarks
// @Description  Lists the caller's bookmarks.
// @Tags         Bookmarks
// @Produce      json
// @Param        datasource  query  string  false  "Filter by datasource"
// @Param        engine      query  string  false  "Filter by engine"
// @Success      200  {array}   store.Bookmark
// @Failure      500  {object}  errorResponse
// @Router       /bookmarks [get]
func (h *Handler) listBookmarks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.deps.Store.ListBookmarks(r.Context(), store.BookmarkFilter{
		Datasource: q.Get("datasource"),
		Engine:     q.Get("engine"),
		User:       auth.UserID(r.Context()),
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if list == nil {
		list = []store.Bookmark{}
	}
	writeJSON(w, http.StatusOK, list)
}

// createBookmark handles POST /api/v1/bookmarks.
//
// @Summary      Create bookmark
// @Tags         Bookmarks
// @Accept       json
// @Produce      json
// @Param        body  body  bookmarkRequest  true  "Bookmark"
// @Success      201  {object}  store.Bookmark
// @Failure      400  {object}  errorResponse
// @Router       /bookmarks [post]
func (h *Handler) createBookmark(w http.ResponseWriter, r *http.Request) {
	var req bookmarkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Datasource == "" || req.Engine == "" || req.Query == "" {
		writeError(w, http.StatusBadRequest, "datasource, engine and query are required")
		return
	}
	b, err := h.deps.Store.CreateBookmark(r.Context(), store.Bookmark{
		Datasource: req.Datasource,
		Engine:     req.Engine,
		Query:      req.Query,
		Title:      req.Title,
		User:       auth.UserID(r.Context()),
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// deleteBookmark handles DELETE /api/v1/bookmarks/{id}.
//
// @Summary      Delete bookmark
// @Description  Deletes a bookmark owned by the caller.
// @Tags         Bookmarks
// @Produce      json
// @Param        id  path  integer  true  "Bookmark id"
// @Success      200  {object}  statusResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /bookmarks/{id} [delete]
func (h *Handler) deleteBookmark(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid bookmark id")
		return
	}
	if err := h.deps.Store.DeleteBookmark(r.Context(), id, auth.UserID(r.Context())); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "deleted"})
}

// listComments handles GET /api/v1/comments.
//
// @Summary      List comments
// @Tags         Comments
// @Produce      json
// @Param        datasource  query  string  false  "Filter by datasource"
// @Param        engine      query  string  false  "Filter by engine"
// @Param        queryId     query  string  false  "Filter by query id"
// @Success      200  {array}   store.Comment
// @Failure      500  {object}  errorResponse
// @Router       /comments [get]
func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.deps.Store.ListComments(r.Context(), store.CommentFilter{
		Datasource: q.Get("datasource"),
		Engine:     q.Get("engine"),
		QueryID:    q.Get("queryId"),
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if list == nil {
		list = []store.Comment{}
	}
	writeJSON(w, http.StatusOK, list)
}

// putComment handles PUT /api/v1/comments.
//
// @Summary      Write the comment of a query
// @Description  Creates or replaces the single comment of a query. The like count is kept.
// @Tags         Comments
// @Accept       json
// @Produce      json
// @Param        body  body  commentRequest  true  "Comment"
// @Success      200  {object}  statusResponse
// @Failure      400  {object}  errorResponse
// @Router       /comments [put]
func (h *Handler) putComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !decodeBody(w, r, &req) || !requireKey(w, req.QueryKey) {
		return
	}
	err := h.deps.Store.PutComment(r.Context(), store.Comment{
		QueryKey:   req.QueryKey,
		Content:    req.Content,
		UpdateTime: store.FormatTime(h.deps.Now()),
		User:       auth.UserID(r.Context()),
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "saved"})
}

// likeComment handles POST /api/v1/comments/like.
//
// @Summary      Like the comment of a query
// @Tags         Comments
// @Accept       json
// @Produce      json
// @Param        body  body  store.QueryKey  true  "Query"
// @Success      200  {object}  likeResponse
// @Failure      404  {object}  errorResponse
// @Router       /comments/like [post]
func (h *Handler) likeComment(w http.ResponseWriter, r *http.Request) {
	var key store.QueryKey
	if !decodeBody(w, r, &key) || !requireKey(w, key) {
		return
	}
	n, err := h.deps.Store.LikeComment(r.Context(), key)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, likeResponse{LikeCount: n})
}

// deleteComment handles DELETE /api/v1/comments.
//
// @Summary      Delete the comment of a query
// @Description  Deletes the comment if the caller wrote it.
// @Tags         Comments
// @Produce      json
// @Param        datasource  query  string  true  "Datasource"
// @Param        engine      query  string  true  "Engine"
// @Param        queryId     query  string  true  "Query id"
// @Success      200  {object}  statusResponse
// @Failure      404  {object}  errorResponse
// @Router       /comments [delete]
func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	key, ok := queryKeyParams(w, r)
	if !ok {
		return
	}
	if err := h.deps.Store.DeleteComment(r.Context(), key, auth.UserID(r.Context())); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "deleted"})
}

// getLabel handles GET /api/v1/labels.
//
// @Summary      Get the label of a query
// @Tags         Labels
// @Produce      json
// @Param        datasource  query  string  true  "Datasource"
// @Param        engine      query  string  true  "Engine"
// @Param        queryId     query  string  true  "Query id"
// @Success      200  {object}  store.Label
// @Failure      404  {object}  errorResponse
// @Router       /labels [get]
func (h *Handler) getLabel(w http.ResponseWriter, r *http.Request) {
	key, ok := queryKeyParams(w, r)
	if !ok {
		return
	}
	l, err := h.deps.Store.GetLabel(r.Context(), key)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// putLabel handles PUT /api/v1/labels.
//
// @Summary      Set the label of a query
// @Tags         Labels
// @Accept       json
// @Produce      json
// @Param        body  body  store.Label  true  "Label"
// @Success      200  {object}  statusResponse
// @Failure      400  {object}  errorResponse
// @Router       /labels [put]
func (h *Handler) putLabel(w http.ResponseWriter, r *http.Request) {
	var l store.Label
	if !decodeBody(w, r, &l) || !requireKey(w, l.QueryKey) {
		return
	}
	if l.LabelName == "" {
		writeError(w, http.StatusBadRequest, "labelName is required")
		return
	}
	if err := h.deps.Store.PutLabel(r.Context(), l); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "saved"})
}

// deleteLabel handles DELETE /api/v1/labels.
//
// @Summary      Delete the label of a query
// @Tags         Labels
// @Produce      json
// @Param        datasource  query  string  true  "Datasource"
// @Param        engine      query  string  true  "Engine"
// @Param        queryId     query  string  true  "Query id"
// @Success      200  {object}  statusResponse
// @Failure      404  {object}  errorResponse
// @Router       /labels [delete]
func (h *Handler) deleteLabel(w http.ResponseWriter, r *http.Request) {
	key, ok := queryKeyParams(w, r)
	if !ok {
		return
	}
	if err := h.deps.Store.DeleteLabel(r.Context(), key); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "deleted"})
}
